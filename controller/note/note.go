package note

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"larre/dto"
	"larre/services"
)

func NoteController(router gin.IRouter, book *services.NoteBook) {
	routes := router.Group("/notes")
	{
		routes.GET("", func(c *gin.Context) {
			ListNotes(c, book)
		})
		routes.GET("/templates", func(c *gin.Context) {
			c.JSON(http.StatusOK, services.NoteTemplates)
		})
		routes.POST("", func(c *gin.Context) {
			CreateNote(c, book)
		})
		routes.GET("/active", func(c *gin.Context) {
			ActiveNote(c, book)
		})
		routes.POST("/close", func(c *gin.Context) {
			book.Close()
			c.JSON(http.StatusOK, gin.H{"active": nil})
		})
		routes.POST("/:id/open", func(c *gin.Context) {
			OpenNote(c, book)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateNote(c, book)
		})
		routes.POST("/:id/pin", func(c *gin.Context) {
			TogglePin(c, book)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteNote(c, book)
		})
	}
}

func ListNotes(c *gin.Context, book *services.NoteBook) {
	notes := book.List(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"notes": dto.NewNoteResponses(notes)})
}

func CreateNote(c *gin.Context, book *services.NoteBook) {
	var req dto.CreateNoteRequest
	// an empty body creates a blank note
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	note, err := book.Create(c.GetString("userId"), req.Template)
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, dto.NewNoteResponse(note))
}

func ActiveNote(c *gin.Context, book *services.NoteBook) {
	note, ok := book.Active()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"active": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": dto.NewNoteResponse(note)})
}

func OpenNote(c *gin.Context, book *services.NoteBook) {
	note, err := book.Open(c.Param("id"))
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": dto.NewNoteResponse(note)})
}

func UpdateNote(c *gin.Context, book *services.NoteBook) {
	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	note, err := book.Update(c.Param("id"), req.ToPatch())
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.NewNoteResponse(note))
}

func TogglePin(c *gin.Context, book *services.NoteBook) {
	note, err := book.TogglePin(c.Param("id"))
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.NewNoteResponse(note))
}

func DeleteNote(c *gin.Context, book *services.NoteBook) {
	if err := book.Delete(c.Param("id")); err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}
