package file

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"larre/dto"
	"larre/services"
)

var viewModes = []string{"grid", "list"}

// FileController registers the file browser routes. upload guards the upload
// route (rate limiting); maxBytes caps a whole upload request.
func FileController(router gin.IRouter, cabinet *services.FileCabinet, maxBytes int64, upload ...gin.HandlerFunc) {
	routes := router.Group("/files")
	{
		routes.GET("", func(c *gin.Context) {
			Browse(c, cabinet)
		})
		handlers := append(append([]gin.HandlerFunc{}, upload...), func(c *gin.Context) {
			UploadFiles(c, cabinet, maxBytes)
		})
		routes.POST("", handlers...)
		routes.GET("/:id/content", func(c *gin.Context) {
			DownloadFile(c, cabinet)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteFile(c, cabinet)
		})
	}

	folders := router.Group("/folders")
	{
		folders.POST("", func(c *gin.Context) {
			CreateFolder(c, cabinet)
		})
		folders.DELETE("/:id", func(c *gin.Context) {
			DeleteFolder(c, cabinet)
		})
	}
}

func Browse(c *gin.Context, cabinet *services.FileCabinet) {
	var query dto.BrowseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}

	listing, err := cabinet.Browse(query.FolderID(), query.Query)
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}

	view := query.View
	if view == "" {
		view = viewModes[0]
	}
	c.JSON(http.StatusOK, dto.ListingResponse{
		Folders:    listing.Folders,
		Files:      dto.NewFileResponses(listing.Files),
		Breadcrumb: listing.Breadcrumb,
		View:       view,
	})
}

func UploadFiles(c *gin.Context, cabinet *services.FileCabinet, maxBytes int64) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	var folderID *string
	if v := c.PostForm("folderId"); v != "" {
		folderID = &v
	}

	items, err := cabinet.AddFiles(c.GetString("userId"), folderID, dto.UploadFiles(headers))
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"files": dto.NewFileResponses(items)})
}

func DownloadFile(c *gin.Context, cabinet *services.FileCabinet) {
	item, rc, err := cabinet.Open(c.Param("id"))
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", item.Name))
	c.DataFromReader(http.StatusOK, item.Size, item.MimeType, rc, nil)
}

func DeleteFile(c *gin.Context, cabinet *services.FileCabinet) {
	if err := cabinet.DeleteFile(c.Param("id")); err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

func CreateFolder(c *gin.Context, cabinet *services.FileCabinet) {
	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	folder, err := cabinet.CreateFolder(c.GetString("userId"), req.Name, req.ParentID, req.Color)
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, folder)
}

func DeleteFolder(c *gin.Context, cabinet *services.FileCabinet) {
	if err := cabinet.DeleteFolder(c.Param("id")); err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Folder deleted successfully"})
}
