package task

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"larre/dto"
	"larre/model"
	"larre/services"
)

var viewModes = []string{"list", "kanban", "calendar"}

func TaskController(router gin.IRouter, board *services.TaskBoard) {
	routes := router.Group("/tasks")
	{
		routes.GET("", func(c *gin.Context) {
			ListTasks(c, board)
		})
		routes.GET("/meta", TaskMeta)
		routes.POST("", func(c *gin.Context) {
			CreateTask(c, board)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetTask(c, board)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateTask(c, board)
		})
		routes.PATCH("/:id/status", func(c *gin.Context) {
			UpdateTaskStatus(c, board)
		})
		routes.POST("/:id/subtasks/:subtaskId/toggle", func(c *gin.Context) {
			ToggleSubtask(c, board)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteTask(c, board)
		})
	}
}

// ListTasks renders the board in the requested view mode (list by default).
func ListTasks(c *gin.Context, board *services.TaskBoard) {
	var query dto.TaskFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
		return
	}
	filter := query.ToFilter()

	switch query.View {
	case "kanban":
		c.JSON(http.StatusOK, gin.H{"view": "kanban", "columns": board.Kanban(filter)})
	case "calendar":
		c.JSON(http.StatusOK, gin.H{"view": "calendar", "days": board.Calendar(filter)})
	default:
		c.JSON(http.StatusOK, gin.H{"view": "list", "tasks": board.List(filter)})
	}
}

func TaskMeta(c *gin.Context) {
	statuses := make([]gin.H, 0, len(model.TaskStatuses))
	for _, s := range model.TaskStatuses {
		statuses = append(statuses, gin.H{"value": s, "label": model.TaskStatusLabels[s]})
	}
	priorities := make([]gin.H, 0, len(model.PriorityLabels))
	for _, p := range []model.Priority{model.PriorityCritical, model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		priorities = append(priorities, gin.H{"value": p, "label": model.PriorityLabels[p]})
	}
	c.JSON(http.StatusOK, gin.H{
		"statuses":   statuses,
		"priorities": priorities,
		"tagColors":  model.TagColors,
		"viewModes":  viewModes,
	})
}

func CreateTask(c *gin.Context, board *services.TaskBoard) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	task, err := board.Add(c.GetString("userId"), req.ToInput())
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}

func GetTask(c *gin.Context, board *services.TaskBoard) {
	task, err := board.Get(c.Param("id"))
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

func UpdateTask(c *gin.Context, board *services.TaskBoard) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	task, err := board.Update(c.Param("id"), req.ToPatch())
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

func UpdateTaskStatus(c *gin.Context, board *services.TaskBoard) {
	var req dto.TaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	task, err := board.SetStatus(c.Param("id"), model.TaskStatus(req.Status))
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

func ToggleSubtask(c *gin.Context, board *services.TaskBoard) {
	task, err := board.ToggleSubtask(c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

func DeleteTask(c *gin.Context, board *services.TaskBoard) {
	if err := board.Delete(c.Param("id")); err != nil {
		c.JSON(dto.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
