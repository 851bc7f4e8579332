package task

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"larre/dto"
	"larre/model"
	"larre/services"
)

func newRouter(t *testing.T) (*gin.Engine, *services.TaskBoard) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	require.NoError(t, dto.RegisterValidators(v))

	board := services.NewTaskBoard()
	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set("userId", "u1")
	})
	TaskController(api, board)
	return r, board
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTask(t *testing.T) {
	r, board := newRouter(t)

	w := do(r, http.MethodPost, "/api/tasks", gin.H{
		"title":    "Order rebar",
		"priority": "high",
		"tags":     []gin.H{{"name": "Procurement", "color": "#3b82f6"}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Order rebar", created.Title)
	assert.Equal(t, model.StatusTodo, created.Status)
	assert.Equal(t, model.PriorityHigh, created.Priority)
	assert.Equal(t, "u1", created.UserID)
	assert.NotEmpty(t, created.Tags[0].ID)
	assert.Len(t, board.List(services.TaskFilter{}), 1)
	assert.Contains(t, w.Body.String(), `"attachmentIds":[]`)
}

func TestCreateRecurringTask(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/api/tasks", gin.H{
		"title":             "Weekly toolbox talk",
		"recurring":         true,
		"recurrencePattern": "weekly",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Recurring)
	require.NotNil(t, created.RecurrencePattern)
	assert.Equal(t, "weekly", *created.RecurrencePattern)

	w = do(r, http.MethodPut, "/api/tasks/"+created.ID, gin.H{"recurring": false})
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.False(t, updated.Recurring)
	assert.Nil(t, updated.RecurrencePattern)
}

func TestCreateTaskRejectsInvalidInput(t *testing.T) {
	r, _ := newRouter(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing title", gin.H{"status": "todo"}},
		{"unknown status", gin.H{"title": "x", "status": "blocked"}},
		{"unknown priority", gin.H{"title": "x", "priority": "urgent"}},
		{"colour outside palette", gin.H{"title": "x", "tags": []gin.H{{"name": "a", "color": "#123456"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/tasks", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListTasksViews(t *testing.T) {
	r, board := newRouter(t)
	_, err := board.Add("u1", services.TaskInput{Title: "Pour slab", Status: model.StatusInProgress})
	require.NoError(t, err)
	_, err = board.Add("u1", services.TaskInput{Title: "Inspect forms"})
	require.NoError(t, err)

	t.Run("kanban", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/tasks?view=kanban", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			View    string                  `json:"view"`
			Columns []services.KanbanColumn `json:"columns"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "kanban", resp.View)
		require.Len(t, resp.Columns, 4)
		assert.Equal(t, "To Do", resp.Columns[0].Label)
		assert.Len(t, resp.Columns[0].Tasks, 1)
		assert.Len(t, resp.Columns[1].Tasks, 1)
	})

	t.Run("list filtered by status", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/tasks?status=in_progress", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Tasks []model.Task `json:"tasks"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Tasks, 1)
		assert.Equal(t, "Pour slab", resp.Tasks[0].Title)
	})

	t.Run("unknown view", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/tasks?view=gantt", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTaskStatusAndDelete(t *testing.T) {
	r, board := newRouter(t)
	task, err := board.Add("u1", services.TaskInput{Title: "Sign off"})
	require.NoError(t, err)

	w := do(r, http.MethodPatch, "/api/tasks/"+task.ID+"/status", gin.H{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, model.StatusDone, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	w = do(r, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskMeta(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodGet, "/api/tasks/meta", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Statuses  []gin.H  `json:"statuses"`
		TagColors []gin.H  `json:"tagColors"`
		ViewModes []string `json:"viewModes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Statuses, 4)
	assert.Len(t, resp.TagColors, len(model.TagColors))
	assert.Equal(t, []string{"list", "kanban", "calendar"}, resp.ViewModes)
}
