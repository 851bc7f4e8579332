package model

import (
	"time"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
)

// TaskStatuses is the board column order.
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusReview, StatusDone}

var TaskStatusLabels = map[TaskStatus]string{
	StatusTodo:       "To Do",
	StatusInProgress: "In Progress",
	StatusReview:     "Review",
	StatusDone:       "Done",
}

func (s TaskStatus) Valid() bool {
	_, ok := TaskStatusLabels[s]
	return ok
}

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

var PriorityLabels = map[Priority]string{
	PriorityCritical: "Critical",
	PriorityHigh:     "High",
	PriorityMedium:   "Medium",
	PriorityLow:      "Low",
}

func (p Priority) Valid() bool {
	_, ok := PriorityLabels[p]
	return ok
}

type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Status            TaskStatus `json:"status"`
	Priority          Priority   `json:"priority"`
	Tags              []Tag      `json:"tags"`
	Subtasks          []Subtask  `json:"subtasks"`
	DueDate           *time.Time `json:"dueDate"`
	ProjectID         *string    `json:"projectId"`
	AttachmentIDs     []string   `json:"attachmentIds"`
	Recurring         bool       `json:"recurring"`
	RecurrencePattern *string    `json:"recurrencePattern"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	CompletedAt       *time.Time `json:"completedAt"`
	UserID            string     `json:"userId"`
}
