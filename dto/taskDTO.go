package dto

import (
	"time"

	"larre/model"
	"larre/services"
)

type TagRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required,tagcolor"`
}

type SubtaskRequest struct {
	ID        string `json:"id"`
	Title     string `json:"title" binding:"required"`
	Completed bool   `json:"completed"`
}

type CreateTaskRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Status      string           `json:"status" binding:"omitempty,taskstatus"`
	Priority    string           `json:"priority" binding:"omitempty,priority"`
	Tags        []TagRequest     `json:"tags" binding:"omitempty,dive"`
	Subtasks    []SubtaskRequest `json:"subtasks" binding:"omitempty,dive"`
	DueDate     *time.Time       `json:"dueDate"`
	ProjectID   *string          `json:"projectId"`

	AttachmentIDs     []string `json:"attachmentIds"`
	Recurring         bool     `json:"recurring"`
	RecurrencePattern *string  `json:"recurrencePattern"`
}

func (r CreateTaskRequest) ToInput() services.TaskInput {
	return services.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      model.TaskStatus(r.Status),
		Priority:    model.Priority(r.Priority),
		Tags:        toTags(r.Tags),
		Subtasks:    toSubtasks(r.Subtasks),
		DueDate:     r.DueDate,
		ProjectID:   r.ProjectID,

		AttachmentIDs:     r.AttachmentIDs,
		Recurring:         r.Recurring,
		RecurrencePattern: r.RecurrencePattern,
	}
}

type UpdateTaskRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Status       *string          `json:"status" binding:"omitempty,taskstatus"`
	Priority     *string          `json:"priority" binding:"omitempty,priority"`
	Tags         []TagRequest     `json:"tags" binding:"omitempty,dive"`
	Subtasks     []SubtaskRequest `json:"subtasks" binding:"omitempty,dive"`
	DueDate      *time.Time       `json:"dueDate"`
	ClearDueDate bool             `json:"clearDueDate"`

	AttachmentIDs     []string `json:"attachmentIds"`
	Recurring         *bool    `json:"recurring"`
	RecurrencePattern *string  `json:"recurrencePattern"`
}

func (r UpdateTaskRequest) ToPatch() services.TaskPatch {
	patch := services.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		ClearDue:    r.ClearDueDate,

		AttachmentIDs:     r.AttachmentIDs,
		Recurring:         r.Recurring,
		RecurrencePattern: r.RecurrencePattern,
	}
	if r.Status != nil {
		s := model.TaskStatus(*r.Status)
		patch.Status = &s
	}
	if r.Priority != nil {
		p := model.Priority(*r.Priority)
		patch.Priority = &p
	}
	if r.Tags != nil {
		patch.Tags = toTags(r.Tags)
	}
	if r.Subtasks != nil {
		patch.Subtasks = toSubtasks(r.Subtasks)
	}
	return patch
}

type TaskStatusRequest struct {
	Status string `json:"status" binding:"required,taskstatus"`
}

type TaskFilterQuery struct {
	Status   string `form:"status" binding:"omitempty,taskstatus"`
	Priority string `form:"priority" binding:"omitempty,priority"`
	Tag      string `form:"tag"`
	View     string `form:"view" binding:"omitempty,oneof=list kanban calendar"`
}

func (q TaskFilterQuery) ToFilter() services.TaskFilter {
	return services.TaskFilter{
		Status:   model.TaskStatus(q.Status),
		Priority: model.Priority(q.Priority),
		Tag:      q.Tag,
	}
}

func toTags(in []TagRequest) []model.Tag {
	if in == nil {
		return nil
	}
	out := make([]model.Tag, 0, len(in))
	for _, t := range in {
		out = append(out, model.Tag{ID: t.ID, Name: t.Name, Color: t.Color})
	}
	return out
}

func toSubtasks(in []SubtaskRequest) []model.Subtask {
	if in == nil {
		return nil
	}
	out := make([]model.Subtask, 0, len(in))
	for _, s := range in {
		out = append(out, model.Subtask{ID: s.ID, Title: s.Title, Completed: s.Completed})
	}
	return out
}
