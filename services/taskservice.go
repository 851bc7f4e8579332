package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"larre/model"
)

const unscheduledBucket = "unscheduled"

type TaskInput struct {
	Title       string
	Description string
	Status      model.TaskStatus
	Priority    model.Priority
	Tags        []model.Tag
	Subtasks    []model.Subtask
	DueDate     *time.Time
	ProjectID   *string

	AttachmentIDs     []string
	Recurring         bool
	RecurrencePattern *string
}

// TaskPatch carries the fields to change; nil fields are left alone.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *model.TaskStatus
	Priority    *model.Priority
	Tags        []model.Tag
	Subtasks    []model.Subtask
	DueDate     *time.Time
	ClearDue    bool

	AttachmentIDs     []string
	Recurring         *bool
	RecurrencePattern *string
}

type TaskFilter struct {
	Status   model.TaskStatus
	Priority model.Priority
	Tag      string
}

func (f TaskFilter) match(t model.Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Tag != "" {
		for _, tag := range t.Tags {
			if strings.EqualFold(tag.Name, f.Tag) || tag.ID == f.Tag {
				return true
			}
		}
		return false
	}
	return true
}

type KanbanColumn struct {
	Status model.TaskStatus `json:"status"`
	Label  string           `json:"label"`
	Tasks  []model.Task     `json:"tasks"`
}

type CalendarDay struct {
	Date  string       `json:"date"`
	Tasks []model.Task `json:"tasks"`
}

// TaskBoard is the in-memory task list of the current session, newest first.
type TaskBoard struct {
	mu    sync.Mutex
	tasks []model.Task
	now   func() time.Time
}

func NewTaskBoard() *TaskBoard {
	return &TaskBoard{now: time.Now}
}

func (b *TaskBoard) Add(userID string, in TaskInput) (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = model.StatusTodo
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !status.Valid() || !priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown status or priority", ErrInvalidInput)
	}
	if err := checkTags(in.Tags); err != nil {
		return model.Task{}, err
	}

	now := b.now()
	task := model.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		Tags:        nonNilTags(in.Tags),
		Subtasks:    withSubtaskIDs(in.Subtasks),
		DueDate:     in.DueDate,
		ProjectID:   in.ProjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,

		AttachmentIDs: nonNilStrings(in.AttachmentIDs),
		Recurring:     in.Recurring,
	}
	if in.Recurring {
		task.RecurrencePattern = in.RecurrencePattern
	}
	if status == model.StatusDone {
		task.CompletedAt = &now
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append([]model.Task{task}, b.tasks...)
	return task, nil
}

func (b *TaskBoard) Update(id string, patch TaskPatch) (model.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	task := b.tasks[idx]
	now := b.now()

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return model.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return model.Task{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *patch.Priority)
		}
		task.Priority = *patch.Priority
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return model.Task{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
		}
		applyStatus(&task, *patch.Status, now)
	}
	if patch.Tags != nil {
		if err := checkTags(patch.Tags); err != nil {
			return model.Task{}, err
		}
		task.Tags = nonNilTags(patch.Tags)
	}
	if patch.Subtasks != nil {
		task.Subtasks = withSubtaskIDs(patch.Subtasks)
	}
	if patch.ClearDue {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.AttachmentIDs != nil {
		task.AttachmentIDs = nonNilStrings(patch.AttachmentIDs)
	}
	if patch.Recurring != nil {
		task.Recurring = *patch.Recurring
	}
	if patch.RecurrencePattern != nil {
		task.RecurrencePattern = patch.RecurrencePattern
	}
	// a one-off task has no pattern
	if !task.Recurring {
		task.RecurrencePattern = nil
	}
	task.UpdatedAt = now

	b.tasks[idx] = task
	return task, nil
}

// SetStatus moves a task between columns. completedAt is set when it lands in
// done and cleared otherwise.
func (b *TaskBoard) SetStatus(id string, status model.TaskStatus) (model.Task, error) {
	return b.Update(id, TaskPatch{Status: &status})
}

func (b *TaskBoard) ToggleSubtask(taskID, subtaskID string) (model.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(taskID)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	task := b.tasks[idx]
	subtasks := make([]model.Subtask, len(task.Subtasks))
	copy(subtasks, task.Subtasks)

	found := false
	for i := range subtasks {
		if subtasks[i].ID == subtaskID {
			subtasks[i].Completed = !subtasks[i].Completed
			found = true
		}
	}
	if !found {
		return model.Task{}, fmt.Errorf("subtask %s: %w", subtaskID, ErrNotFound)
	}
	task.Subtasks = subtasks
	task.UpdatedAt = b.now()
	b.tasks[idx] = task
	return task, nil
}

func (b *TaskBoard) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	b.tasks = append(b.tasks[:idx:idx], b.tasks[idx+1:]...)
	return nil
}

func (b *TaskBoard) Get(id string) (model.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexOf(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return b.tasks[idx], nil
}

func (b *TaskBoard) List(filter TaskFilter) []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		if filter.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Kanban groups tasks into the four status columns, always in board order.
func (b *TaskBoard) Kanban(filter TaskFilter) []KanbanColumn {
	tasks := b.List(filter)
	columns := make([]KanbanColumn, 0, len(model.TaskStatuses))
	for _, status := range model.TaskStatuses {
		col := KanbanColumn{Status: status, Label: model.TaskStatusLabels[status], Tasks: []model.Task{}}
		for _, t := range tasks {
			if t.Status == status {
				col.Tasks = append(col.Tasks, t)
			}
		}
		columns = append(columns, col)
	}
	return columns
}

// Calendar groups tasks by due day (YYYY-MM-DD, ascending). Tasks without a
// due date go to a trailing "unscheduled" bucket.
func (b *TaskBoard) Calendar(filter TaskFilter) []CalendarDay {
	tasks := b.List(filter)
	byDay := map[string][]model.Task{}
	var days []string
	var unscheduled []model.Task

	for _, t := range tasks {
		if t.DueDate == nil {
			unscheduled = append(unscheduled, t)
			continue
		}
		day := t.DueDate.Format(time.DateOnly)
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], t)
	}

	sort.Strings(days)
	out := make([]CalendarDay, 0, len(days)+1)
	for _, day := range days {
		out = append(out, CalendarDay{Date: day, Tasks: byDay[day]})
	}
	if len(unscheduled) > 0 {
		out = append(out, CalendarDay{Date: unscheduledBucket, Tasks: unscheduled})
	}
	return out
}

type TaskStats struct {
	Active          int `json:"active"`
	Overdue         int `json:"overdue"`
	CompletedInWeek int `json:"completedThisWeek"`
}

// Stats counts open tasks, open tasks past due, and tasks completed in the
// seven days before now.
func (b *TaskBoard) Stats(now time.Time) TaskStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	var stats TaskStats
	weekAgo := now.AddDate(0, 0, -7)
	for _, t := range b.tasks {
		if t.Status == model.StatusDone {
			if t.CompletedAt != nil && t.CompletedAt.After(weekAgo) {
				stats.CompletedInWeek++
			}
			continue
		}
		stats.Active++
		if t.DueDate != nil && t.DueDate.Before(now) {
			stats.Overdue++
		}
	}
	return stats
}

func (b *TaskBoard) indexOf(id string) int {
	for i, t := range b.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func applyStatus(task *model.Task, status model.TaskStatus, now time.Time) {
	task.Status = status
	if status == model.StatusDone {
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
}

func checkTags(tags []model.Tag) error {
	for _, tag := range tags {
		if !model.IsTagColor(tag.Color) {
			return fmt.Errorf("%w: tag %q has colour %q outside the palette", ErrInvalidInput, tag.Name, tag.Color)
		}
	}
	return nil
}

func nonNilTags(in []model.Tag) []model.Tag {
	out := make([]model.Tag, 0, len(in))
	for _, t := range in {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		out = append(out, t)
	}
	return out
}

func withSubtaskIDs(in []model.Subtask) []model.Subtask {
	out := make([]model.Subtask, 0, len(in))
	for _, s := range in {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		out = append(out, s)
	}
	return out
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
