package services

import "time"

type QuickAction struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var QuickActions = []QuickAction{
	{Label: "New Task", Path: "/tasks"},
	{Label: "Quick Share", Path: "/share"},
	{Label: "Upload File", Path: "/files"},
	{Label: "New Note", Path: "/notes"},
}

// Greeting picks the banner text for the local hour.
func Greeting(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 17:
		return "Good afternoon"
	}
	return "Good evening"
}

// DateLine renders e.g. "Sunday, October 18, 2026".
func DateLine(now time.Time) string {
	return now.Format("Monday, January 2, 2006")
}

type DashboardStats struct {
	ActiveTasks       int `json:"activeTasks"`
	OverdueTasks      int `json:"overdueTasks"`
	SharedFiles       int `json:"sharedFiles"`
	CompletedThisWeek int `json:"completedThisWeek"`
	Notes             int `json:"notes"`
	Files             int `json:"files"`
}

type Dashboard struct {
	Greeting     string         `json:"greeting"`
	Date         string         `json:"date"`
	Stats        DashboardStats `json:"stats"`
	QuickActions []QuickAction  `json:"quickActions"`
}

// Overview gathers the dashboard from the workspaces. Any source may be nil.
type Overview struct {
	Tasks *TaskBoard
	Notes *NoteBook
	Files *FileCabinet
	Share *Feed
	Now   func() time.Time
}

func (o *Overview) Build() Dashboard {
	now := time.Now()
	if o.Now != nil {
		now = o.Now()
	}

	var stats DashboardStats
	if o.Tasks != nil {
		ts := o.Tasks.Stats(now)
		stats.ActiveTasks = ts.Active
		stats.OverdueTasks = ts.Overdue
		stats.CompletedThisWeek = ts.CompletedInWeek
	}
	if o.Share != nil {
		stats.SharedFiles = len(o.Share.Files())
	}
	if o.Notes != nil {
		stats.Notes = o.Notes.Count()
	}
	if o.Files != nil {
		stats.Files = o.Files.Count()
	}

	return Dashboard{
		Greeting:     Greeting(now),
		Date:         DateLine(now),
		Stats:        stats,
		QuickActions: QuickActions,
	}
}
