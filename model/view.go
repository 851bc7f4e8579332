package model

type View struct {
	Key   string `json:"key"`
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Views is the client's top-level route surface.
var Views = []View{
	{Key: "dashboard", Path: "/", Title: "Dashboard"},
	{Key: "tasks", Path: "/tasks", Title: "Tasks"},
	{Key: "share", Path: "/share", Title: "Quick Share"},
	{Key: "files", Path: "/files", Title: "Files"},
	{Key: "notes", Path: "/notes", Title: "Notes"},
	{Key: "settings", Path: "/settings", Title: "Settings"},
}
