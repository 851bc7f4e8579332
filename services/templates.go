package services

import "larre/model"

// NoteTemplates are the starting bodies offered when creating a note.
var NoteTemplates = []model.NoteTemplate{
	{
		Name:    "Meeting Minutes",
		Content: `<h2>Meeting Minutes</h2><p><strong>Date:</strong> </p><p><strong>Attendees:</strong> </p><p><strong>Location:</strong> </p><hr><h3>Agenda</h3><ul><li></li></ul><h3>Discussion</h3><p></p><h3>Action Items</h3><ul data-type="taskList"><li data-type="taskItem" data-checked="false"></li></ul><h3>Next Meeting</h3><p></p>`,
	},
	{
		Name:    "Daily Field Report",
		Content: `<h2>Daily Field Report</h2><p><strong>Date:</strong> </p><p><strong>Project:</strong> </p><p><strong>Weather:</strong> </p><hr><h3>Work Completed Today</h3><ul><li></li></ul><h3>Manpower</h3><p></p><h3>Equipment on Site</h3><p></p><h3>Issues / Delays</h3><p></p><h3>Photos</h3><p></p>`,
	},
	{
		Name:    "RFI",
		Content: `<h2>Request for Information</h2><p><strong>RFI #:</strong> </p><p><strong>Date:</strong> </p><p><strong>Project:</strong> </p><p><strong>To:</strong> </p><p><strong>From:</strong> </p><hr><h3>Question</h3><p></p><h3>Reference Documents</h3><p></p><h3>Suggested Solution</h3><p></p><h3>Response</h3><p></p>`,
	},
	{
		Name:    "Phone Log",
		Content: `<h2>Phone Log</h2><p><strong>Date/Time:</strong> </p><p><strong>Contact:</strong> </p><p><strong>Company:</strong> </p><p><strong>Phone:</strong> </p><hr><h3>Discussion</h3><p></p><h3>Follow-up Required</h3><ul data-type="taskList"><li data-type="taskItem" data-checked="false"></li></ul>`,
	},
	{
		Name:    "General Note",
		Content: `<h2>Note</h2><p></p>`,
	},
}

func findTemplate(name string) (model.NoteTemplate, bool) {
	for _, t := range NoteTemplates {
		if t.Name == name {
			return t, true
		}
	}
	return model.NoteTemplate{}, false
}
