package dto

import (
	"larre/model"
	"larre/services"
)

type CreateNoteRequest struct {
	Template string `json:"template"`
}

type UpdateNoteRequest struct {
	Title   *string      `json:"title"`
	Content *string      `json:"content"`
	Tags    []TagRequest `json:"tags" binding:"omitempty,dive"`
}

func (r UpdateNoteRequest) ToPatch() services.NotePatch {
	return services.NotePatch{Title: r.Title, Content: r.Content, Tags: toTags(r.Tags)}
}

type NoteResponse struct {
	model.Note
	Preview string `json:"preview"`
}

func NewNoteResponse(n model.Note) NoteResponse {
	return NoteResponse{Note: n, Preview: services.NotePreview(n.Content)}
}

func NewNoteResponses(notes []model.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, NewNoteResponse(n))
	}
	return out
}
