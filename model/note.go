package model

import "time"

type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         []Tag     `json:"tags"`
	Pinned       bool      `json:"pinned"`
	TemplateName *string   `json:"templateName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	UserID       string    `json:"userId"`
}

type NoteTemplate struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}
