package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"larre/model"
)

const (
	untitledNote = "Untitled Note"
	emptyNote    = "Empty note"
	blankContent = "<p></p>"
)

type NotePatch struct {
	Title   *string
	Content *string
	Tags    []model.Tag
}

// NoteBook is the in-memory note list plus the note open in the editor.
type NoteBook struct {
	mu       sync.Mutex
	notes    []model.Note
	activeID string
	now      func() time.Time
}

func NewNoteBook() *NoteBook {
	return &NoteBook{now: time.Now}
}

// Create prepends a note, optionally seeded from a named template, and opens it.
func (b *NoteBook) Create(userID, templateName string) (model.Note, error) {
	title, content := untitledNote, blankContent
	var tmplName *string
	if templateName != "" {
		tmpl, ok := findTemplate(templateName)
		if !ok {
			return model.Note{}, fmt.Errorf("%w: unknown template %q", ErrInvalidInput, templateName)
		}
		title, content = tmpl.Name, tmpl.Content
		tmplName = &tmpl.Name
	}

	now := b.now()
	note := model.Note{
		ID:           uuid.NewString(),
		Title:        title,
		Content:      content,
		Tags:         []model.Tag{},
		TemplateName: tmplName,
		CreatedAt:    now,
		UpdatedAt:    now,
		UserID:       userID,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = append([]model.Note{note}, b.notes...)
	b.activeID = note.ID
	return note, nil
}

func (b *NoteBook) Update(id string, patch NotePatch) (model.Note, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return model.Note{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	note := b.notes[idx]
	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}
	if patch.Tags != nil {
		if err := checkTags(patch.Tags); err != nil {
			return model.Note{}, err
		}
		note.Tags = nonNilTags(patch.Tags)
	}
	note.UpdatedAt = b.now()
	b.notes[idx] = note
	return note, nil
}

// Delete removes a note and closes the editor only if that note was open.
func (b *NoteBook) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	b.notes = append(b.notes[:idx:idx], b.notes[idx+1:]...)
	if b.activeID == id {
		b.activeID = ""
	}
	return nil
}

func (b *NoteBook) TogglePin(id string) (model.Note, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return model.Note{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	b.notes[idx].Pinned = !b.notes[idx].Pinned
	b.notes[idx].UpdatedAt = b.now()
	return b.notes[idx], nil
}

func (b *NoteBook) Open(id string) (model.Note, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return model.Note{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	b.activeID = id
	return b.notes[idx], nil
}

func (b *NoteBook) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activeID = ""
}

// Active returns the note open in the editor, if any.
func (b *NoteBook) Active() (model.Note, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.activeID == "" {
		return model.Note{}, false
	}
	idx := b.indexOf(b.activeID)
	if idx < 0 {
		return model.Note{}, false
	}
	return b.notes[idx], true
}

// List filters by a case-insensitive title substring and sorts pinned notes
// first, then by most recently updated.
func (b *NoteBook) List(query string) []model.Note {
	b.mu.Lock()
	q := strings.ToLower(query)
	out := make([]model.Note, 0, len(b.notes))
	for _, n := range b.notes {
		if q == "" || strings.Contains(strings.ToLower(n.Title), q) {
			out = append(out, n)
		}
	}
	b.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (b *NoteBook) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.notes)
}

func (b *NoteBook) indexOf(id string) int {
	for i, n := range b.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// NotePreview is the plain text of a note body, or "Empty note" when there is none.
func NotePreview(content string) string {
	if text := PlainText(content); text != "" {
		return text
	}
	return emptyNote
}

// PlainText drops all markup from an HTML fragment and trims the result.
func PlainText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(sb.String())
}
