package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"larre/model"
)

// BlobStore keeps the bytes of workspace files.
type BlobStore interface {
	SaveFile(reader io.Reader, filename string) (string, int64, error)
	GetFile(location string) (io.ReadCloser, error)
	DeleteFile(location string) error
}

type FileKind string

const (
	KindImage        FileKind = "image"
	KindPDF          FileKind = "pdf"
	KindSpreadsheet  FileKind = "spreadsheet"
	KindDocument     FileKind = "document"
	KindPresentation FileKind = "presentation"
	KindVideo        FileKind = "video"
	KindFile         FileKind = "file"
)

// KindOf picks the icon family for a MIME type.
func KindOf(mimeType string) FileKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	case mimeType == "application/pdf":
		return KindPDF
	case strings.Contains(mimeType, "spreadsheet"), strings.Contains(mimeType, "excel"):
		return KindSpreadsheet
	case strings.Contains(mimeType, "document"), strings.Contains(mimeType, "word"):
		return KindDocument
	case strings.Contains(mimeType, "presentation"), strings.Contains(mimeType, "powerpoint"):
		return KindPresentation
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo
	}
	return KindFile
}

type Listing struct {
	Folders    []model.Folder   `json:"folders"`
	Files      []model.FileItem `json:"files"`
	Breadcrumb []model.Folder   `json:"breadcrumb"`
}

// FileCabinet is the in-memory file and folder tree. File contents go to a
// BlobStore; the tree itself is lost on restart.
type FileCabinet struct {
	mu      sync.Mutex
	files   []model.FileItem
	folders []model.Folder
	blobs   BlobStore
	// contentURL builds the client-facing URL for a stored file id.
	contentURL func(id string) string
	now        func() time.Time
}

func NewFileCabinet(blobs BlobStore, contentURL func(id string) string) *FileCabinet {
	if contentURL == nil {
		contentURL = func(id string) string { return "/api/files/" + id + "/content" }
	}
	return &FileCabinet{blobs: blobs, contentURL: contentURL, now: time.Now}
}

// AddFiles stores every file then prepends the batch, in upload order, to the
// given folder. A storage failure aborts the batch and nothing is listed.
func (c *FileCabinet) AddFiles(userID string, folderID *string, uploads []UploadFile) ([]model.FileItem, error) {
	if folderID != nil {
		c.mu.Lock()
		ok := c.folderIndex(*folderID) >= 0
		c.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("folder %s: %w", *folderID, ErrNotFound)
		}
	}

	now := c.now()
	added := make([]model.FileItem, 0, len(uploads))
	for _, up := range uploads {
		item, err := c.store(userID, folderID, up, now)
		if err != nil {
			for _, done := range added {
				_ = c.blobs.DeleteFile(done.StorageURL)
			}
			return nil, err
		}
		added = append(added, item)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(append([]model.FileItem{}, added...), c.files...)
	return added, nil
}

func (c *FileCabinet) store(userID string, folderID *string, up UploadFile, now time.Time) (model.FileItem, error) {
	if up.Open == nil {
		return model.FileItem{}, fmt.Errorf("%w: no content for %q", ErrInvalidInput, up.Name)
	}
	rc, err := up.Open()
	if err != nil {
		return model.FileItem{}, fmt.Errorf("open %q: %w", up.Name, err)
	}
	defer rc.Close()

	contentType := up.MimeType
	var body io.Reader = rc
	if contentType == "" || contentType == "application/octet-stream" {
		contentType, body, err = sniffContentType(rc)
		if err != nil {
			return model.FileItem{}, fmt.Errorf("read %q: %w", up.Name, err)
		}
	}

	id := uuid.NewString()
	location, written, err := c.blobs.SaveFile(body, id+"_"+path.Base(up.Name))
	if err != nil {
		return model.FileItem{}, fmt.Errorf("store %q: %w", up.Name, err)
	}

	item := model.FileItem{
		ID:          id,
		Name:        up.Name,
		MimeType:    contentType,
		Size:        written,
		StorageURL:  location,
		DownloadURL: c.contentURL(id),
		FolderID:    folderID,
		Tags:        []model.Tag{},
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
	}
	if KindOf(contentType) == KindImage {
		thumb := item.DownloadURL
		item.ThumbnailURL = &thumb
	}
	return item, nil
}

func (c *FileCabinet) DeleteFile(id string) error {
	c.mu.Lock()
	idx := c.fileIndex(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	item := c.files[idx]
	c.files = append(c.files[:idx:idx], c.files[idx+1:]...)
	c.mu.Unlock()

	if err := c.blobs.DeleteFile(item.StorageURL); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete content of %s: %w", id, err)
	}
	return nil
}

// Open returns the file record and a reader over its stored content.
func (c *FileCabinet) Open(id string) (model.FileItem, io.ReadCloser, error) {
	c.mu.Lock()
	idx := c.fileIndex(id)
	if idx < 0 {
		c.mu.Unlock()
		return model.FileItem{}, nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	item := c.files[idx]
	c.mu.Unlock()

	rc, err := c.blobs.GetFile(item.StorageURL)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.FileItem{}, nil, fmt.Errorf("content of %s: %w", id, ErrNotFound)
		}
		return model.FileItem{}, nil, err
	}
	return item, rc, nil
}

func (c *FileCabinet) CreateFolder(userID, name string, parentID, color *string) (model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Folder{}, fmt.Errorf("%w: folder name is required", ErrInvalidInput)
	}
	if color != nil && !model.IsTagColor(*color) {
		return model.Folder{}, fmt.Errorf("%w: colour %q outside the palette", ErrInvalidInput, *color)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if parentID != nil && c.folderIndex(*parentID) < 0 {
		return model.Folder{}, fmt.Errorf("folder %s: %w", *parentID, ErrNotFound)
	}

	folder := model.Folder{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  parentID,
		Color:     color,
		CreatedAt: c.now(),
		UserID:    userID,
	}
	c.folders = append([]model.Folder{folder}, c.folders...)
	return folder, nil
}

// DeleteFolder removes one folder. Its direct subfolders and files move to the root.
func (c *FileCabinet) DeleteFolder(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.folderIndex(id)
	if idx < 0 {
		return fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	c.folders = append(c.folders[:idx:idx], c.folders[idx+1:]...)

	for i := range c.folders {
		if c.folders[i].ParentID != nil && *c.folders[i].ParentID == id {
			c.folders[i].ParentID = nil
		}
	}
	for i := range c.files {
		if c.files[i].FolderID != nil && *c.files[i].FolderID == id {
			c.files[i].FolderID = nil
			c.files[i].UpdatedAt = c.now()
		}
	}
	return nil
}

// Browse lists the folders and files directly inside folderID (nil is the
// root), narrowing files by a case-insensitive name substring.
func (c *FileCabinet) Browse(folderID *string, query string) (Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if folderID != nil && c.folderIndex(*folderID) < 0 {
		return Listing{}, fmt.Errorf("folder %s: %w", *folderID, ErrNotFound)
	}

	listing := Listing{Folders: []model.Folder{}, Files: []model.FileItem{}, Breadcrumb: c.breadcrumb(folderID)}
	for _, f := range c.folders {
		if sameFolder(f.ParentID, folderID) {
			listing.Folders = append(listing.Folders, f)
		}
	}
	q := strings.ToLower(query)
	for _, f := range c.files {
		if !sameFolder(f.FolderID, folderID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(f.Name), q) {
			continue
		}
		listing.Files = append(listing.Files, f)
	}
	return listing, nil
}

func (c *FileCabinet) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.files)
}

// breadcrumb walks from the current folder up to the root and returns the
// path root first. Parent cycles are cut at the first repeat.
func (c *FileCabinet) breadcrumb(folderID *string) []model.Folder {
	var trail []model.Folder
	seen := map[string]bool{}
	for id := folderID; id != nil && !seen[*id]; {
		seen[*id] = true
		idx := c.folderIndex(*id)
		if idx < 0 {
			break
		}
		trail = append([]model.Folder{c.folders[idx]}, trail...)
		id = c.folders[idx].ParentID
	}
	if trail == nil {
		return []model.Folder{}
	}
	return trail
}

func (c *FileCabinet) fileIndex(id string) int {
	for i, f := range c.files {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (c *FileCabinet) folderIndex(id string) int {
	for i, f := range c.folders {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func sameFolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
