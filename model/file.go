package model

import "time"

type FileItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	StorageURL   string    `json:"storageUrl"`
	DownloadURL  string    `json:"downloadUrl"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
	FolderID     *string   `json:"folderId"` // nil = root
	Tags         []Tag     `json:"tags"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	UserID       string    `json:"userId"`
}

type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parentId"` // nil = root
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId"`
}
