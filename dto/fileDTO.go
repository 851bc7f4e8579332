package dto

import (
	"github.com/dustin/go-humanize"

	"larre/model"
	"larre/services"
)

type CreateFolderRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parentId"`
	Color    *string `json:"color" binding:"omitempty,tagcolor"`
}

type BrowseQuery struct {
	Folder string `form:"folder"`
	Query  string `form:"q"`
	View   string `form:"view" binding:"omitempty,oneof=grid list"`
}

// FolderID maps the empty folder parameter to the root.
func (q BrowseQuery) FolderID() *string {
	if q.Folder == "" {
		return nil
	}
	id := q.Folder
	return &id
}

type FileResponse struct {
	model.FileItem
	Kind      services.FileKind `json:"kind"`
	SizeLabel string            `json:"sizeLabel"`
}

func NewFileResponse(f model.FileItem) FileResponse {
	return FileResponse{FileItem: f, Kind: services.KindOf(f.MimeType), SizeLabel: humanize.Bytes(uint64(max(f.Size, 0)))}
}

func NewFileResponses(files []model.FileItem) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, NewFileResponse(f))
	}
	return out
}

type ListingResponse struct {
	Folders    []model.Folder `json:"folders"`
	Files      []FileResponse `json:"files"`
	Breadcrumb []model.Folder `json:"breadcrumb"`
	View       string         `json:"view"`
}
