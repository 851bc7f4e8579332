package dto

import (
	"time"

	"github.com/dustin/go-humanize"

	"larre/model"
	"larre/services"
)

type SharedFileResponse struct {
	model.SharedFile
	Kind      services.FileKind `json:"kind"`
	SizeLabel string            `json:"sizeLabel"`
	SharedAgo string            `json:"sharedAgo"`
}

func NewSharedFileResponse(f model.SharedFile, now time.Time) SharedFileResponse {
	resp := SharedFileResponse{
		SharedFile: f,
		Kind:       services.KindOf(f.MimeType),
		SizeLabel:  humanize.Bytes(uint64(max(f.Size, 0))),
	}
	if !f.CreatedAt.IsZero() {
		resp.SharedAgo = humanize.RelTime(f.CreatedAt, now, "ago", "from now")
	}
	return resp
}

func NewSharedFileResponses(files []model.SharedFile, now time.Time) []SharedFileResponse {
	out := make([]SharedFileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, NewSharedFileResponse(f, now))
	}
	return out
}

type ShareStateResponse struct {
	Files   []SharedFileResponse   `json:"files"`
	Loading bool                   `json:"loading"`
	Uploads []model.UploadProgress `json:"uploads"`
	Device  model.Device           `json:"device"`
}

type UploadAcceptedResponse struct {
	Message string   `json:"message"`
	FileIDs []string `json:"fileIds"`
}

type UploadResultsResponse struct {
	Results []services.UploadResult `json:"results"`
}
