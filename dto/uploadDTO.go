package dto

import (
	"io"
	"mime/multipart"

	"larre/services"
)

// UploadFiles adapts multipart parts for the upload services. The parts stay
// readable only while the request is being handled.
func UploadFiles(headers []*multipart.FileHeader) []services.UploadFile {
	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, services.UploadFile{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return files
}
