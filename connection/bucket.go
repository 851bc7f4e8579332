package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"larre/services"
)

const downloadTokenKey = "firebaseStorageDownloadTokens"

// ShareBucket stores Quick-Share contents in the Firebase Storage bucket.
type ShareBucket struct {
	bucket    *storage.BucketHandle
	name      string
	chunkSize int
}

func NewShareBucket(bucket *storage.BucketHandle, name string, chunkSize int) *ShareBucket {
	return &ShareBucket{bucket: bucket, name: name, chunkSize: chunkSize}
}

// Upload streams r to path with a resumable upload, reporting progress after
// every chunk and once more when the object is committed.
func (b *ShareBucket) Upload(ctx context.Context, path, contentType string, r io.Reader, size int64, progress func(transferred, total int64)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := b.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.ChunkSize = b.chunkSize
	w.Metadata = map[string]string{downloadTokenKey: uuid.NewString()}
	if progress != nil {
		w.ProgressFunc = func(n int64) { progress(n, size) }
	}

	written, err := io.Copy(w, r)
	if err != nil {
		// cancelling before Close abandons the upload
		cancel()
		_ = w.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("commit %s: %w", path, err)
	}
	if progress != nil {
		total := size
		if total <= 0 {
			total = written
		}
		progress(written, total)
	}
	return nil
}

// DownloadURL returns the token-bearing Firebase download URL, minting a token
// for objects that were uploaded without one.
func (b *ShareBucket) DownloadURL(ctx context.Context, path string) (string, error) {
	obj := b.bucket.Object(path)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return "", b.mapErr(err)
	}

	token := firstToken(attrs.Metadata[downloadTokenKey])
	if token == "" {
		token = uuid.NewString()
		metadata := map[string]string{}
		for k, v := range attrs.Metadata {
			metadata[k] = v
		}
		metadata[downloadTokenKey] = token
		if _, err := obj.Update(ctx, storage.ObjectAttrsToUpdate{Metadata: metadata}); err != nil {
			return "", b.mapErr(err)
		}
	}
	return FirebaseDownloadURL(b.name, path, token), nil
}

func (b *ShareBucket) Delete(ctx context.Context, path string) error {
	return b.mapErr(b.bucket.Object(path).Delete(ctx))
}

func (b *ShareBucket) mapErr(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return services.ErrObjectNotFound
	}
	return err
}

// FirebaseDownloadURL builds the public download link Firebase clients use.
func FirebaseDownloadURL(bucket, path, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(path), url.QueryEscape(token))
}

func firstToken(tokens string) string {
	token, _, _ := strings.Cut(tokens, ",")
	return strings.TrimSpace(token)
}
