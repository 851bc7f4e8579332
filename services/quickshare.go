package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"larre/logger"
	"larre/model"
)

// StoragePrefix is the object-store folder Quick-Share files live under.
const StoragePrefix = "quickshare"

// ShareSource delivers full snapshots of the Quick-Share collection, newest
// first, until ctx is cancelled.
type ShareSource interface {
	Subscribe(ctx context.Context, onSnapshot func([]model.SharedFile)) error
}

// ShareMetadata writes and deletes Quick-Share documents.
type ShareMetadata interface {
	Add(ctx context.Context, file model.SharedFile) (string, error)
	Delete(ctx context.Context, id string) error
}

// ObjectStore holds the shared file contents.
type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader, size int64, progress func(transferred, total int64)) error
	DownloadURL(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
}

type UploadFile struct {
	Name     string
	MimeType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type UploadResult struct {
	FileID      string            `json:"fileId"`
	Name        string            `json:"name"`
	StoragePath string            `json:"storagePath"`
	DocumentID  string            `json:"documentId,omitempty"`
	State       model.UploadState `json:"state"`
	Error       string            `json:"error,omitempty"`
}

// UploadBatch is a set of files with ids and storage paths already allocated.
type UploadBatch struct {
	items []batchItem
}

type batchItem struct {
	id   string
	path string
	file UploadFile
}

func (b *UploadBatch) IDs() []string {
	ids := make([]string, len(b.items))
	for i, item := range b.items {
		ids[i] = item.id
	}
	return ids
}

func (b *UploadBatch) Len() int {
	return len(b.items)
}

type QuickShare struct {
	source  ShareSource
	meta    ShareMetadata
	objects ObjectStore
	feed    *Feed
	tracker *UploadTracker
	logger  *logger.Logger
	metrics *Metrics
	newID   func() string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	batches sync.WaitGroup
}

type QuickShareOption func(*QuickShare)

func WithMetrics(m *Metrics) QuickShareOption {
	return func(q *QuickShare) { q.metrics = m }
}

func WithIDGenerator(fn func() string) QuickShareOption {
	return func(q *QuickShare) { q.newID = fn }
}

func NewQuickShare(source ShareSource, meta ShareMetadata, objects ObjectStore, log *logger.Logger, opts ...QuickShareOption) *QuickShare {
	q := &QuickShare{
		source:  source,
		meta:    meta,
		objects: objects,
		feed:    NewFeed(),
		tracker: NewUploadTracker(),
		logger:  log.WithComponent("quickshare"),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *QuickShare) Feed() *Feed {
	return q.feed
}

func (q *QuickShare) Tracker() *UploadTracker {
	return q.tracker
}

// Start opens the live subscription. Calling it twice is a no-op.
func (q *QuickShare) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		err := q.source.Subscribe(runCtx, func(files []model.SharedFile) {
			q.feed.Apply(files)
			q.metrics.snapshot(len(files))
		})
		if err != nil && runCtx.Err() == nil {
			q.logger.WithError(err).Errorw("Quick-Share subscription ended")
		}
	}(q.done)
}

// Stop closes the subscription, waits for the listener to exit and then for
// every background batch to finish.
func (q *QuickShare) Stop() {
	q.mu.Lock()
	cancel, done := q.cancel, q.done
	q.cancel, q.done = nil, nil
	q.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	q.batches.Wait()
}

// RunAsync runs batch in its own goroutine. finished, if set, runs once the
// batch is done. Stop waits for it.
func (q *QuickShare) RunAsync(ctx context.Context, batch *UploadBatch, device model.Device, finished func()) {
	q.batches.Add(1)
	go func() {
		defer q.batches.Done()
		if finished != nil {
			defer finished()
		}
		q.Run(ctx, batch, device)
	}()
}

// Prepare allocates an id and storage path per file and queues it in the tracker.
func (q *QuickShare) Prepare(files []UploadFile) *UploadBatch {
	batch := &UploadBatch{items: make([]batchItem, 0, len(files))}
	for _, f := range files {
		id := q.newID()
		item := batchItem{id: id, path: StoragePath(id, f.Name), file: f}
		batch.items = append(batch.items, item)
		q.tracker.Queue(id, f.Name)
	}
	return batch
}

// Run uploads the batch one file at a time. A failed file does not stop the
// ones after it and never gets a metadata record.
func (q *QuickShare) Run(ctx context.Context, batch *UploadBatch, device model.Device) []UploadResult {
	results := make([]UploadResult, 0, len(batch.items))
	for _, item := range batch.items {
		result := UploadResult{FileID: item.id, Name: item.file.Name, StoragePath: item.path}

		docID, err := q.uploadOne(ctx, item, device)
		q.metrics.uploadDone(item.file.Size, err)
		if err != nil {
			q.logger.WithError(err).Errorw("Upload failed", "file_id", item.id, "name", item.file.Name)
			q.tracker.Fail(item.id, err)
			result.State = model.UploadFailed
			result.Error = err.Error()
		} else {
			q.tracker.Complete(item.id)
			result.State = model.UploadCompleted
			result.DocumentID = docID
		}
		results = append(results, result)
	}
	return results
}

// Upload is Prepare followed by Run.
func (q *QuickShare) Upload(ctx context.Context, files []UploadFile, device model.Device) []UploadResult {
	return q.Run(ctx, q.Prepare(files), device)
}

func (q *QuickShare) uploadOne(ctx context.Context, item batchItem, device model.Device) (string, error) {
	if item.file.Open == nil {
		return "", fmt.Errorf("%w: no content for %q", ErrInvalidInput, item.file.Name)
	}
	rc, err := item.file.Open()
	if err != nil {
		return "", fmt.Errorf("open %q: %w", item.file.Name, err)
	}
	defer rc.Close()

	contentType := item.file.MimeType
	var body io.Reader = rc
	if contentType == "" || contentType == "application/octet-stream" {
		contentType, body, err = sniffContentType(rc)
		if err != nil {
			return "", fmt.Errorf("read %q: %w", item.file.Name, err)
		}
	}

	err = q.objects.Upload(ctx, item.path, contentType, body, item.file.Size, func(transferred, total int64) {
		q.tracker.Progress(item.id, transferred, total)
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}

	downloadURL, err := q.objects.DownloadURL(ctx, item.path)
	if err != nil {
		return "", fmt.Errorf("download url: %w", err)
	}

	record := model.SharedFile{
		Name:             item.file.Name,
		MimeType:         contentType,
		Size:             item.file.Size,
		DownloadURL:      downloadURL,
		StoragePath:      item.path,
		SenderDeviceName: device.Name,
		SenderDeviceType: device.Type,
	}
	if strings.HasPrefix(contentType, "image/") {
		thumb := downloadURL
		record.ThumbnailURL = &thumb
	}

	docID, err := q.meta.Add(ctx, record)
	if err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	return docID, nil
}

// Remove deletes the stored object, then the metadata document. A missing
// object is not an error, and the document is deleted even when the object
// delete fails. The feed is left alone; the next snapshot reflects the change.
func (q *QuickShare) Remove(ctx context.Context, file model.SharedFile) error {
	var objectErr error
	if file.StoragePath != "" {
		if err := q.objects.Delete(ctx, file.StoragePath); err != nil && !errors.Is(err, ErrObjectNotFound) {
			objectErr = fmt.Errorf("delete object %s: %w", file.StoragePath, err)
		}
	}

	var metaErr error
	if err := q.meta.Delete(ctx, file.ID); err != nil {
		metaErr = fmt.Errorf("delete metadata %s: %w", file.ID, err)
	}

	err := errors.Join(objectErr, metaErr)
	q.metrics.removalDone(err)
	if err != nil {
		q.logger.WithError(err).Errorw("Delete failed", "file_id", file.ID)
	}
	return err
}

// RemoveByID removes a file known to the current feed.
func (q *QuickShare) RemoveByID(ctx context.Context, id string) error {
	file, ok := q.feed.Find(id)
	if !ok {
		return fmt.Errorf("shared file %s: %w", id, ErrNotFound)
	}
	return q.Remove(ctx, file)
}

// StoragePath is where a shared file's content is stored.
func StoragePath(id, name string) string {
	return fmt.Sprintf("%s/%s_%s", StoragePrefix, id, name)
}

func sniffContentType(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	head = head[:n]
	return mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), r), nil
}
