package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"larre/logger"
	"larre/model"
)

type fakeSource struct {
	snapshots chan []model.SharedFile
}

func (s *fakeSource) Subscribe(ctx context.Context, onSnapshot func([]model.SharedFile)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-s.snapshots:
			onSnapshot(snap)
		}
	}
}

type fakeMeta struct {
	mu        sync.Mutex
	added     []model.SharedFile
	deleted   []string
	addErr    error
	deleteErr error
}

func (m *fakeMeta) Add(_ context.Context, file model.SharedFile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return "", m.addErr
	}
	m.added = append(m.added, file)
	return fmt.Sprintf("doc-%d", len(m.added)), nil
}

func (m *fakeMeta) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

type fakeObjects struct {
	mu          sync.Mutex
	stored      map[string][]byte
	types       map[string]string
	failUpload  map[string]error
	failURL     map[string]error
	deleteErr   error
	deletedPath []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{
		stored:     map[string][]byte{},
		types:      map[string]string{},
		failUpload: map[string]error{},
		failURL:    map[string]error{},
	}
}

func (o *fakeObjects) Upload(_ context.Context, path, contentType string, r io.Reader, size int64, progress func(transferred, total int64)) error {
	if err := o.failUpload[path]; err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	progress(int64(len(data))/2, size)
	progress(int64(len(data)), size)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.stored[path] = data
	o.types[path] = contentType
	return nil
}

func (o *fakeObjects) DownloadURL(_ context.Context, path string) (string, error) {
	if err := o.failURL[path]; err != nil {
		return "", err
	}
	return "https://files.test/" + path, nil
}

func (o *fakeObjects) Delete(_ context.Context, path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deletedPath = append(o.deletedPath, path)
	if o.deleteErr != nil {
		return o.deleteErr
	}
	delete(o.stored, path)
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func memFile(name, mimeType string, data []byte) UploadFile {
	return UploadFile{
		Name:     name,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func newTestQuickShare(source ShareSource, meta *fakeMeta, objects *fakeObjects) *QuickShare {
	if source == nil {
		source = &fakeSource{snapshots: make(chan []model.SharedFile)}
	}
	return NewQuickShare(source, meta, objects, logger.NewNop(), WithIDGenerator(sequentialIDs()))
}

var laptop = model.Device{Name: "Mac", Type: model.DeviceLaptop}

func TestUploadTwoFilesSequentially(t *testing.T) {
	meta, objects := &fakeMeta{}, newFakeObjects()
	qs := newTestQuickShare(nil, meta, objects)

	var events []model.UploadProgress
	qs.Tracker().Observe(func(p model.UploadProgress) { events = append(events, p) })

	results := qs.Upload(context.Background(), []UploadFile{
		memFile("a.png", "image/png", []byte("png-bytes")),
		memFile("notes.txt", "text/plain", []byte("hello")),
	}, laptop)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, model.UploadCompleted, r.State)
		assert.Empty(t, r.Error)
	}
	assert.Equal(t, "quickshare/id1_a.png", results[0].StoragePath)
	assert.Equal(t, "quickshare/id2_notes.txt", results[1].StoragePath)

	require.Len(t, meta.added, 2)
	img, txt := meta.added[0], meta.added[1]

	assert.Equal(t, "a.png", img.Name)
	assert.Equal(t, "https://files.test/quickshare/id1_a.png", img.DownloadURL)
	require.NotNil(t, img.ThumbnailURL)
	assert.Equal(t, img.DownloadURL, *img.ThumbnailURL)
	assert.Equal(t, "Mac", img.SenderDeviceName)
	assert.Equal(t, model.DeviceLaptop, img.SenderDeviceType)

	assert.Equal(t, "notes.txt", txt.Name)
	assert.Nil(t, txt.ThumbnailURL)
	assert.Equal(t, int64(5), txt.Size)

	assert.Empty(t, qs.Tracker().Snapshot())

	// every event for the first file comes before any transfer of the second
	lastFirst, firstSecondTransfer := -1, -1
	for i, e := range events {
		if e.FileID == "id1" {
			lastFirst = i
		}
		if e.FileID == "id2" && e.State == model.UploadTransferring && firstSecondTransfer < 0 {
			firstSecondTransfer = i
		}
	}
	assert.Less(t, lastFirst, firstSecondTransfer)
}

func TestUploadFailureWritesNoMetadata(t *testing.T) {
	meta, objects := &fakeMeta{}, newFakeObjects()
	objects.failUpload["quickshare/id1_broken.bin"] = errors.New("network down")
	qs := newTestQuickShare(nil, meta, objects)

	results := qs.Upload(context.Background(), []UploadFile{
		memFile("broken.bin", "application/zip", []byte("zip")),
		memFile("ok.txt", "text/plain", []byte("fine")),
	}, laptop)

	require.Len(t, results, 2)
	assert.Equal(t, model.UploadFailed, results[0].State)
	assert.Contains(t, results[0].Error, "network down")
	assert.Equal(t, model.UploadCompleted, results[1].State)

	require.Len(t, meta.added, 1)
	assert.Equal(t, "ok.txt", meta.added[0].Name)
	assert.Empty(t, qs.Tracker().Snapshot())
}

func TestUploadDownloadURLFailureWritesNoMetadata(t *testing.T) {
	meta, objects := &fakeMeta{}, newFakeObjects()
	objects.failURL["quickshare/id1_a.txt"] = errors.New("forbidden")
	qs := newTestQuickShare(nil, meta, objects)

	results := qs.Upload(context.Background(), []UploadFile{memFile("a.txt", "text/plain", []byte("x"))}, laptop)

	require.Len(t, results, 1)
	assert.Equal(t, model.UploadFailed, results[0].State)
	assert.Empty(t, meta.added)
}

func TestUploadMetadataFailureIsReported(t *testing.T) {
	meta, objects := &fakeMeta{addErr: errors.New("permission denied")}, newFakeObjects()
	qs := newTestQuickShare(nil, meta, objects)

	results := qs.Upload(context.Background(), []UploadFile{memFile("a.txt", "text/plain", []byte("x"))}, laptop)

	require.Len(t, results, 1)
	assert.Equal(t, model.UploadFailed, results[0].State)
	assert.Contains(t, results[0].Error, "write metadata")
}

func TestUploadSniffsMissingContentType(t *testing.T) {
	meta, objects := &fakeMeta{}, newFakeObjects()
	qs := newTestQuickShare(nil, meta, objects)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	results := qs.Upload(context.Background(), []UploadFile{memFile("photo", "", png)}, laptop)

	require.Equal(t, model.UploadCompleted, results[0].State)
	require.Len(t, meta.added, 1)
	assert.Equal(t, "image/png", meta.added[0].MimeType)
	assert.NotNil(t, meta.added[0].ThumbnailURL)
	assert.Equal(t, png, objects.stored["quickshare/id1_photo"])
}

func TestPrepareQueuesBeforeRun(t *testing.T) {
	qs := newTestQuickShare(nil, &fakeMeta{}, newFakeObjects())

	batch := qs.Prepare([]UploadFile{memFile("a", "text/plain", nil), memFile("b", "text/plain", nil)})
	assert.Equal(t, []string{"id1", "id2"}, batch.IDs())

	snap := qs.Tracker().Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, model.UploadQueued, snap[0].State)
	assert.Equal(t, "b", snap[1].FileName)
}

func TestRemoveMissingObjectStillDeletesMetadata(t *testing.T) {
	meta, objects := &fakeMeta{}, newFakeObjects()
	objects.deleteErr = ErrObjectNotFound
	qs := newTestQuickShare(nil, meta, objects)

	err := qs.Remove(context.Background(), model.SharedFile{ID: "doc-1", StoragePath: "quickshare/x_a.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, meta.deleted)
}

func TestRemoveObjectErrorStillDeletesMetadata(t *testing.T) {
	meta, objects := &fakeMeta{}, newFakeObjects()
	objects.deleteErr = errors.New("quota")
	qs := newTestQuickShare(nil, meta, objects)

	err := qs.Remove(context.Background(), model.SharedFile{ID: "doc-1", StoragePath: "quickshare/x_a.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
	assert.Equal(t, []string{"doc-1"}, meta.deleted)
}

func TestRemoveWithoutStoragePath(t *testing.T) {
	meta, objects := &fakeMeta{}, newFakeObjects()
	qs := newTestQuickShare(nil, meta, objects)

	require.NoError(t, qs.Remove(context.Background(), model.SharedFile{ID: "doc-1"}))
	assert.Empty(t, objects.deletedPath)
	assert.Equal(t, []string{"doc-1"}, meta.deleted)
}

func TestRemoveByID(t *testing.T) {
	meta, objects := &fakeMeta{}, newFakeObjects()
	qs := newTestQuickShare(nil, meta, objects)

	err := qs.RemoveByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	qs.Feed().Apply([]model.SharedFile{{ID: "doc-9", StoragePath: "quickshare/9_a.txt"}})
	require.NoError(t, qs.RemoveByID(context.Background(), "doc-9"))
	assert.Equal(t, []string{"quickshare/9_a.txt"}, objects.deletedPath)
	assert.Equal(t, []string{"doc-9"}, meta.deleted)

	// the feed waits for the next snapshot
	_, ok := qs.Feed().Find("doc-9")
	assert.True(t, ok)
}

func TestStartFollowsLatestSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := &fakeSource{snapshots: make(chan []model.SharedFile)}
	qs := newTestQuickShare(source, &fakeMeta{}, newFakeObjects())

	qs.Start(context.Background())
	qs.Start(context.Background())
	assert.True(t, qs.Feed().Loading())

	source.snapshots <- []model.SharedFile{{ID: "a"}, {ID: "b"}}
	source.snapshots <- []model.SharedFile{{ID: "c"}}

	require.Eventually(t, func() bool {
		files := qs.Feed().Files()
		return len(files) == 1 && files[0].ID == "c"
	}, time.Second, 5*time.Millisecond)
	assert.False(t, qs.Feed().Loading())

	qs.Stop()
	qs.Stop()
}

type gatedObjects struct {
	*fakeObjects
	started chan struct{}
	release chan struct{}
}

func (o *gatedObjects) Upload(ctx context.Context, path, contentType string, r io.Reader, size int64, progress func(transferred, total int64)) error {
	close(o.started)
	<-o.release
	return o.fakeObjects.Upload(ctx, path, contentType, r, size, progress)
}

func TestStopWaitsForBackgroundBatches(t *testing.T) {
	defer goleak.VerifyNone(t)

	objects := &gatedObjects{fakeObjects: newFakeObjects(), started: make(chan struct{}), release: make(chan struct{})}
	meta := &fakeMeta{}
	qs := NewQuickShare(&fakeSource{snapshots: make(chan []model.SharedFile)}, meta, objects, logger.NewNop(), WithIDGenerator(sequentialIDs()))
	qs.Start(context.Background())

	finished := make(chan struct{})
	batch := qs.Prepare([]UploadFile{memFile("a.txt", "text/plain", []byte("alpha"))})
	qs.RunAsync(context.Background(), batch, model.Device{Name: "Mac", Type: model.DeviceLaptop}, func() { close(finished) })
	<-objects.started

	stopped := make(chan struct{})
	go func() {
		qs.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a batch was still uploading")
	case <-time.After(50 * time.Millisecond):
	}

	close(objects.release)
	<-stopped

	select {
	case <-finished:
	default:
		t.Fatal("finished callback did not run before Stop returned")
	}
	meta.mu.Lock()
	defer meta.mu.Unlock()
	require.Len(t, meta.added, 1)
	assert.Equal(t, "quickshare/id1_a.txt", meta.added[0].StoragePath)
}

func TestStartLogsSubscriptionError(t *testing.T) {
	defer goleak.VerifyNone(t)

	qs := newTestQuickShare(failingSource{}, &fakeMeta{}, newFakeObjects())
	qs.Start(context.Background())
	qs.Stop()

	assert.True(t, qs.Feed().Loading())
}

type failingSource struct{}

func (failingSource) Subscribe(context.Context, func([]model.SharedFile)) error {
	return errors.New("permission denied")
}

func TestStoragePath(t *testing.T) {
	assert.Equal(t, "quickshare/abc_report.pdf", StoragePath("abc", "report.pdf"))
	assert.True(t, strings.HasPrefix(StoragePath("x", "y"), StoragePrefix+"/"))
}
