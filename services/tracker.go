package services

import (
	"sync"

	"larre/model"
)

// UploadTracker holds the in-flight Quick-Share uploads, in the order they were queued.
type UploadTracker struct {
	mu        sync.Mutex
	entries   []model.UploadProgress
	observers map[int]func(model.UploadProgress)
	nextID    int
}

func NewUploadTracker() *UploadTracker {
	return &UploadTracker{observers: map[int]func(model.UploadProgress){}}
}

// Observe registers fn to receive every state change, including the terminal
// completed/failed events of entries that are then dropped. The returned
// func unregisters it.
func (t *UploadTracker) Observe(fn func(model.UploadProgress)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.observers[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.observers, id)
	}
}

func (t *UploadTracker) Queue(fileID, fileName string) {
	entry := model.UploadProgress{FileID: fileID, FileName: fileName, State: model.UploadQueued}

	t.mu.Lock()
	if t.indexOf(fileID) < 0 {
		t.entries = append(t.entries, entry)
	}
	observers := t.listeners()
	t.mu.Unlock()

	notify(observers, entry)
}

func (t *UploadTracker) Progress(fileID string, transferred, total int64) {
	var pct float64
	if total > 0 {
		pct = float64(transferred) / float64(total) * 100
	}
	if pct > 100 {
		pct = 100
	}

	t.mu.Lock()
	idx := t.indexOf(fileID)
	if idx < 0 {
		t.mu.Unlock()
		return
	}
	t.entries[idx].Progress = pct
	t.entries[idx].State = model.UploadTransferring
	event := t.entries[idx]
	observers := t.listeners()
	t.mu.Unlock()

	notify(observers, event)
}

// Complete drops the entry once its metadata record exists.
func (t *UploadTracker) Complete(fileID string) {
	t.finish(fileID, model.UploadCompleted, nil)
}

// Fail drops the entry; the error is reported to observers only.
func (t *UploadTracker) Fail(fileID string, err error) {
	t.finish(fileID, model.UploadFailed, err)
}

func (t *UploadTracker) Snapshot() []model.UploadProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.UploadProgress, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *UploadTracker) finish(fileID string, state model.UploadState, err error) {
	t.mu.Lock()
	idx := t.indexOf(fileID)
	if idx < 0 {
		t.mu.Unlock()
		return
	}
	event := t.entries[idx]
	event.State = state
	if state == model.UploadCompleted {
		event.Progress = 100
	}
	if err != nil {
		event.Error = err.Error()
	}
	t.entries = append(t.entries[:idx], t.entries[idx+1:]...)
	observers := t.listeners()
	t.mu.Unlock()

	notify(observers, event)
}

func (t *UploadTracker) indexOf(fileID string) int {
	for i, e := range t.entries {
		if e.FileID == fileID {
			return i
		}
	}
	return -1
}

func (t *UploadTracker) listeners() []func(model.UploadProgress) {
	out := make([]func(model.UploadProgress), 0, len(t.observers))
	for _, fn := range t.observers {
		out = append(out, fn)
	}
	return out
}

func notify(observers []func(model.UploadProgress), event model.UploadProgress) {
	for _, fn := range observers {
		fn(event)
	}
}
