package services

import (
	"sync"

	"larre/model"
)

// Feed is the local read model of the Quick-Share collection. Every snapshot
// replaces the whole list; nothing is merged or accumulated.
type Feed struct {
	mu       sync.RWMutex
	files    []model.SharedFile
	loading  bool
	watchers map[int]chan []model.SharedFile
	nextID   int
}

func NewFeed() *Feed {
	return &Feed{
		loading:  true,
		watchers: make(map[int]chan []model.SharedFile),
	}
}

// Apply replaces the feed contents with snapshot and notifies watchers.
func (f *Feed) Apply(snapshot []model.SharedFile) {
	files := cloneShared(snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.files = files
	f.loading = false

	for _, ch := range f.watchers {
		// keep only the newest snapshot for slow readers
		select {
		case <-ch:
		default:
		}
		ch <- cloneShared(files)
	}
}

func (f *Feed) Files() []model.SharedFile {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneShared(f.files)
}

// Loading is true until the first snapshot arrives.
func (f *Feed) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

func (f *Feed) Find(id string) (model.SharedFile, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, file := range f.files {
		if file.ID == id {
			return file, true
		}
	}
	return model.SharedFile{}, false
}

// Watch returns a channel that receives every later snapshot. The current one
// is delivered first when the feed has already loaded.
func (f *Feed) Watch() (<-chan []model.SharedFile, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan []model.SharedFile, 1)
	id := f.nextID
	f.nextID++
	f.watchers[id] = ch

	if !f.loading {
		ch <- cloneShared(f.files)
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.watchers, id)
			close(ch)
		})
	}
	return ch, cancel
}

func cloneShared(in []model.SharedFile) []model.SharedFile {
	out := make([]model.SharedFile, len(in))
	copy(out, in)
	return out
}
