package services

import (
	"sync"

	"fauna-gallery/pkg/models"
)

// Store holds the view state of one page session: an image URL and a loading
// flag for every category, plus the optional hover target.
// Subscribers are called after every mutation, outside the lock.
type Store struct {
	mu      sync.RWMutex
	images  map[models.Category]string
	loading map[models.Category]bool
	hover   *models.Category

	subsMu  sync.Mutex
	subs    map[int]func(models.Change)
	nextSub int
}

// NewStore creates a store with empty URLs and every category loading
func NewStore() *Store {
	s := &Store{
		images:  make(map[models.Category]string, len(models.Categories)),
		loading: make(map[models.Category]bool, len(models.Categories)),
		subs:    make(map[int]func(models.Change)),
	}
	for _, c := range models.Categories {
		s.images[c] = ""
		s.loading[c] = true
	}
	return s
}

// SetURL replaces the image URL for c
func (s *Store) SetURL(c models.Category, url string) {
	s.mu.Lock()
	s.images[c] = url
	s.mu.Unlock()

	s.notify(models.Change{Kind: models.ChangeImage, Category: c})
}

// SetLoading sets the loading flag for c
func (s *Store) SetLoading(c models.Category, loading bool) {
	s.mu.Lock()
	s.loading[c] = loading
	s.mu.Unlock()

	s.notify(models.Change{Kind: models.ChangeLoading, Category: c})
}

// SetHover makes c the only hover target
func (s *Store) SetHover(c models.Category) {
	s.mu.Lock()
	s.hover = &c
	s.mu.Unlock()

	s.notify(models.Change{Kind: models.ChangeHover, Category: c})
}

// ClearHover removes the hover target
func (s *Store) ClearHover() {
	s.mu.Lock()
	s.hover = nil
	s.mu.Unlock()

	s.notify(models.Change{Kind: models.ChangeHover})
}

// URL returns the image URL for c
func (s *Store) URL(c models.Category) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.images[c]
}

// Loading returns the loading flag for c
func (s *Store) Loading(c models.Category) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[c]
}

// Snapshot copies the current state
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.Snapshot{
		Images:  make(map[models.Category]string, len(s.images)),
		Loading: make(map[models.Category]bool, len(s.loading)),
	}
	for c, url := range s.images {
		snap.Images[c] = url
	}
	for c, l := range s.loading {
		snap.Loading[c] = l
	}
	if s.hover != nil {
		h := *s.hover
		snap.Hover = &h
	}
	return snap
}

// Subscribe registers fn for every future change. Call the returned func to stop.
func (s *Store) Subscribe(fn func(models.Change)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) notify(change models.Change) {
	s.subsMu.Lock()
	subs := make([]func(models.Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}
