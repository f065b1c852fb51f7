package services

import (
	"sync"

	"fauna-gallery/pkg/models"
)

// Watcher collects store changes for one consumer without ever blocking the writer.
// Changes are coalesced per category; Ready fires when something is pending.
type Watcher struct {
	ready chan struct{}
	stop  func()

	mu      sync.Mutex
	cards   map[models.Category]bool
	hover   bool
	stopped bool
}

// Watch subscribes a new Watcher to the store
func (s *Store) Watch() *Watcher {
	w := &Watcher{
		ready: make(chan struct{}, 1),
		cards: make(map[models.Category]bool),
	}
	w.stop = s.Subscribe(w.record)
	return w
}

func (w *Watcher) record(change models.Change) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	if change.Kind == models.ChangeHover {
		w.hover = true
	} else {
		w.cards[change.Category] = true
	}
	w.mu.Unlock()

	select {
	case w.ready <- struct{}{}:
	default:
	}
}

// Ready receives a value whenever changes are waiting to be drained
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Drain returns the categories whose card changed, in display order, and whether
// the hover target changed, then resets the pending set.
func (w *Watcher) Drain() (cards []models.Category, hover bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, c := range models.Categories {
		if w.cards[c] {
			cards = append(cards, c)
		}
	}
	hover = w.hover
	w.cards = make(map[models.Category]bool)
	w.hover = false
	return cards, hover
}

// Stop unsubscribes the watcher
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.stop()
}
