package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fauna-gallery/pkg/models"
)

// SessionOptions tune how a session runs its fetches
type SessionOptions struct {
	// MinLoading is the shortest time a loading flag stays set after a fetch starts
	MinLoading time.Duration
	// Supersede cancels an in-flight fetch when the same category is fetched again
	// and drops the superseded result instead of letting the last completion win.
	Supersede bool
}

// Session is one page load: its view state and the fetches writing into it
type Session struct {
	ID        string
	CreatedAt time.Time

	store   *Store
	fetcher ImageFetcher
	opts    SessionOptions
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	gen      map[models.Category]uint64
	inflight map[models.Category]context.CancelFunc
}

// NewSession creates a session with fresh state. Nothing is fetched until Mount.
func NewSession(id string, fetcher ImageFetcher, opts SessionOptions, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		store:     NewStore(),
		fetcher:   fetcher,
		opts:      opts,
		logger:    logger.With(slog.String("session_id", id)),
		ctx:       ctx,
		cancel:    cancel,
		gen:       make(map[models.Category]uint64),
		inflight:  make(map[models.Category]context.CancelFunc),
	}
}

// Store returns the session's view state
func (s *Session) Store() *Store {
	return s.store
}

// Mount starts one fetch per category, all concurrently
func (s *Session) Mount() {
	for _, c := range models.Categories {
		if err := s.Refetch(c); err != nil {
			s.logger.Warn("mount fetch not started", slog.String("category", c.String()), slog.String("error", err.Error()))
		}
	}
}

// Refetch sets c back to loading and fetches a new image for it.
// Other categories and any earlier fetch for c are left running.
func (s *Session) Refetch(c models.Category) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownCategory, string(c))
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	ctx, gen := s.beginLocked(c)
	s.wg.Add(1)
	s.mu.Unlock()

	s.store.SetLoading(c, true)
	go s.run(ctx, c, gen)
	return nil
}

// beginLocked registers a new fetch for c and returns its context and generation.
func (s *Session) beginLocked(c models.Category) (context.Context, uint64) {
	s.gen[c]++
	gen := s.gen[c]

	if !s.opts.Supersede {
		return s.ctx, gen
	}
	if prev, ok := s.inflight[c]; ok {
		prev()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.inflight[c] = cancel
	return ctx, gen
}

// apply runs write if the fetch numbered gen may still write to c. A closed
// session takes no writes. With newestOnly, or in supersede mode, only the most
// recent fetch for c may write; otherwise any fetch may, so the last one to
// complete wins.
func (s *Session) apply(c models.Category, gen uint64, newestOnly bool, write func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || ((newestOnly || s.opts.Supersede) && s.gen[c] != gen) {
		return false
	}
	write()
	return true
}

func (s *Session) finish(c models.Category, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.inflight[c]; ok && s.gen[c] == gen {
		cancel()
		delete(s.inflight, c)
	}
}

func (s *Session) run(ctx context.Context, c models.Category, gen uint64) {
	defer s.wg.Done()
	defer s.finish(c, gen)

	start := time.Now()
	log := s.logger.With(slog.String("category", c.String()))

	url, err := s.fetcher.Fetch(ctx, c)
	switch {
	case err != nil && ctx.Err() != nil:
		log.Debug("image fetch canceled")
	case err != nil:
		log.Warn("image fetch failed", slog.String("error", err.Error()))
	case s.apply(c, gen, false, func() { s.store.SetURL(c, url) }):
		log.Debug("image fetched", slog.Duration("took", time.Since(start)))
	default:
		log.Debug("stale fetch discarded")
	}

	timer := time.NewTimer(time.Until(LoadingDeadline(start, s.opts.MinLoading)))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-s.ctx.Done():
		return
	}

	// The loading flag is shared by every fetch of c; only the newest may clear
	// it, so it never clears before that fetch's own minimum has passed.
	s.apply(c, gen, true, func() { s.store.SetLoading(c, false) })
}

// LoadingDeadline is the earliest moment a fetch begun at start may clear its
// loading flag. The flag clears at the later of this and the fetch completion.
func LoadingDeadline(start time.Time, minLoading time.Duration) time.Time {
	return start.Add(minLoading)
}

// Wait blocks until every fetch started so far has finished
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight fetches and waits for them to return.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.logger.Debug("session closed", slog.Duration("age", time.Since(s.CreatedAt)))
}

// Closed reports whether Close has been called
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
