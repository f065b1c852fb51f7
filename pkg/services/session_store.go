package services

import (
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/patrickmn/go-cache"
)

// SessionStore keeps live page sessions. A session that is not touched for the
// TTL expires, which closes it the same way an explicit page unload does.
type SessionStore struct {
	sessions *cache.Cache
	fetcher  ImageFetcher
	opts     SessionOptions
	logger   *slog.Logger
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(ttl time.Duration, fetcher ImageFetcher, opts SessionOptions, logger *slog.Logger) *SessionStore {
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}

	st := &SessionStore{
		sessions: cache.New(ttl, cleanup),
		fetcher:  fetcher,
		opts:     opts,
		logger:   logger,
	}
	st.sessions.OnEvicted(func(id string, v interface{}) {
		if session, ok := v.(*Session); ok {
			// Close waits for fetches; keep it off the cache's janitor goroutine.
			go session.Close()
		}
		st.logger.Info("session ended", slog.String("session_id", id))
	})
	return st
}

// NewSessionID generates a prefixed, URL-safe session identifier
func NewSessionID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return "gal-" + id, nil
}

// Create starts a new session and mounts it, kicking off the three initial fetches
func (st *SessionStore) Create() (*Session, error) {
	id, err := NewSessionID()
	if err != nil {
		return nil, err
	}

	session := NewSession(id, st.fetcher, st.opts, st.logger)
	st.sessions.Set(id, session, cache.DefaultExpiration)
	st.logger.Info("session started", slog.String("session_id", id), slog.Int("active", st.sessions.ItemCount()))

	session.Mount()
	return session, nil
}

// Get returns the session and extends its lifetime
func (st *SessionStore) Get(id string) (*Session, error) {
	v, found := st.sessions.Get(id)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	session := v.(*Session)
	st.sessions.Set(id, session, cache.DefaultExpiration)
	return session, nil
}

// Touch extends the lifetime of a live session without handing it out.
// An open page calls it periodically so the session outlives idle stretches.
func (st *SessionStore) Touch(id string) error {
	_, err := st.Get(id)
	return err
}

// Close ends a session
func (st *SessionStore) Close(id string) error {
	if _, found := st.sessions.Get(id); !found {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	st.sessions.Delete(id)
	return nil
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	return st.sessions.ItemCount()
}

// Shutdown closes every session and waits for their fetches to return
func (st *SessionStore) Shutdown() {
	items := st.sessions.Items()
	st.sessions.Flush()
	for _, item := range items {
		if session, ok := item.Object.(*Session); ok {
			session.Close()
		}
	}
}
