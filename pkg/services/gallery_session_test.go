package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fauna-gallery/pkg/logger"
	"fauna-gallery/pkg/models"
)

// fakeFetcher answers from a per-category function and records calls
type fakeFetcher struct {
	mu    sync.Mutex
	calls map[models.Category]int
	fn    func(ctx context.Context, c models.Category, call int) (string, error)
}

func newFakeFetcher(fn func(ctx context.Context, c models.Category, call int) (string, error)) *fakeFetcher {
	return &fakeFetcher{calls: make(map[models.Category]int), fn: fn}
}

func (f *fakeFetcher) Fetch(ctx context.Context, c models.Category) (string, error) {
	f.mu.Lock()
	f.calls[c]++
	call := f.calls[c]
	f.mu.Unlock()
	return f.fn(ctx, c, call)
}

func (f *fakeFetcher) Calls(c models.Category) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[c]
}

func staticFetcher(urls map[models.Category]string) *fakeFetcher {
	return newFakeFetcher(func(_ context.Context, c models.Category, _ int) (string, error) {
		return urls[c], nil
	})
}

func TestSession_InitialState(t *testing.T) {
	s := NewSession("gal-test", staticFetcher(nil), SessionOptions{MinLoading: time.Millisecond}, logger.Discard())
	defer s.Close()

	snap := s.Store().Snapshot()
	for _, c := range models.Categories {
		assert.True(t, snap.Loading[c], "%s should start loading", c)
		assert.Empty(t, snap.Images[c], "%s should start without an image", c)
	}
	assert.Nil(t, snap.Hover)
}

func TestSession_MountLoadsEveryCategory(t *testing.T) {
	fetcher := staticFetcher(map[models.Category]string{
		models.Cat:  "X",
		models.Dog:  "Y",
		models.Fish: testFishURL,
	})
	s := NewSession("gal-test", fetcher, SessionOptions{MinLoading: 20 * time.Millisecond}, logger.Discard())
	defer s.Close()

	s.Mount()
	s.Wait()

	snap := s.Store().Snapshot()
	assert.Equal(t, "X", snap.Images[models.Cat])
	assert.Equal(t, "Y", snap.Images[models.Dog])
	assert.Equal(t, testFishURL, snap.Images[models.Fish])
	for _, c := range models.Categories {
		assert.False(t, snap.Loading[c])
		assert.Equal(t, 1, fetcher.Calls(c))
	}
}

func TestSession_LoadingHonoursMinimumDuration(t *testing.T) {
	const minLoading = 80 * time.Millisecond
	s := NewSession("gal-test", staticFetcher(map[models.Category]string{models.Fish: testFishURL}),
		SessionOptions{MinLoading: minLoading}, logger.Discard())
	defer s.Close()

	var (
		mu        sync.Mutex
		clearedAt time.Time
	)
	s.Store().Subscribe(func(change models.Change) {
		if change.Kind == models.ChangeLoading && change.Category == models.Fish && !s.Store().Loading(models.Fish) {
			mu.Lock()
			clearedAt = time.Now()
			mu.Unlock()
		}
	})

	start := time.Now()
	require.NoError(t, s.Refetch(models.Fish))

	// Response is instant, but the flag must hold.
	time.Sleep(minLoading / 4)
	assert.True(t, s.Store().Loading(models.Fish))
	assert.Equal(t, testFishURL, s.Store().URL(models.Fish))

	s.Wait()
	mu.Lock()
	defer mu.Unlock()
	require.False(t, clearedAt.IsZero())
	assert.GreaterOrEqual(t, clearedAt.Sub(start), minLoading)
}

func TestSession_SlowFetchClearsOnCompletion(t *testing.T) {
	release := make(chan struct{})
	fetcher := newFakeFetcher(func(_ context.Context, c models.Category, _ int) (string, error) {
		<-release
		return "slow", nil
	})
	s := NewSession("gal-test", fetcher, SessionOptions{MinLoading: 10 * time.Millisecond}, logger.Discard())
	defer s.Close()

	require.NoError(t, s.Refetch(models.Dog))
	time.Sleep(30 * time.Millisecond)
	assert.True(t, s.Store().Loading(models.Dog), "still waiting on the response")

	close(release)
	s.Wait()
	assert.False(t, s.Store().Loading(models.Dog))
	assert.Equal(t, "slow", s.Store().URL(models.Dog))
}

func TestSession_FailureKeepsPreviousURL(t *testing.T) {
	fetcher := newFakeFetcher(func(_ context.Context, c models.Category, call int) (string, error) {
		if call == 1 {
			return "first", nil
		}
		return "", &FetchError{Category: c, Op: "status", Err: ErrBadStatus}
	})
	s := NewSession("gal-test", fetcher, SessionOptions{MinLoading: 5 * time.Millisecond}, logger.Discard())
	defer s.Close()

	require.NoError(t, s.Refetch(models.Cat))
	s.Wait()
	require.Equal(t, "first", s.Store().URL(models.Cat))

	require.NoError(t, s.Refetch(models.Cat))
	s.Wait()

	assert.Equal(t, "first", s.Store().URL(models.Cat))
	assert.False(t, s.Store().Loading(models.Cat))
}

func TestSession_FailureOnFirstLoadLeavesEmptyURL(t *testing.T) {
	fetcher := newFakeFetcher(func(_ context.Context, c models.Category, _ int) (string, error) {
		return "", errors.New("boom")
	})
	s := NewSession("gal-test", fetcher, SessionOptions{MinLoading: 5 * time.Millisecond}, logger.Discard())
	defer s.Close()

	require.NoError(t, s.Refetch(models.Cat))
	s.Wait()

	assert.Empty(t, s.Store().URL(models.Cat))
	assert.False(t, s.Store().Loading(models.Cat))
}

func TestSession_RefetchTouchesOnlyOneCategory(t *testing.T) {
	release := make(chan struct{})
	fetcher := newFakeFetcher(func(_ context.Context, c models.Category, call int) (string, error) {
		if call > 1 {
			<-release
		}
		return c.String() + "-image", nil
	})
	s := NewSession("gal-test", fetcher, SessionOptions{MinLoading: 5 * time.Millisecond}, logger.Discard())
	defer s.Close()

	s.Mount()
	s.Wait()
	before := s.Store().Snapshot()

	require.NoError(t, s.Refetch(models.Dog))
	after := s.Store().Snapshot()

	assert.True(t, after.Loading[models.Dog])
	for _, c := range []models.Category{models.Cat, models.Fish} {
		assert.Equal(t, before.Loading[c], after.Loading[c])
		assert.Equal(t, before.Images[c], after.Images[c])
	}

	close(release)
	s.Wait()
}

// overlappingFetcher blocks the first call for a category until release closes and
// answers "stale"; later calls answer "fresh" at once.
func overlappingFetcher(release <-chan struct{}) *fakeFetcher {
	return newFakeFetcher(func(_ context.Context, c models.Category, call int) (string, error) {
		if call == 1 {
			<-release
			return "stale", nil
		}
		return "fresh", nil
	})
}

func TestSession_LastCompletionWins(t *testing.T) {
	release := make(chan struct{})
	fetcher := overlappingFetcher(release)
	s := NewSession("gal-test", fetcher, SessionOptions{MinLoading: time.Millisecond}, logger.Discard())
	defer s.Close()

	require.NoError(t, s.Refetch(models.Cat))
	require.Eventually(t, func() bool { return fetcher.Calls(models.Cat) == 1 }, time.Second, time.Millisecond)
	require.NoError(t, s.Refetch(models.Cat))

	require.Eventually(t, func() bool { return s.Store().URL(models.Cat) == "fresh" }, time.Second, time.Millisecond)
	close(release)
	s.Wait()

	assert.Equal(t, "stale", s.Store().URL(models.Cat))
	assert.False(t, s.Store().Loading(models.Cat))
}

func TestSession_OverlappingFetchHonoursNewestMinimum(t *testing.T) {
	const minLoading = 200 * time.Millisecond
	s := NewSession("gal-test", staticFetcher(map[models.Category]string{models.Cat: "https://img.test/cat.jpg"}),
		SessionOptions{MinLoading: minLoading}, logger.Discard())
	defer s.Close()

	var (
		mu        sync.Mutex
		clearedAt time.Time
	)
	s.Store().Subscribe(func(change models.Change) {
		if change.Kind == models.ChangeLoading && change.Category == models.Cat && !s.Store().Loading(models.Cat) {
			mu.Lock()
			if clearedAt.IsZero() {
				clearedAt = time.Now()
			}
			mu.Unlock()
		}
	})

	require.NoError(t, s.Refetch(models.Cat))
	time.Sleep(150 * time.Millisecond)
	second := time.Now()
	require.NoError(t, s.Refetch(models.Cat))
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.False(t, clearedAt.IsZero())
	assert.GreaterOrEqual(t, clearedAt.Sub(second), minLoading)
	assert.False(t, s.Store().Loading(models.Cat))
}

func TestSession_SupersedeDropsStaleResult(t *testing.T) {
	release := make(chan struct{})
	fetcher := overlappingFetcher(release)
	s := NewSession("gal-test", fetcher, SessionOptions{MinLoading: time.Millisecond, Supersede: true}, logger.Discard())
	defer s.Close()

	require.NoError(t, s.Refetch(models.Cat))
	require.Eventually(t, func() bool { return fetcher.Calls(models.Cat) == 1 }, time.Second, time.Millisecond)
	require.NoError(t, s.Refetch(models.Cat))

	require.Eventually(t, func() bool { return s.Store().URL(models.Cat) == "fresh" }, time.Second, time.Millisecond)
	close(release)
	s.Wait()

	assert.Equal(t, "fresh", s.Store().URL(models.Cat))
	assert.False(t, s.Store().Loading(models.Cat))
}

func TestSession_SupersedeCancelsPriorFetch(t *testing.T) {
	canceled := make(chan struct{})
	fetcher := newFakeFetcher(func(ctx context.Context, c models.Category, call int) (string, error) {
		if call == 1 {
			<-ctx.Done()
			close(canceled)
			return "", ctx.Err()
		}
		return "fresh", nil
	})
	s := NewSession("gal-test", fetcher, SessionOptions{MinLoading: time.Millisecond, Supersede: true}, logger.Discard())
	defer s.Close()

	require.NoError(t, s.Refetch(models.Dog))
	require.Eventually(t, func() bool { return fetcher.Calls(models.Dog) == 1 }, time.Second, time.Millisecond)
	require.NoError(t, s.Refetch(models.Dog))

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("first fetch was not canceled")
	}
	s.Wait()
	assert.Equal(t, "fresh", s.Store().URL(models.Dog))
}

func TestSession_RefetchValidation(t *testing.T) {
	s := NewSession("gal-test", staticFetcher(nil), SessionOptions{MinLoading: time.Millisecond}, logger.Discard())

	assert.ErrorIs(t, s.Refetch(models.Category("bird")), models.ErrUnknownCategory)

	s.Close()
	assert.True(t, s.Closed())
	assert.ErrorIs(t, s.Refetch(models.Cat), ErrSessionClosed)
}

func TestSession_CloseCancelsInflight(t *testing.T) {
	fetcher := newFakeFetcher(func(ctx context.Context, c models.Category, _ int) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	s := NewSession("gal-test", fetcher, SessionOptions{MinLoading: time.Hour}, logger.Discard())

	s.Mount()

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
}

func TestLoadingDeadline(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, start.Add(800*time.Millisecond), LoadingDeadline(start, 800*time.Millisecond))
}

func TestSession_NoWritesAfterClose(t *testing.T) {
	release := make(chan struct{})
	fetcher := newFakeFetcher(func(_ context.Context, c models.Category, _ int) (string, error) {
		<-release
		return "late-" + c.String(), nil
	})
	s := NewSession("gal-test", fetcher, SessionOptions{MinLoading: time.Millisecond}, logger.Discard())
	s.Mount()

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	require.Eventually(t, s.Closed, time.Second, time.Millisecond)
	close(release)
	<-done

	for _, c := range models.Categories {
		assert.Empty(t, s.Store().URL(c))
		assert.True(t, s.Store().Loading(c))
	}
}
