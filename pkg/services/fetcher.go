package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"fauna-gallery/pkg/models"
)

// ImageFetcher produces a display URL for a category
type ImageFetcher interface {
	Fetch(ctx context.Context, c models.Category) (string, error)
}

// Endpoints holds the upstream address for each category
type Endpoints struct {
	CatAPIURL    string
	DogAPIURL    string
	FishImageURL string
}

// catSearchResult is one element of the cat API's search response
type catSearchResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// dogRandomResult is the dog API's random image response
type dogRandomResult struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Fetcher talks to the public image APIs
type Fetcher struct {
	endpoints  Endpoints
	httpClient *http.Client
	limiters   map[models.Category]*rate.Limiter
	logger     *slog.Logger
}

// NewFetcher creates a new Fetcher.
// Each networked category is limited to 5 requests a second with a burst of 5.
func NewFetcher(endpoints Endpoints, timeout time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiters: map[models.Category]*rate.Limiter{
			models.Cat: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
			models.Dog: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		},
		logger: logger,
	}
}

// Source returns the address an image for c is read from
func (f *Fetcher) Source(c models.Category) string {
	switch c {
	case models.Cat:
		return f.endpoints.CatAPIURL
	case models.Dog:
		return f.endpoints.DogAPIURL
	case models.Fish:
		return f.endpoints.FishImageURL
	}
	return ""
}

// Fetch returns an image URL for c. Fish never touches the network.
func (f *Fetcher) Fetch(ctx context.Context, c models.Category) (string, error) {
	switch c {
	case models.Cat:
		return f.fetchCat(ctx)
	case models.Dog:
		return f.fetchDog(ctx)
	case models.Fish:
		return f.endpoints.FishImageURL, nil
	}
	return "", wrapFetchError(c, "request", models.ErrUnknownCategory)
}

func (f *Fetcher) fetchCat(ctx context.Context) (string, error) {
	var results []catSearchResult
	if err := f.getJSON(ctx, models.Cat, f.endpoints.CatAPIURL, &results); err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", wrapFetchError(models.Cat, "decode", fmt.Errorf("%w: empty result list", ErrMalformedResponse))
	}
	if results[0].URL == "" {
		return "", wrapFetchError(models.Cat, "decode", fmt.Errorf("%w: missing url", ErrMalformedResponse))
	}
	return results[0].URL, nil
}

func (f *Fetcher) fetchDog(ctx context.Context) (string, error) {
	var result dogRandomResult
	if err := f.getJSON(ctx, models.Dog, f.endpoints.DogAPIURL, &result); err != nil {
		return "", err
	}
	if result.Message == "" {
		return "", wrapFetchError(models.Dog, "decode", fmt.Errorf("%w: missing message", ErrMalformedResponse))
	}
	return result.Message, nil
}

// getJSON issues a GET for c and decodes the body into out
func (f *Fetcher) getJSON(ctx context.Context, c models.Category, endpoint string, out any) error {
	if limiter, ok := f.limiters[c]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return wrapFetchError(c, "limit", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return wrapFetchError(c, "request", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return wrapFetchError(c, "request", err)
	}
	defer resp.Body.Close()

	f.logger.Debug("upstream responded",
		slog.String("category", c.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return wrapFetchError(c, "status", fmt.Errorf("%w %d: %s", ErrBadStatus, resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wrapFetchError(c, "decode", fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	return nil
}
