package services

import (
	"errors"
	"fmt"

	"fauna-gallery/pkg/models"
)

// Sentinel errors for gallery operations.
var (
	// ErrFetchFailed matches every failure to obtain an image URL
	ErrFetchFailed = errors.New("image fetch failed")

	ErrBadStatus         = errors.New("unexpected status code")
	ErrMalformedResponse = errors.New("malformed response")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionClosed     = errors.New("session closed")
)

// FetchError wraps a fetch failure with the category and step that failed.
type FetchError struct {
	Category models.Category
	Op       string // "request", "status", "decode", "limit"
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s [%s]: %v", e.Category, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes every FetchError match ErrFetchFailed.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

func wrapFetchError(c models.Category, op string, err error) error {
	return &FetchError{Category: c, Op: op, Err: err}
}
