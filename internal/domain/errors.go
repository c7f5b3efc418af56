package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTitleNotFound signals a title that is not in the catalog.
	ErrTitleNotFound = errors.New("movie not found")
	// ErrInvalidCount signals a non-positive recommendation count.
	ErrInvalidCount = errors.New("invalid recommendation count")
	// ErrDatasetMismatch signals a catalog/similarity size mismatch at load time.
	ErrDatasetMismatch = errors.New("catalog and similarity matrix sizes do not match")
	// ErrBlobMissing signals a missing data blob at startup.
	ErrBlobMissing = errors.New("data blob missing")
	// ErrEnrichmentUnavailable signals a metadata provider failure.
	ErrEnrichmentUnavailable = errors.New("metadata provider unavailable")
)

// TitleNotFoundError wraps ErrTitleNotFound with the unresolved title.
type TitleNotFoundError struct {
	Title string
}

func (e *TitleNotFoundError) Error() string {
	return fmt.Sprintf("movie %q not found", e.Title)
}

func (e *TitleNotFoundError) Unwrap() error { return ErrTitleNotFound }

// NewTitleNotFound creates a not-found error carrying the unresolved title.
func NewTitleNotFound(title string) error {
	return &TitleNotFoundError{Title: title}
}
