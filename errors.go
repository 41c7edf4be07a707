package sux

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sux/blobstore"
	"github.com/hupe1980/sux/persistence"
	"github.com/hupe1980/sux/ranksel"
)

var (
	// ErrNotFound is returned when no vector is stored under a name.
	ErrNotFound = errors.New("not found")

	// ErrInvalidName is returned for empty names or names that are not
	// slash-separated relative paths.
	ErrInvalidName = errors.New("invalid name")

	// ErrClosed is returned by operations on a closed Archive.
	ErrClosed = errors.New("archive closed")

	// ErrCorrupt is returned when a stored vector or catalog fails to decode.
	ErrCorrupt = errors.New("corrupt data")

	// ErrKindMismatch is returned when a stored vector cannot be loaded as
	// the requested type.
	ErrKindMismatch = errors.New("kind mismatch")
)

// EntryError annotates an error with the entry name it concerns.
//
// The original underlying error can be accessed via errors.Unwrap.
type EntryError struct {
	Op    string
	Name  string
	cause error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.cause)
}

func (e *EntryError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrClosed), errors.Is(err, ErrCorrupt), errors.Is(err, ErrKindMismatch):
		return err

	case errors.Is(err, blobstore.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)

	case errors.Is(err, blobstore.ErrInvalidName):
		return fmt.Errorf("%w: %w", ErrInvalidName, err)

	case errors.Is(err, persistence.ErrInvalidMagic),
		errors.Is(err, persistence.ErrInvalidVersion),
		errors.Is(err, persistence.ErrInvalidHeader),
		errors.Is(err, persistence.ErrTruncated),
		persistence.IsChecksumMismatch(err):
		return fmt.Errorf("%w: %w", ErrCorrupt, err)

	case errors.Is(err, ranksel.ErrBitWidth):
		return fmt.Errorf("%w: %w", ErrKindMismatch, err)
	}

	return err
}

func wrapEntry(op, name string, err error) error {
	if err == nil {
		return nil
	}
	return &EntryError{Op: op, Name: name, cause: translateError(err)}
}
