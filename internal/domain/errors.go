package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("object not found")
	ErrInvalidKey        = errors.New("object key is empty or invalid")
	ErrChunkTooSmall     = errors.New("chunk size below backend minimum part size")
	ErrTooManyParts      = errors.New("file requires more parts than the backend allows")
	ErrSessionNotFound   = errors.New("upload session not found or expired")
	ErrSessionTerminated = errors.New("upload session already completed or aborted")
	ErrPartOutOfRange    = errors.New("part number outside the planned range")
	ErrDuplicatePart     = errors.New("duplicate part number in completion set")
	ErrPartSetIncomplete = errors.New("completion set does not cover every planned part")
)

// BackendError wraps a rejection from the object store, preserving the
// original message for the error response details field.
type BackendError struct {
	Op  string
	Key string
	Err error
}

func (e *BackendError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage.%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage.%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError creates a BackendError for the given storage operation.
func NewBackendError(op, key string, err error) *BackendError {
	return &BackendError{Op: op, Key: key, Err: err}
}
