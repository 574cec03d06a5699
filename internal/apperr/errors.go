package apperr

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// ValidationError reports a caller-supplied value that failed validation.
// It unwraps to ErrInvalidInput so callers can branch on the sentinel.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NotFoundError reports a missing owner or target entity by type and id.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return e.Entity + " does not exist"
	}
	return fmt.Sprintf("%s %d does not exist", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PersistenceError wraps an underlying store failure. The cause is kept for
// server-side logging; Error returns a generic message so storage internals
// never leak to the client.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "storage operation failed: " + e.Op
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err unless it is already a typed application error.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var nf *NotFoundError
	if errors.As(err, &ve) || errors.As(err, &nf) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
