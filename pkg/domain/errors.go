package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionInactive is returned when a turn arrives for a deactivated session.
var ErrSessionInactive = errors.New("session is inactive")

// ErrNotFound is returned by fleet lookups for missing entities.
var ErrNotFound = errors.New("not found")

// ErrOperationNotFound is returned when a classified operation name is not
// in the registry. With the registry resolved at construction time this is
// a classifier bug, not a user error.
var ErrOperationNotFound = errors.New("operation not found")

// ErrConfirmationRequired is the executor's defensive rejection of a
// high-risk operation without a recorded confirmed decision.
var ErrConfirmationRequired = errors.New("operation requires user confirmation")

// ErrInvalidParams wraps parameter validation failures; always terminal.
var ErrInvalidParams = errors.New("invalid parameters")

// transientError marks failures worth retrying (I/O blips, lock contention).
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so that IsRetryable reports true for it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsRetryable reports whether an operation failure may be retried. Context
// cancellation, missing entities, validation failures and confirmation
// violations are terminal; only explicitly transient failures are retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te *transientError
	return errors.As(err, &te)
}

// StageError wraps a failure with the pipeline stage that produced it.
func StageError(stage Stage, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}
