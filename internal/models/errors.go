package models

import (
	"errors"
	"fmt"
)

// ErrInvalidOperation rejects an action that can never succeed from the
// current state, before any network call is made.
var ErrInvalidOperation = errors.New("invalid operation")

// ErrAlreadyInProgress rejects a duplicate action while one is still in
// flight for the same subject. The duplicate is not queued.
var ErrAlreadyInProgress = errors.New("action already in progress")

// NetworkError wraps a transient backend failure. The optimistic state has
// already been rolled back when the caller sees one; retry is a user-initiated
// re-invocation.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
