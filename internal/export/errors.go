package export

import (
	"errors"
	"fmt"
)

// TransientError marks a delivery failure worth retrying: network
// errors, timeouts, 5xx responses and 429 throttling.
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transient delivery failure (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("transient delivery failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a delivery failure that retrying cannot fix:
// 4xx responses other than 429, or a payload the sink cannot accept.
// The affected batch is dropped and the run continues.
type PermanentError struct {
	Status int
	Err    error
}

func (e *PermanentError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("permanent delivery failure (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("permanent delivery failure: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// IsTransient reports whether err should be retried. Unclassified
// errors are treated as transient so an unknown sink failure mode does
// not silently lose a batch without exhausting its retry budget.
func IsTransient(err error) bool {
	var perm *PermanentError
	return !errors.As(err, &perm)
}
