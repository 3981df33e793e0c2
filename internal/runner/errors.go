package runner

import (
	"errors"
	"fmt"
	"time"
)

// ErrResourceConflict marks a failure to claim an external resource that
// another runner already holds (typically a listening port). Callers can
// assert on this specific conflict with errors.Is rather than matching a
// generic failure.
var ErrResourceConflict = errors.New("resource already bound by another runner")

// TimeoutError is returned when the checker never reported success
// within the configured deadline. Diagnostic carries the checker's
// failure hook output.
type TimeoutError struct {
	Elapsed    time.Duration
	Diagnostic string
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("checker did not succeed within %s: %s", e.Elapsed.Round(time.Millisecond), e.Diagnostic)
}

// IsTimeout reports whether err is a checker timeout.
// Uses errors.As to handle wrapped errors.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
