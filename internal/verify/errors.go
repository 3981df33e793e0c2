package verify

import (
	"errors"
	"fmt"

	"github.com/streamcheck/streamcheck/internal/change"
)

// StreamErrorCode categorizes live-stream verification failures.
type StreamErrorCode string

const (
	// ErrCodeUnexpectedEntry indicates an observed change whose key has no
	// remaining expected entries.
	ErrCodeUnexpectedEntry StreamErrorCode = "UNEXPECTED_ENTRY"

	// ErrCodeEntryMismatch indicates the front expected entry does not
	// match the observed change under the strict-order policy.
	ErrCodeEntryMismatch StreamErrorCode = "ENTRY_MISMATCH"

	// ErrCodeExpectedExhausted indicates the subsequence policy skipped
	// the entire remaining queue for a key without finding a match.
	ErrCodeExpectedExhausted StreamErrorCode = "EXPECTED_EXHAUSTED"

	// ErrCodeIncompleteConsumption indicates end-of-stream with expected
	// entries still unconsumed.
	ErrCodeIncompleteConsumption StreamErrorCode = "INCOMPLETE_CONSUMPTION"
)

// StreamError is a fatal verification failure. It carries the offending
// observed change (when there is one) and a dump of the remaining
// expected state at the moment of failure.
type StreamError struct {
	Code StreamErrorCode

	// Offending observed change. Unset for end-of-stream failures.
	Key        change.Key
	Row        change.Row
	Time       int64
	IsAddition bool

	// Remaining is a formatted dump of the unconsumed expected state.
	Remaining string
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Code == ErrCodeIncompleteConsumption {
		return fmt.Sprintf("%s: non-empty final expected state:\n%s", e.Code, e.Remaining)
	}
	return fmt.Sprintf("%s: key=%s row=%s time=%d is_addition=%v\nremaining expected state:\n%s",
		e.Code, e.Key, change.CanonicalRow(e.Row), e.Time, e.IsAddition, e.Remaining)
}

func isStreamErrorCode(err error, code StreamErrorCode) bool {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsUnexpectedEntry reports whether err is an unexpected-entry failure.
// Uses errors.As to handle wrapped errors.
func IsUnexpectedEntry(err error) bool {
	return isStreamErrorCode(err, ErrCodeUnexpectedEntry)
}

// IsEntryMismatch reports whether err is a strict-order mismatch failure.
func IsEntryMismatch(err error) bool {
	return isStreamErrorCode(err, ErrCodeEntryMismatch)
}

// IsExpectedExhausted reports whether err is a subsequence-policy
// exhausted-without-match failure.
func IsExpectedExhausted(err error) bool {
	return isStreamErrorCode(err, ErrCodeExpectedExhausted)
}

// IsIncompleteConsumption reports whether err is an end-of-stream failure
// with unconsumed expected entries.
func IsIncompleteConsumption(err error) bool {
	return isStreamErrorCode(err, ErrCodeIncompleteConsumption)
}
