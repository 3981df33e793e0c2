package verify

import (
	"fmt"

	"github.com/streamcheck/streamcheck/internal/change"
)

// TimeCounter is a subscription callback counting the distinct logical
// commit times observed on a stream. With an expected count set, OnEnd
// fails unless exactly that many distinct times were seen.
type TimeCounter struct {
	expected int // negative means "count only"
	times    map[int64]struct{}
}

// NewTimeCounter builds a counter verifying the given expected number of
// distinct times at end-of-stream. Pass a negative value to only count.
func NewTimeCounter(expected int) *TimeCounter {
	return &TimeCounter{
		expected: expected,
		times:    make(map[int64]struct{}),
	}
}

// OnChange records the change's commit time.
func (c *TimeCounter) OnChange(_ change.Key, _ change.Row, time int64, _ bool) error {
	c.times[time] = struct{}{}
	return nil
}

// OnEnd verifies the distinct-time count when an expectation was set.
func (c *TimeCounter) OnEnd() error {
	if c.expected >= 0 && len(c.times) != c.expected {
		return fmt.Errorf("distinct commit times: got %d, want %d", len(c.times), c.expected)
	}
	return nil
}

// Distinct returns the number of distinct commit times seen so far.
func (c *TimeCounter) Distinct() int {
	return len(c.times)
}
