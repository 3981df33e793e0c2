package checkers

import (
	"context"
	"fmt"

	"github.com/streamcheck/streamcheck/internal/capture"
	"github.com/streamcheck/streamcheck/internal/change"
)

// CaptureCountChecker passes once a capture-store run has recorded
// exactly the expected number of changes.
type CaptureCountChecker struct {
	store *capture.Store
	runID string
	want  int
}

// CaptureCount builds a checker polling the change count of a run.
func CaptureCount(store *capture.Store, runID string, n int) *CaptureCountChecker {
	return &CaptureCountChecker{store: store, runID: runID, want: n}
}

// Check implements runner.Checker.
func (c *CaptureCountChecker) Check() bool {
	n, err := c.store.CountChanges(context.Background(), c.runID)
	if err != nil {
		return false
	}
	return n == c.want
}

// FailureDetails implements runner.Checker.
func (c *CaptureCountChecker) FailureDetails() string {
	ctx := context.Background()
	n, err := c.store.CountChanges(ctx, c.runID)
	if err != nil {
		return fmt.Sprintf("capture store unreadable for run %s: %v", c.runID, err)
	}
	stream, err := c.store.ReadStream(ctx, c.runID)
	if err != nil {
		return fmt.Sprintf("run %s: %d changes recorded (want %d), stream unreadable: %v", c.runID, n, c.want, err)
	}
	dump, err := change.MarshalStream(stream)
	if err != nil {
		return fmt.Sprintf("run %s: %d changes recorded (want %d)", c.runID, n, c.want)
	}
	return fmt.Sprintf("run %s: %d changes recorded (want %d):\n%s", c.runID, n, c.want, dump)
}
