// Package testutil provides deterministic helpers for building observed
// change streams in tests.
package testutil

import (
	"sync"

	"github.com/streamcheck/streamcheck/internal/change"
)

// LogicalClock issues monotonically increasing commit times, standing in
// for the engine's logical time assignment.
//
// Thread-safety: all methods are safe for concurrent use via an internal
// mutex, since changes for different subscriptions are not serialized
// relative to each other.
type LogicalClock struct {
	mu   sync.Mutex
	time int64
}

// NewLogicalClock creates a clock starting at 0; the first Tick returns 1.
func NewLogicalClock() *LogicalClock {
	return &LogicalClock{}
}

// Tick advances and returns the next commit time.
func (c *LogicalClock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.time++
	return c.time
}

// Current returns the current commit time without advancing.
func (c *LogicalClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.time
}

// Reset rewinds the clock to 0 for test reuse.
func (c *LogicalClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.time = 0
}

// StreamBuilder accumulates a captured stream with clock-assigned commit
// times.
type StreamBuilder struct {
	clock  *LogicalClock
	stream change.Stream
}

// NewStreamBuilder creates a builder with its own logical clock.
func NewStreamBuilder() *StreamBuilder {
	return &StreamBuilder{clock: NewLogicalClock()}
}

// Insert appends an insertion at the next commit time.
func (b *StreamBuilder) Insert(key change.Key, row change.Row) *StreamBuilder {
	return b.InsertAt(key, row, b.clock.Tick())
}

// Remove appends a removal at the next commit time.
func (b *StreamBuilder) Remove(key change.Key, row change.Row) *StreamBuilder {
	return b.RemoveAt(key, row, b.clock.Tick())
}

// InsertAt appends an insertion at an explicit commit time.
func (b *StreamBuilder) InsertAt(key change.Key, row change.Row, time int64) *StreamBuilder {
	b.stream = append(b.stream, change.Change{Key: key, Row: row, Time: time, Diff: +1})
	return b
}

// RemoveAt appends a removal at an explicit commit time.
func (b *StreamBuilder) RemoveAt(key change.Key, row change.Row, time int64) *StreamBuilder {
	b.stream = append(b.stream, change.Change{Key: key, Row: row, Time: time, Diff: -1})
	return b
}

// Update appends a remove/insert pair sharing one commit time, modeling
// an engine row update.
func (b *StreamBuilder) Update(key change.Key, oldRow, newRow change.Row) *StreamBuilder {
	t := b.clock.Tick()
	return b.RemoveAt(key, oldRow, t).InsertAt(key, newRow, t)
}

// Stream returns the accumulated stream.
func (b *StreamBuilder) Stream() change.Stream {
	return b.stream
}
