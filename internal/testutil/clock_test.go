package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamcheck/streamcheck/internal/change"
)

func TestLogicalClock_Monotonic(t *testing.T) {
	clock := NewLogicalClock()

	assert.Equal(t, int64(1), clock.Tick())
	assert.Equal(t, int64(2), clock.Tick())
	assert.Equal(t, int64(2), clock.Current())

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Tick())
}

func TestLogicalClock_ConcurrentTicksUnique(t *testing.T) {
	clock := NewLogicalClock()

	const n = 100
	var wg sync.WaitGroup
	times := make([]int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			times[i] = clock.Tick()
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, ts := range times {
		assert.False(t, seen[ts], "duplicate time %d", ts)
		seen[ts] = true
	}
	assert.Equal(t, int64(n), clock.Current())
}

func TestStreamBuilder(t *testing.T) {
	key := change.KeyOf(change.Int(1))
	v1 := change.Row{"v": change.Int(1)}
	v2 := change.Row{"v": change.Int(2)}

	stream := NewStreamBuilder().
		Insert(key, v1).
		Update(key, v1, v2).
		Stream()

	require.Len(t, stream, 3)
	assert.Equal(t, +1, stream[0].Diff)
	assert.Equal(t, -1, stream[1].Diff)
	assert.Equal(t, +1, stream[2].Diff)
	// The update pair shares one commit time, after the insert's.
	assert.Greater(t, stream[1].Time, stream[0].Time)
	assert.Equal(t, stream[1].Time, stream[2].Time)

	snapshot := change.Squash(stream)
	require.Len(t, snapshot, 1)
	assert.True(t, change.RowsEqual(v2, snapshot[key]))
}
