package change

// Change is one observed row change as delivered by the engine.
// Time is the engine's logical commit time: non-decreasing within a
// subscription, interleavable across keys. Diff is +1 for an insertion
// and -1 for a removal.
type Change struct {
	Key  Key
	Row  Row
	Time int64
	Diff int
}

// Stream is the ordered sequence of raw changes captured from a
// subscription.
type Stream []Change

// Snapshot is the fully folded current state: key to currently-present
// row. No key maps to a removed row.
type Snapshot map[Key]Row

// Squash folds a captured stream into its final snapshot. Insertions set
// or overwrite the key's row; removals delete the key. A removal for an
// absent key is a no-op: a well-formed stream does not produce one, but an
// engine replay may.
func Squash(s Stream) Snapshot {
	snapshot := make(Snapshot)
	ApplyTo(snapshot, s)
	return snapshot
}

// ApplyTo folds a stream over an existing snapshot in stream order.
// Squash(whole) is equivalent to ApplyTo(Squash(first half), second half).
func ApplyTo(snapshot Snapshot, s Stream) {
	for _, c := range s {
		if c.Diff > 0 {
			snapshot[c.Key] = c.Row
		} else {
			delete(snapshot, c.Key)
		}
	}
}
