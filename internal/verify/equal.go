package verify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/streamcheck/streamcheck/internal/change"
)

// Snapshot and stream equality checkers. All four are total and
// side-effect-free; a nil return means equal, otherwise the error
// describes the difference. Structured values are canonicalized before
// any multiset comparison since direct equality is insufficient for them.

// EqualSnapshots reports whether two snapshots contain the same keys,
// each mapped to an identical row. Order-insensitive.
func EqualSnapshots(a, b change.Snapshot) error {
	for key, row := range a {
		other, ok := b[key]
		if !ok {
			return fmt.Errorf("snapshots differ: key %s present only on left (row %s)", key, change.CanonicalRow(row))
		}
		if !change.RowsEqual(row, other) {
			return fmt.Errorf("snapshots differ at key %s: left row %s, right row %s",
				key, change.CanonicalRow(row), change.CanonicalRow(other))
		}
	}
	for key, row := range b {
		if _, ok := a[key]; !ok {
			return fmt.Errorf("snapshots differ: key %s present only on right (row %s)", key, change.CanonicalRow(row))
		}
	}
	return nil
}

// EqualSnapshotsIgnoringIndex compares the multiset of rows in two
// snapshots, ignoring which key produced each row. Needed when two
// independently built tables hold logically identical data under
// different key derivations.
func EqualSnapshotsIgnoringIndex(a, b change.Snapshot) error {
	left := make(map[string]int, len(a))
	for _, row := range a {
		left[change.CanonicalRow(row)]++
	}
	right := make(map[string]int, len(b))
	for _, row := range b {
		right[change.CanonicalRow(row)]++
	}
	return equalMultisets("snapshot rows", left, right)
}

// EqualStreams compares the multiset of full (key, row, time, diff)
// tuples between two captured streams.
func EqualStreams(a, b change.Stream) error {
	return equalMultisets("stream changes", streamMultiset(a, true), streamMultiset(b, true))
}

// EqualStreamsIgnoringIndex compares captured streams as multisets of
// (row, time, diff) tuples, dropping the key.
func EqualStreamsIgnoringIndex(a, b change.Stream) error {
	return equalMultisets("stream changes", streamMultiset(a, false), streamMultiset(b, false))
}

func streamMultiset(s change.Stream, withKey bool) map[string]int {
	counts := make(map[string]int, len(s))
	for _, c := range s {
		var b strings.Builder
		if withKey {
			fmt.Fprintf(&b, "key=%s ", c.Key)
		}
		fmt.Fprintf(&b, "row=%s time=%d diff=%d", change.CanonicalRow(c.Row), c.Time, c.Diff)
		counts[b.String()]++
	}
	return counts
}

// equalMultisets compares two count maps and reports the first few
// differing elements in stable order.
func equalMultisets(what string, left, right map[string]int) error {
	var diffs []string
	for elem, n := range left {
		if m := right[elem]; m != n {
			diffs = append(diffs, fmt.Sprintf("%s: left count %d, right count %d", elem, n, m))
		}
	}
	for elem, m := range right {
		if _, ok := left[elem]; !ok {
			diffs = append(diffs, fmt.Sprintf("%s: left count 0, right count %d", elem, m))
		}
	}
	if len(diffs) == 0 {
		return nil
	}

	sort.Strings(diffs)
	const maxShown = 5
	if len(diffs) > maxShown {
		diffs = append(diffs[:maxShown], fmt.Sprintf("... and %d more", len(diffs)-maxShown))
	}
	return fmt.Errorf("%s differ:\n  %s", what, strings.Join(diffs, "\n  "))
}
