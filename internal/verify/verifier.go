package verify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/streamcheck/streamcheck/internal/change"
)

// Policy selects how observed changes are matched against the expected
// per-key sequences.
type Policy string

const (
	// StrictOrder requires every observed change to match the front of
	// its key's expected queue exactly, in order.
	StrictOrder Policy = "strict"

	// SubsequenceSkip tolerates expected entries the engine legitimately
	// skipped (fast superseding updates): non-matching fronts are
	// discarded until a match is found. Relative order within a key is
	// still enforced, and end-of-stream still requires every queue to be
	// fully consumed, so the final entry per key must be observed.
	SubsequenceSkip Policy = "subsequence"
)

// Verifier is a streaming callback state machine checking a live change
// feed against an expected per-key sequence of entries.
//
// Construction sorts the expected entries by their total order and groups
// them into per-key FIFO queues; delivery drains the queues from the
// front. A queue emptied by consumption is removed from the map, so an
// empty map at end-of-stream means full consumption.
//
// The verifier assumes single-threaded delivery per subscription and
// holds no locks.
type Verifier struct {
	policy Policy
	state  map[change.Key][]change.Entry
}

// NewVerifier builds a verifier for the given expected entries under the
// given policy. The input slice is not mutated.
func NewVerifier(expected []change.Entry, policy Policy) *Verifier {
	state := make(map[change.Key][]change.Entry)
	for _, entry := range change.SortEntries(expected) {
		state[entry.Key] = append(state[entry.Key], entry)
	}
	return &Verifier{policy: policy, state: state}
}

// OnChange consumes one observed change. Any returned error is fatal to
// the verification.
func (v *Verifier) OnChange(key change.Key, row change.Row, time int64, isAddition bool) error {
	q := v.state[key]
	if len(q) == 0 {
		return &StreamError{
			Code:       ErrCodeUnexpectedEntry,
			Key:        key,
			Row:        row,
			Time:       time,
			IsAddition: isAddition,
			Remaining:  v.formatState(),
		}
	}

	switch v.policy {
	case SubsequenceSkip:
		return v.consumeSkipping(q, key, row, time, isAddition)
	default:
		return v.consumeStrict(q, key, row, time, isAddition)
	}
}

// consumeStrict pops the front entry and fails unless it matches the
// observed change.
func (v *Verifier) consumeStrict(q []change.Entry, key change.Key, row change.Row, time int64, isAddition bool) error {
	front := q[0]
	if !entryMatches(front, row, isAddition) {
		return &StreamError{
			Code:       ErrCodeEntryMismatch,
			Key:        key,
			Row:        row,
			Time:       time,
			IsAddition: isAddition,
			Remaining:  v.formatState(),
		}
	}
	v.advance(key, q, 1)
	return nil
}

// consumeSkipping discards non-matching fronts until a match is found,
// failing if the queue is exhausted first. Exhaustion consumes the whole
// queue, so any further change for the key reports as unexpected.
func (v *Verifier) consumeSkipping(q []change.Entry, key change.Key, row change.Row, time int64, isAddition bool) error {
	for i, entry := range q {
		if entryMatches(entry, row, isAddition) {
			v.advance(key, q, i+1)
			return nil
		}
	}
	delete(v.state, key)
	return &StreamError{
		Code:       ErrCodeExpectedExhausted,
		Key:        key,
		Row:        row,
		Time:       time,
		IsAddition: isAddition,
		Remaining:  v.formatState(),
	}
}

// advance drops n consumed entries from the front of the key's queue,
// removing the queue entirely once drained.
func (v *Verifier) advance(key change.Key, q []change.Entry, n int) {
	if n >= len(q) {
		delete(v.state, key)
		return
	}
	v.state[key] = q[n:]
}

// OnEnd verifies end-of-stream: every expected entry must have been
// consumed.
func (v *Verifier) OnEnd() error {
	if len(v.state) == 0 {
		return nil
	}
	return &StreamError{
		Code:      ErrCodeIncompleteConsumption,
		Remaining: v.formatState(),
	}
}

// Remaining returns the number of unconsumed expected entries.
func (v *Verifier) Remaining() int {
	n := 0
	for _, q := range v.state {
		n += len(q)
	}
	return n
}

func entryMatches(entry change.Entry, row change.Row, isAddition bool) bool {
	return entry.Insertion == isAddition && change.RowsEqual(entry.Row, row)
}

// formatState dumps the remaining expected state for failure messages,
// keys in sorted order for stable output.
func (v *Verifier) formatState() string {
	if len(v.state) == 0 {
		return "  (empty)"
	}

	keys := make([]string, 0, len(v.state))
	for k := range v.state {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "  key=%s:\n", k)
		for _, entry := range v.state[change.Key(k)] {
			fmt.Fprintf(&b, "    order=%d insertion=%v row=%s\n",
				entry.Order, entry.Insertion, change.CanonicalRow(entry.Row))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
