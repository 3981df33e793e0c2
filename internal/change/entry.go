package change

import "sort"

// Entry is one expected keyed change: an insertion or removal of a row,
// positioned by a logical order number.
//
// The order is a sequence number, not a wall-clock time, and for a fixed
// key it must agree with the order in which the engine is expected to emit
// the changes. An update is modeled as a removal of the old row followed
// by an insertion of the new one.
type Entry struct {
	Key       Key
	Order     int64
	Insertion bool
	Row       Row
}

// NewEntry derives the key from the primary-key column values and builds
// the entry. Pure value construction, no side effects.
func NewEntry(keyColumns []Value, order int64, insertion bool, row Row) Entry {
	return Entry{
		Key:       KeyOf(keyColumns...),
		Order:     order,
		Insertion: insertion,
		Row:       row,
	}
}

// FinalCleanup returns the implied terminal removal for a still-present
// row: same key and row, one order step later, insertion false. Used to
// model "this row must eventually be retracted" at the end of a test.
func FinalCleanup(e Entry) Entry {
	return Entry{
		Key:       e.Key,
		Order:     e.Order + 1,
		Insertion: false,
		Row:       e.Row,
	}
}

// Less orders entries primarily by Order and secondarily by Insertion,
// with a removal sorting before an insertion at the same order. Entries
// equal under this order are interchangeable.
func Less(a, b Entry) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return !a.Insertion && b.Insertion
}

// SortEntries sorts a copy of the given entries by the total entry order,
// leaving the input untouched.
func SortEntries(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(sorted[i], sorted[j])
	})
	return sorted
}
