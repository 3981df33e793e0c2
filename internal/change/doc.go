// Package change models keyed row changes as emitted by a streaming
// engine: the value types rows may carry, content-derived row keys,
// expected change entries with a logical total order, and captured
// streams with their squashed snapshots.
//
// # Keys
//
// Keys are derived from the ordered tuple of primary-key column values
// via SHA-256 over a domain-separated canonical encoding, so the same
// logical row always gets the same key across runs.
//
// # Canonicalization
//
// Array-valued cells are not comparable with ==. Canonicalize and
// CanonicalRow produce stable string comparison keys (type, dtype, shape
// and a stable element representation) that equal values map to equally;
// all set and multiset comparisons in the harness go through them.
//
// # Snapshots
//
// Squash folds a captured stream left to right: insertion sets the key's
// row, removal deletes it. The fold is idempotent over its result and
// splits associatively, so partial captures can be folded incrementally
// with ApplyTo.
package change
