// Package verify checks streaming computation output for correctness.
//
// It offers two complementary views: the Verifier consumes a live change
// feed and checks it against an expected per-key sequence (exact replay
// or subsequence-with-skip), while the equality checkers compare
// captured streams or their squashed snapshots after the fact, with and
// without key identity.
//
// All verification failures are fatal to the test and reported
// synchronously; nothing here retries.
package verify
