// Package harness runs declarative stream-verification scenarios.
//
// A scenario names the expected per-key change entries, the observed
// stream to replay against them, the verification policy, and optional
// assertions on the squashed final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	policy: strict            # or: subsequence
//	key_columns: [k]
//	cleanup: false            # append the implied final retraction per key
//	expected:
//	  - order: 1
//	    insertion: true
//	    row: { k: 1, v: 1 }
//	stream:
//	  - row: { k: 1, v: 1 }
//	    time: 1
//	    diff: 1
//	assert:
//	  snapshot:
//	    - { k: 1, v: 1 }
//	  distinct_times: 1
//
// Row keys are derived from the key_columns values of each row, for
// expected entries and observed changes alike, so a scenario never
// spells out raw key hashes.
//
// # Deterministic Results
//
// Run is fully deterministic for a fixed scenario: observations carry
// the replay sequence numbers and the snapshot is emitted in canonical
// row order, so results can be compared against golden files with
// AssertGolden.
package harness
