package harness

import (
	"fmt"
	"sort"

	"github.com/streamcheck/streamcheck/internal/change"
	"github.com/streamcheck/streamcheck/internal/verify"
)

// Run executes a scenario: builds the verifier from the expected
// entries, replays the observed stream through it, and evaluates the
// final-state assertions.
//
// A returned error means the scenario itself is unusable (bad values);
// verification failures land in the result's Errors instead.
func Run(scenario *Scenario) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	expected, err := buildExpected(scenario)
	if err != nil {
		return nil, fmt.Errorf("expected entries: %w", err)
	}

	stream, err := buildStream(scenario)
	if err != nil {
		return nil, fmt.Errorf("stream: %w", err)
	}

	verifier := verify.NewVerifier(expected, verify.Policy(scenario.Policy))
	counter := verify.NewTimeCounter(distinctTimes(scenario))

	result := NewResult()
	failed := false
	for i, c := range stream {
		result.Observations = append(result.Observations, Observation{
			Seq:  i + 1,
			Key:  string(c.Key),
			Row:  fromRow(c.Row),
			Time: c.Time,
			Diff: c.Diff,
		})

		// The counter sees the whole stream; the verifier stops at its
		// first fatal error.
		_ = counter.OnChange(c.Key, c.Row, c.Time, c.Diff > 0)
		if failed {
			continue
		}
		if err := verifier.OnChange(c.Key, c.Row, c.Time, c.Diff > 0); err != nil {
			result.AddError(err.Error())
			failed = true
		}
	}

	if !failed {
		if err := verifier.OnEnd(); err != nil {
			result.AddError(err.Error())
		}
	}
	if err := counter.OnEnd(); err != nil {
		result.AddError(err.Error())
	}

	snapshot := change.Squash(stream)
	result.Snapshot = snapshotRows(snapshot)

	if scenario.Assert != nil && scenario.Assert.Snapshot != nil {
		expectedSnapshot, err := buildSnapshot(scenario)
		if err != nil {
			return nil, fmt.Errorf("assert.snapshot: %w", err)
		}
		if err := verify.EqualSnapshots(snapshot, expectedSnapshot); err != nil {
			result.AddError(fmt.Sprintf("final snapshot: %v", err))
		}
	}

	return result, nil
}

// buildExpected converts the scenario's expected entries, deriving keys
// from key-column values and appending the implied final retractions
// when cleanup is requested.
func buildExpected(scenario *Scenario) ([]change.Entry, error) {
	entries := make([]change.Entry, 0, len(scenario.Expected))
	for i, spec := range scenario.Expected {
		row, err := toRow(spec.Row)
		if err != nil {
			return nil, fmt.Errorf("expected[%d]: %w", i, err)
		}
		key, err := keyFor(row, scenario.KeyColumns)
		if err != nil {
			return nil, fmt.Errorf("expected[%d]: %w", i, err)
		}
		entries = append(entries, change.Entry{
			Key:       key,
			Order:     spec.Order,
			Insertion: spec.Insertion,
			Row:       row,
		})
	}

	if scenario.Cleanup {
		// One retraction per key, derived from that key's last entry.
		last := make(map[change.Key]change.Entry)
		for _, entry := range change.SortEntries(entries) {
			last[entry.Key] = entry
		}
		keys := make([]string, 0, len(last))
		for k := range last {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		for _, k := range keys {
			entries = append(entries, change.FinalCleanup(last[change.Key(k)]))
		}
	}

	return entries, nil
}

// buildStream converts the scenario's observed changes.
func buildStream(scenario *Scenario) (change.Stream, error) {
	stream := make(change.Stream, 0, len(scenario.Stream))
	for i, spec := range scenario.Stream {
		row, err := toRow(spec.Row)
		if err != nil {
			return nil, fmt.Errorf("stream[%d]: %w", i, err)
		}
		key, err := keyFor(row, scenario.KeyColumns)
		if err != nil {
			return nil, fmt.Errorf("stream[%d]: %w", i, err)
		}
		stream = append(stream, change.Change{
			Key:  key,
			Row:  row,
			Time: spec.Time,
			Diff: spec.Diff,
		})
	}
	return stream, nil
}

// buildSnapshot converts the asserted snapshot rows, keyed like every
// other row in the scenario.
func buildSnapshot(scenario *Scenario) (change.Snapshot, error) {
	snapshot := make(change.Snapshot, len(scenario.Assert.Snapshot))
	for i, m := range scenario.Assert.Snapshot {
		row, err := toRow(m)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		key, err := keyFor(row, scenario.KeyColumns)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		snapshot[key] = row
	}
	return snapshot, nil
}

func distinctTimes(scenario *Scenario) int {
	if scenario.Assert == nil || scenario.Assert.DistinctTimes == nil {
		return -1
	}
	return *scenario.Assert.DistinctTimes
}

// snapshotRows renders a snapshot as plain rows in canonical row order
// for deterministic result output.
func snapshotRows(snapshot change.Snapshot) []map[string]any {
	type keyed struct {
		canonical string
		row       change.Row
	}
	rows := make([]keyed, 0, len(snapshot))
	for _, row := range snapshot {
		rows = append(rows, keyed{canonical: change.CanonicalRow(row), row: row})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].canonical < rows[j].canonical })

	out := make([]map[string]any, len(rows))
	for i, kr := range rows {
		out[i] = fromRow(kr.row)
	}
	return out
}
