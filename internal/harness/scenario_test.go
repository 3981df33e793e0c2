package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/exact_replay.yaml")
	require.NoError(t, err)

	assert.Equal(t, "exact_replay", scenario.Name)
	assert.Equal(t, "strict", scenario.Policy)
	assert.Equal(t, []string{"k"}, scenario.KeyColumns)
	assert.Len(t, scenario.Expected, 3)
	assert.Len(t, scenario.Stream, 3)
	require.NotNil(t, scenario.Assert)
	assert.Len(t, scenario.Assert.Snapshot, 1)
	require.NotNil(t, scenario.Assert.DistinctTimes)
	assert.Equal(t, 2, *scenario.Assert.DistinctTimes)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does_not_exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarioUnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "A scenario with a misspelled field."
policy: strict
key_columns: [k]
expected:
  - order: 1
    insertion: true
    row: { k: 1 }
stream:
  - row: { k: 1 }
    time: 1
    diff: 1
asserts:
  snapshot: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenarioValidation(t *testing.T) {
	valid := `
name: base
description: "Base scenario mutated per case."
policy: strict
key_columns: [k]
expected:
  - order: 1
    insertion: true
    row: { k: 1 }
stream:
  - row: { k: 1 }
    time: 1
    diff: 1
`

	tests := []struct {
		name    string
		mutate  func(s *Scenario)
		wantErr string
	}{
		{
			name:    "missing name",
			mutate:  func(s *Scenario) { s.Name = "" },
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			mutate:  func(s *Scenario) { s.Description = "" },
			wantErr: "description is required",
		},
		{
			name:    "missing policy",
			mutate:  func(s *Scenario) { s.Policy = "" },
			wantErr: "policy is required",
		},
		{
			name:    "unknown policy",
			mutate:  func(s *Scenario) { s.Policy = "lenient" },
			wantErr: `unknown policy "lenient"`,
		},
		{
			name:    "missing key columns",
			mutate:  func(s *Scenario) { s.KeyColumns = nil },
			wantErr: "key_columns list is required",
		},
		{
			name:    "empty expected",
			mutate:  func(s *Scenario) { s.Expected = nil },
			wantErr: "expected list is required",
		},
		{
			name:    "empty stream",
			mutate:  func(s *Scenario) { s.Stream = nil },
			wantErr: "stream list is required",
		},
		{
			name: "expected row missing key column",
			mutate: func(s *Scenario) {
				s.Expected[0].Row = map[string]any{"v": 1}
			},
			wantErr: `expected[0]: row is missing key column "k"`,
		},
		{
			name: "stream diff out of range",
			mutate: func(s *Scenario) {
				s.Stream[0].Diff = 2
			},
			wantErr: "diff must be 1 or -1",
		},
		{
			name: "stream row missing key column",
			mutate: func(s *Scenario) {
				s.Stream[0].Row = map[string]any{"v": 1}
			},
			wantErr: `stream[0]: row is missing key column "k"`,
		},
		{
			name: "snapshot row missing key column",
			mutate: func(s *Scenario) {
				s.Assert = &AssertSpec{Snapshot: []map[string]any{{"v": 1}}}
			},
			wantErr: `assert.snapshot[0]: row is missing key column "k"`,
		},
		{
			name: "negative distinct times",
			mutate: func(s *Scenario) {
				n := -1
				s.Assert = &AssertSpec{DistinctTimes: &n}
			},
			wantErr: "distinct_times must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario, err := LoadScenario(writeScenario(t, valid))
			require.NoError(t, err)

			tt.mutate(scenario)
			err = validateScenario(scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
