package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/streamcheck/streamcheck/internal/verify"
)

// Scenario defines one stream-verification case: the expected per-key
// entries, the observed stream to replay, and assertions on the result.
type Scenario struct {
	// Name uniquely identifies this scenario; also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Policy selects the verification policy: "strict" or "subsequence".
	Policy string `yaml:"policy"`

	// KeyColumns name the row columns whose values derive each row's key.
	// Order matters: the same values in a different column order yield a
	// different key.
	KeyColumns []string `yaml:"key_columns"`

	// Cleanup appends the implied final retraction for each key's last
	// expected entry, modeling "this row must eventually be retracted".
	Cleanup bool `yaml:"cleanup,omitempty"`

	// Expected lists the expected change entries.
	Expected []EntrySpec `yaml:"expected"`

	// Stream lists the observed changes in delivery order.
	Stream []ChangeSpec `yaml:"stream"`

	// Assert optionally validates the squashed final state.
	Assert *AssertSpec `yaml:"assert,omitempty"`
}

// EntrySpec is one expected change entry. The key is derived from the
// row's key-column values.
type EntrySpec struct {
	Order     int64          `yaml:"order"`
	Insertion bool           `yaml:"insertion"`
	Row       map[string]any `yaml:"row"`
}

// ChangeSpec is one observed change. Diff is +1 for an insertion and -1
// for a removal.
type ChangeSpec struct {
	Row  map[string]any `yaml:"row"`
	Time int64          `yaml:"time"`
	Diff int            `yaml:"diff"`
}

// AssertSpec validates the final state after the stream is replayed.
type AssertSpec struct {
	// Snapshot lists the rows the squashed final state must hold,
	// exactly, keyed by the scenario's key columns.
	Snapshot []map[string]any `yaml:"snapshot,omitempty"`

	// DistinctTimes, when set, is the exact number of distinct commit
	// times the stream must carry.
	DistinctTimes *int `yaml:"distinct_times,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Returns an error
// if the file doesn't exist, is malformed, contains unknown fields
// (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "asserts:" vs "assert:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch verify.Policy(s.Policy) {
	case verify.StrictOrder, verify.SubsequenceSkip:
	case "":
		return fmt.Errorf("policy is required (%q or %q)", verify.StrictOrder, verify.SubsequenceSkip)
	default:
		return fmt.Errorf("unknown policy %q (want %q or %q)", s.Policy, verify.StrictOrder, verify.SubsequenceSkip)
	}

	if len(s.KeyColumns) == 0 {
		return fmt.Errorf("key_columns list is required and must be non-empty")
	}

	if len(s.Expected) == 0 {
		return fmt.Errorf("expected list is required and must be non-empty")
	}

	if len(s.Stream) == 0 {
		return fmt.Errorf("stream list is required and must be non-empty")
	}

	for i, entry := range s.Expected {
		if entry.Row == nil {
			return fmt.Errorf("expected[%d]: row is required", i)
		}
		for _, col := range s.KeyColumns {
			if _, ok := entry.Row[col]; !ok {
				return fmt.Errorf("expected[%d]: row is missing key column %q", i, col)
			}
		}
	}

	for i, c := range s.Stream {
		if c.Row == nil {
			return fmt.Errorf("stream[%d]: row is required", i)
		}
		if c.Diff != 1 && c.Diff != -1 {
			return fmt.Errorf("stream[%d]: diff must be 1 or -1, got %d", i, c.Diff)
		}
		for _, col := range s.KeyColumns {
			if _, ok := c.Row[col]; !ok {
				return fmt.Errorf("stream[%d]: row is missing key column %q", i, col)
			}
		}
	}

	if s.Assert != nil {
		for i, row := range s.Assert.Snapshot {
			for _, col := range s.KeyColumns {
				if _, ok := row[col]; !ok {
					return fmt.Errorf("assert.snapshot[%d]: row is missing key column %q", i, col)
				}
			}
		}
		if s.Assert.DistinctTimes != nil && *s.Assert.DistinctTimes < 0 {
			return fmt.Errorf("assert.distinct_times must be non-negative")
		}
	}

	return nil
}
