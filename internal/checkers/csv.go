package checkers

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSVRowsChecker passes once the CSV output file, indexed by its key
// columns, matches the expected rows. Comparison is order-insensitive
// over rows and only looks at the expected columns, so extra output
// columns do not fail the check.
type CSVRowsChecker struct {
	path     string
	keyCols  []string
	expected []map[string]string
}

// CSVRows builds a checker comparing the CSV file at path against the
// expected rows. keyCols name the columns forming the row index; every
// expected row must carry them.
func CSVRows(path string, keyCols []string, expected []map[string]string) *CSVRowsChecker {
	return &CSVRowsChecker{path: path, keyCols: keyCols, expected: expected}
}

// Check implements runner.Checker.
func (c *CSVRowsChecker) Check() bool {
	actual, err := c.readIndexed()
	if err != nil {
		// Partial or absent output; not there yet.
		return false
	}

	if len(actual) != len(c.expected) {
		return false
	}
	for _, want := range c.expected {
		idx, err := c.indexOf(want)
		if err != nil {
			return false
		}
		got, ok := actual[idx]
		if !ok {
			return false
		}
		for col, val := range want {
			if got[col] != val {
				return false
			}
		}
	}
	return true
}

// FailureDetails implements runner.Checker.
func (c *CSVRowsChecker) FailureDetails() string {
	return describeFile(c.path)
}

// readIndexed parses the CSV file and indexes its rows by key columns.
func (c *CSVRowsChecker) readIndexed() (map[string]map[string]string, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	header := records[0]
	indexed := make(map[string]map[string]string, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("ragged row")
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		idx, err := c.indexOf(row)
		if err != nil {
			return nil, err
		}
		indexed[idx] = row
	}
	return indexed, nil
}

// indexOf builds the row index from the key column values.
func (c *CSVRowsChecker) indexOf(row map[string]string) (string, error) {
	parts := make([]string, len(c.keyCols))
	for i, col := range c.keyCols {
		val, ok := row[col]
		if !ok {
			return "", fmt.Errorf("missing key column %q", col)
		}
		parts[i] = val
	}
	return strings.Join(parts, "\x00"), nil
}
