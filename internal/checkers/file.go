// Package checkers provides ready-made runner.Checker implementations
// that inspect the externally observable output of a computation under
// test: plain files, CSV result tables and capture databases.
//
// All checkers tolerate partial, in-progress output; a file that does
// not exist yet or fails to parse simply reports "not there yet".
package checkers

import (
	"bufio"
	"fmt"
	"os"

	"github.com/streamcheck/streamcheck/internal/runner"
)

var (
	_ runner.Checker = (*FileLinesChecker)(nil)
	_ runner.Checker = (*CSVRowsChecker)(nil)
	_ runner.Checker = (*CaptureCountChecker)(nil)
)

// FileLinesChecker passes once the output file holds exactly the
// expected number of lines.
type FileLinesChecker struct {
	path string
	want int
}

// FileLines builds a checker for a line-count expectation on path.
func FileLines(path string, n int) *FileLinesChecker {
	return &FileLinesChecker{path: path, want: n}
}

// Check implements runner.Checker.
func (c *FileLinesChecker) Check() bool {
	n, err := countLines(c.path)
	if err != nil {
		return false
	}
	return n == c.want
}

// FailureDetails implements runner.Checker.
func (c *FileLinesChecker) FailureDetails() string {
	return describeFile(c.path)
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}

// describeFile is the shared diagnostic for file-based checkers: either
// the file is missing or its final contents are dumped verbatim.
func describeFile(path string) string {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fmt.Sprintf("%s does not exist", path)
	}
	if err != nil {
		return fmt.Sprintf("%s could not be read: %v", path, err)
	}
	return fmt.Sprintf("final output contents:\n%s", data)
}
