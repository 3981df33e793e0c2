package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: passing
description: "Insert then update, replayed exactly."
policy: strict
key_columns: [k]
expected:
  - order: 1
    insertion: true
    row: { k: 1, v: 1 }
  - order: 2
    insertion: false
    row: { k: 1, v: 1 }
  - order: 3
    insertion: true
    row: { k: 1, v: 2 }
stream:
  - row: { k: 1, v: 1 }
    time: 1
    diff: 1
  - row: { k: 1, v: 1 }
    time: 2
    diff: -1
  - row: { k: 1, v: 2 }
    time: 2
    diff: 1
`

const failingScenario = `
name: failing
description: "Stream skips the removal under the strict policy."
policy: strict
key_columns: [k]
expected:
  - order: 1
    insertion: true
    row: { k: 1, v: 1 }
  - order: 2
    insertion: false
    row: { k: 1, v: 1 }
  - order: 3
    insertion: true
    row: { k: 1, v: 2 }
stream:
  - row: { k: 1, v: 1 }
    time: 1
    diff: 1
  - row: { k: 1, v: 2 }
    time: 2
    diff: 1
`

func writeScenarioFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVerifyAllPass(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "passing.yaml", passingScenario)

	out, err := execute(t, "verify", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ passing")
	assert.Contains(t, out, "All scenarios passed")
}

func TestVerifyFailure(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "failing.yaml", failingScenario)

	out, err := execute(t, "verify", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ failing")
	assert.Contains(t, out, "ENTRY_MISMATCH")
}

func TestVerifyJSON(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "passing.yaml", passingScenario)
	writeScenarioFile(t, dir, "failing.yaml", failingScenario)

	out, err := execute(t, "--format", "json", "verify", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, "E_VERIFY_FAILED", response.Error.Code)

	data, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var result VerifyResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
}

func TestVerifyFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "passing.yaml", passingScenario)
	writeScenarioFile(t, dir, "failing.yaml", failingScenario)

	out, err := execute(t, "verify", dir, "--filter", "passing")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestVerifyGoldenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeScenarioFile(t, dir, "passing.yaml", passingScenario)

	// First pass records the golden file.
	out, err := execute(t, "verify", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")

	goldenPath := filepath.Join(dir, "golden", "passing.golden")
	require.FileExists(t, goldenPath)

	// Second pass compares against it.
	_, err = execute(t, "verify", filepath.Dir(path))
	require.NoError(t, err)

	// A tampered golden file fails the comparison.
	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"pass": false}`), 0o644))
	out, err = execute(t, "verify", dir)
	require.Error(t, err)
	assert.Contains(t, out, "Golden file mismatch")
}

func TestVerifyMissingDirectory(t *testing.T) {
	_, err := execute(t, "verify", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerifyEmptyDirectory(t *testing.T) {
	out, err := execute(t, "verify", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}
