package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamcheck/streamcheck/internal/change"
)

func writeStreamFile(t *testing.T, dir string) string {
	t.Helper()

	key := change.KeyOf(change.Int(1))
	stream := change.Stream{
		{Key: key, Row: change.Row{"k": change.Int(1), "v": change.Int(1)}, Time: 1, Diff: 1},
		{Key: key, Row: change.Row{"k": change.Int(1), "v": change.Int(1)}, Time: 2, Diff: -1},
		{Key: key, Row: change.Row{"k": change.Int(1), "v": change.Int(2)}, Time: 2, Diff: 1},
	}

	data, err := change.MarshalStream(stream)
	require.NoError(t, err)

	path := filepath.Join(dir, "stream.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRecordSquashRuns(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "capture.db")
	streamPath := writeStreamFile(t, dir)

	out, err := execute(t, "record", dbPath, streamPath, "--run-id", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 3 change(s) as run run-1")

	out, err = execute(t, "runs", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "finished")
	assert.Contains(t, out, "3 change(s)")

	out, err = execute(t, "--format", "json", "squash", dbPath, "run-1")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)

	data, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var result SquashResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "run-1", result.RunID)
	require.Len(t, result.Rows, 1)

	row, err := change.UnmarshalRow(result.Rows[0].Row)
	require.NoError(t, err)
	assert.True(t, change.RowsEqual(change.Row{"k": change.Int(1), "v": change.Int(2)}, row))
}

func TestRecordGeneratesRunID(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "capture.db")
	streamPath := writeStreamFile(t, dir)

	out, err := execute(t, "--format", "json", "record", dbPath, streamPath)
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	data, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var result RecordResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 3, result.Changes)
}

func TestRecordMissingStreamFile(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "record", filepath.Join(dir, "capture.db"), filepath.Join(dir, "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSquashUnknownRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "capture.db")

	_, err := execute(t, "squash", dbPath, "missing-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found")
}

func TestRunsEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "capture.db")

	out, err := execute(t, "runs", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}
