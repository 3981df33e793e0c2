package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/streamcheck/streamcheck/internal/capture"
	"github.com/streamcheck/streamcheck/internal/change"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	RunID string
}

// RecordResult holds the outcome of recording a stream.
type RecordResult struct {
	RunID   string `json:"run_id"`
	Changes int    `json:"changes"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <capture-db> <stream-file>",
		Short: "Record a change stream into a capture database",
		Long: `Record a JSON change stream into a capture database.

The stream file holds the wire form of a captured stream, as produced
by a subscription recorder. The run is created if missing and marked
finished once every change is recorded.

Examples:
  streamcheck record capture.db stream.json
  streamcheck record capture.db stream.json --run-id replay-7`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "run identifier (default: new UUID)")

	return cmd
}

func runRecord(opts *RecordOptions, dbPath, streamPath string, cmd *cobra.Command) error {
	data, err := os.ReadFile(streamPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read stream file", err)
	}

	stream, err := change.UnmarshalStream(data)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse stream file", err)
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	store, err := capture.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open capture database", err)
	}
	defer store.Close()

	recorder, err := capture.NewRecorder(cmd.Context(), store, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create recorder", err)
	}

	if err := change.Feed(stream, recorder); err != nil {
		return WrapExitError(ExitCommandError, "failed to record stream", err)
	}

	result := RecordResult{RunID: runID, Changes: len(stream)}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d change(s) as run %s\n", result.Changes, result.RunID)
	return nil
}
