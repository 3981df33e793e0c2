package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamcheck/streamcheck/internal/capture"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
}

// RunInfo describes one recorded run.
type RunInfo struct {
	ID       string `json:"id"`
	Finished bool   `json:"finished"`
	Changes  int    `json:"changes"`
}

// RunsResult lists the runs in a capture database.
type RunsResult struct {
	Runs []RunInfo `json:"runs"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs <capture-db>",
		Short: "List recorded runs",
		Long: `List the runs in a capture database, with their subscription
state and recorded change counts.

Examples:
  streamcheck runs capture.db
  streamcheck runs capture.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, args[0], cmd)
		},
	}

	return cmd
}

func runRuns(opts *RunsOptions, dbPath string, cmd *cobra.Command) error {
	store, err := capture.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open capture database", err)
	}
	defer store.Close()

	ids, err := store.RunIDs(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	result := RunsResult{Runs: make([]RunInfo, 0, len(ids))}
	for _, id := range ids {
		finished, err := store.Finished(cmd.Context(), id)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to query run", err)
		}
		count, err := store.CountChanges(cmd.Context(), id)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to count changes", err)
		}
		result.Runs = append(result.Runs, RunInfo{ID: id, Finished: finished, Changes: count})
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}

	w := cmd.OutOrStdout()
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, run := range result.Runs {
		state := "running"
		if run.Finished {
			state = "finished"
		}
		fmt.Fprintf(w, "%s  %s  %d change(s)\n", run.ID, state, run.Changes)
	}
	return nil
}
