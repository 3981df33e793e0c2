package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/streamcheck/streamcheck/internal/capture"
	"github.com/streamcheck/streamcheck/internal/change"
)

// SquashOptions holds flags for the squash command.
type SquashOptions struct {
	*RootOptions
}

// SquashRow is one surviving row of a squashed run.
type SquashRow struct {
	Key string          `json:"key"`
	Row json.RawMessage `json:"row"`
}

// SquashResult holds the squashed final state of a run.
type SquashResult struct {
	RunID string      `json:"run_id"`
	Rows  []SquashRow `json:"rows"`
}

// NewSquashCommand creates the squash command.
func NewSquashCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SquashOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "squash <capture-db> <run-id>",
		Short: "Fold a captured run into its final state",
		Long: `Fold a run's captured change stream into its final snapshot.

Insertions set or overwrite a key's row; removals delete the key. The
surviving rows are printed in canonical row order.

Examples:
  streamcheck squash capture.db replay-7
  streamcheck squash capture.db replay-7 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSquash(opts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runSquash(opts *SquashOptions, dbPath, runID string, cmd *cobra.Command) error {
	store, err := capture.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open capture database", err)
	}
	defer store.Close()

	if err := requireRun(cmd, store, runID); err != nil {
		return err
	}

	snapshot, err := store.ReadSnapshot(cmd.Context(), runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	rows, err := snapshotToRows(snapshot)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render snapshot", err)
	}

	result := SquashResult{RunID: runID, Rows: rows}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s: %d row(s)\n", runID, len(rows))
	for _, row := range rows {
		fmt.Fprintf(w, "  %s %s\n", row.Key, row.Row)
	}
	return nil
}

// requireRun fails with a command error when the run is unknown.
func requireRun(cmd *cobra.Command, store *capture.Store, runID string) error {
	ids, err := store.RunIDs(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	for _, id := range ids {
		if id == runID {
			return nil
		}
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
}

// snapshotToRows renders a snapshot in canonical row order.
func snapshotToRows(snapshot change.Snapshot) ([]SquashRow, error) {
	type keyed struct {
		canonical string
		key       change.Key
		row       change.Row
	}
	ordered := make([]keyed, 0, len(snapshot))
	for key, row := range snapshot {
		ordered = append(ordered, keyed{canonical: change.CanonicalRow(row), key: key, row: row})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].canonical < ordered[j].canonical })

	rows := make([]SquashRow, len(ordered))
	for i, kr := range ordered {
		rowJSON, err := change.MarshalRow(kr.row)
		if err != nil {
			return nil, fmt.Errorf("marshal row for key %s: %w", kr.key, err)
		}
		rows[i] = SquashRow{Key: string(kr.key), Row: rowJSON}
	}
	return rows, nil
}
