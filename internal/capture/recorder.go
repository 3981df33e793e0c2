package capture

import (
	"context"
	"fmt"

	"github.com/streamcheck/streamcheck/internal/change"
)

// Recorder is a subscription callback persisting every observed change
// for one run. Delivery is single-threaded per subscription, so the
// sequence counter needs no lock.
type Recorder struct {
	store *Store
	runID string
	seq   int64
}

// NewRecorder registers the run and returns a recorder bound to it.
func NewRecorder(ctx context.Context, store *Store, runID string) (*Recorder, error) {
	if err := store.CreateRun(ctx, runID); err != nil {
		return nil, err
	}
	return &Recorder{store: store, runID: runID}, nil
}

// OnChange appends the observed change to the run's log.
func (r *Recorder) OnChange(key change.Key, row change.Row, time int64, isAddition bool) error {
	rowJSON, err := change.MarshalRow(row)
	if err != nil {
		return fmt.Errorf("record change: %w", err)
	}

	diff := -1
	if isAddition {
		diff = 1
	}

	r.seq++
	_, err = r.store.db.Exec(`
		INSERT INTO changes (run_id, seq, key, row, time, diff)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.runID, r.seq, string(key), string(rowJSON), time, diff)
	if err != nil {
		return fmt.Errorf("record change: %w", err)
	}
	return nil
}

// OnEnd marks the run finished.
func (r *Recorder) OnEnd() error {
	return r.store.FinishRun(context.Background(), r.runID)
}

// ReadStream returns the run's captured stream in delivery order.
func (s *Store) ReadStream(ctx context.Context, runID string) (change.Stream, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, row, time, diff FROM changes
		WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read stream %s: %w", runID, err)
	}
	defer rows.Close()

	var stream change.Stream
	for rows.Next() {
		var (
			key     string
			rowJSON string
			time    int64
			diff    int
		)
		if err := rows.Scan(&key, &rowJSON, &time, &diff); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		row, err := change.UnmarshalRow([]byte(rowJSON))
		if err != nil {
			return nil, fmt.Errorf("read stream %s: %w", runID, err)
		}
		stream = append(stream, change.Change{
			Key:  change.Key(key),
			Row:  row,
			Time: time,
			Diff: diff,
		})
	}
	return stream, rows.Err()
}

// ReadSnapshot squashes the run's captured stream into its final state.
func (s *Store) ReadSnapshot(ctx context.Context, runID string) (change.Snapshot, error) {
	stream, err := s.ReadStream(ctx, runID)
	if err != nil {
		return nil, err
	}
	return change.Squash(stream), nil
}

// CountChanges returns the number of changes recorded for a run so far.
// Cheap enough for polling checkers.
func (s *Store) CountChanges(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM changes WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count changes %s: %w", runID, err)
	}
	return n, nil
}
