// Package runner executes a computation under test in an isolated worker
// while polling an external condition under a timeout, with guaranteed
// worker teardown on every exit path.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/streamcheck/streamcheck/internal/config"
)

// Runner drives verification runs. Construct with New; the zero value is
// not usable.
type Runner struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a runner with the given configuration. A nil logger
// suppresses log output.
func New(cfg config.Config, logger *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{cfg: cfg, logger: logger}, nil
}

// Run starts the worker, then polls the checker at the configured
// interval until it reports success or the timeout elapses. The failure
// path is never taken before the full timeout has elapsed.
//
// Cleanup is guaranteed on every exit path, including a panicking
// checker and context cancellation: the persistence grace (if any) is
// slept, then the worker is terminated and joined. A nil worker skips
// the spawn and teardown and only polls.
//
// On timeout the returned error is a *TimeoutError carrying the
// checker's FailureDetails output.
func (r *Runner) Run(ctx context.Context, checker Checker, worker Worker) (err error) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	if worker != nil {
		if err := worker.Start(); err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		defer func() {
			if r.cfg.PersistenceGrace > 0 {
				// Allow asynchronous persistence flushing to finish so
				// terminating the worker does not truncate state writes.
				logger.Info("waiting persistence grace before terminating worker",
					"grace", r.cfg.PersistenceGrace)
				time.Sleep(r.cfg.PersistenceGrace)
			}
			worker.Terminate()
			if joinErr := worker.Join(); joinErr != nil {
				logger.Warn("worker join failed", "error", joinErr)
			}
			logger.Info("worker terminated")
		}()
	}

	logger.Info("polling checker",
		"timeout", r.cfg.Timeout,
		"poll_interval", r.cfg.PollInterval,
	)

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("run %s: %w", runID, ctx.Err())
		case <-time.After(r.cfg.PollInterval):
		}

		elapsed := time.Since(start)
		if elapsed >= r.cfg.Timeout {
			diagnostic := checker.FailureDetails()
			if diagnostic == "" {
				diagnostic = "no diagnostic available"
			}
			logger.Error("checker failed", "elapsed", elapsed, "details", diagnostic)
			return &TimeoutError{Elapsed: elapsed, Diagnostic: diagnostic}
		}

		if checker.Check() {
			logger.Info("correct result obtained", "elapsed", elapsed)
			return nil
		}
	}
}
