package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// Worker is an isolated execution context for the computation under
// test: independently scheduled, independently failable, and guaranteed
// to be terminated and joined by the runner on every exit path.
//
// Terminate cancels waiting, not cooperation: it must force the worker
// down regardless of its own completion state, and Join must not block
// indefinitely on a hung worker.
type Worker interface {
	Start() error
	Terminate()
	Join() error
}

// ProcessWorker runs a command in a separate OS process. A crash or hang
// of the command cannot affect the controlling test.
type ProcessWorker struct {
	cmd     *exec.Cmd
	started bool
}

// NewProcessWorker builds a worker around the given command. The command
// is not started until Start.
func NewProcessWorker(name string, args ...string) *ProcessWorker {
	return &ProcessWorker{cmd: exec.Command(name, args...)}
}

// Command exposes the underlying command for environment or IO setup
// before Start.
func (w *ProcessWorker) Command() *exec.Cmd {
	return w.cmd
}

// Start launches the process.
func (w *ProcessWorker) Start() error {
	if err := w.cmd.Start(); err != nil {
		return fmt.Errorf("start worker process: %w", err)
	}
	w.started = true
	return nil
}

// Terminate kills the process. Safe to call when the process already
// exited or never started.
func (w *ProcessWorker) Terminate() {
	if !w.started || w.cmd.Process == nil {
		return
	}
	// Kill error is expected when the process already exited.
	_ = w.cmd.Process.Kill()
}

// Join reaps the process. A kill-induced exit is not an error: the
// runner terminates workers as a matter of course.
func (w *ProcessWorker) Join() error {
	if !w.started {
		return nil
	}
	err := w.cmd.Wait()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return nil
		}
		return fmt.Errorf("join worker process: %w", err)
	}
	return nil
}

// FuncWorker runs a function in a goroutine with cooperative
// cancellation. Terminate cancels the function's context; Join waits for
// it to return, but gives up after the join grace so a function ignoring
// cancellation cannot block cleanup.
type FuncWorker struct {
	fn        func(context.Context) error
	joinGrace time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// DefaultJoinGrace bounds how long FuncWorker.Join waits for a worker
// that ignores cancellation.
const DefaultJoinGrace = 10 * time.Second

// NewFuncWorker builds a worker around fn. A non-positive joinGrace
// falls back to DefaultJoinGrace.
func NewFuncWorker(fn func(context.Context) error, joinGrace time.Duration) *FuncWorker {
	if joinGrace <= 0 {
		joinGrace = DefaultJoinGrace
	}
	return &FuncWorker{fn: fn, joinGrace: joinGrace}
}

// Start launches the function in its own goroutine.
func (w *FuncWorker) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.cancel = cancel
	w.done = make(chan struct{})
	w.mu.Unlock()

	go func() {
		defer close(w.done)
		err := w.fn(ctx)
		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
	}()
	return nil
}

// Terminate cancels the worker's context. Safe to call before Start or
// more than once.
func (w *FuncWorker) Terminate() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Join waits for the function to return, up to the join grace.
func (w *FuncWorker) Join() error {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
	case <-time.After(w.joinGrace):
		return fmt.Errorf("worker did not exit within join grace %s", w.joinGrace)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil && !errors.Is(w.err, context.Canceled) {
		return fmt.Errorf("worker failed: %w", w.err)
	}
	return nil
}

// Running reports whether the worker goroutine is still executing.
func (w *FuncWorker) Running() bool {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}
