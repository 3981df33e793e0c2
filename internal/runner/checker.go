package runner

// Checker inspects an externally observable condition (a file, an
// emitted artifact, a capture database) and reports whether the expected
// state has been reached.
//
// Check must be idempotent and safe to call repeatedly on partial,
// in-progress output: the runner polls it while the worker is still
// writing.
type Checker interface {
	// Check reports whether the expected external state is reached.
	Check() bool

	// FailureDetails returns a diagnostic for the timeout report.
	FailureDetails() string
}

// CheckFunc adapts a plain predicate into a Checker with a generic
// diagnostic.
type CheckFunc func() bool

// Check implements Checker.
func (f CheckFunc) Check() bool { return f() }

// FailureDetails implements Checker.
func (CheckFunc) FailureDetails() string { return "no diagnostic available" }
