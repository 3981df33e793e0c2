package harness

// Observation is one replayed change as the verifier saw it.
type Observation struct {
	Seq  int            `json:"seq"`
	Key  string         `json:"key"`
	Row  map[string]any `json:"row"`
	Time int64          `json:"time"`
	Diff int            `json:"diff"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall scenario success.
	Pass bool `json:"pass"`

	// Errors contains verification failure messages. Empty if Pass.
	Errors []string `json:"errors,omitempty"`

	// Observations record the replayed stream in delivery order.
	// Used for golden comparison.
	Observations []Observation `json:"observations"`

	// Snapshot is the squashed final state, rows in canonical order.
	Snapshot []map[string]any `json:"snapshot"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:         true,
		Observations: []Observation{},
		Snapshot:     []map[string]any{},
	}
}

// AddError records a verification failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
