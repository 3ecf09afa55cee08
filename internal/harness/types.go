package harness

import (
	"github.com/roach88/deduce/internal/engine"
	"github.com/roach88/deduce/internal/ir"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every expectation, assertion and law holds.
	Pass bool `json:"pass"`

	// Run is the persisted record of the engine run, as read back from
	// the scratch store.
	Run ir.Run `json:"run"`

	// Outcome is the engine result the run was recorded from.
	Outcome engine.Result `json:"-"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// selectTrace returns the trace an assertion reads.
func (r *Result) selectTrace(which string) ir.Trace {
	if which == TraceOptimal {
		return r.Run.OptimalTrace
	}
	return r.Run.FullTrace
}
