package ir

import (
	"fmt"
	"slices"
	"strings"
)

// Trace is a sequence of rule ids.
//
// Full and optimal traces are kept in derivation order: replaying the ids
// left to right from the axioms fires every rule with its premises known.
// For forward chaining this is the firing order; backward engines fire
// goal-first and report the reverse.
type Trace []string

// String renders the trace as "r1 -> r2".
func (t Trace) String() string {
	if len(t) == 0 {
		return "(empty)"
	}
	return strings.Join(t, " -> ")
}

// Contains reports whether id occurs in the trace.
func (t Trace) Contains(id string) bool {
	return slices.Contains(t, id)
}

// Reversed returns a reversed copy.
func (t Trace) Reversed() Trace {
	out := slices.Clone(t)
	slices.Reverse(out)
	return out
}

// Strategy names a search direction.
type Strategy string

const (
	// StrategyForward chains from the axioms outward.
	StrategyForward Strategy = "forward"
	// StrategyBackward is greedy goal reduction without backtracking.
	StrategyBackward Strategy = "backward"
	// StrategySearch is backtracking goal reduction.
	StrategySearch Strategy = "search"
)

// ValidStrategies lists the accepted strategy names.
var ValidStrategies = []Strategy{StrategyForward, StrategyBackward, StrategySearch}

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(ValidStrategies, st) {
		return st, nil
	}
	return "", fmt.Errorf("invalid strategy %q: must be one of %v", s, ValidStrategies)
}

// StepAction classifies a process log entry.
type StepAction string

const (
	ActionInit StepAction = "init"
	ActionFire StepAction = "fire"
	ActionUndo StepAction = "undo"
	ActionDone StepAction = "done"
	ActionFail StepAction = "fail"
)

// Snapshot is one entry of a run's process log. It is written for the
// explanation surface only; engines never read it back.
type Snapshot struct {
	Step   int        `json:"step"`
	Action StepAction `json:"action"`
	Rule   string     `json:"rule,omitempty"`
	Goal   Symbol     `json:"goal,omitempty"` // goal reduced at this step (backward)
	Set    []Symbol   `json:"set"`            // working set (forward) or goal set (backward)
	Trace  Trace      `json:"trace"`          // rules fired so far, in firing order
	Depth  int        `json:"depth,omitempty"`
	Note   string     `json:"note,omitempty"`
}

// Limits are the effective budgets a run was executed with.
type Limits struct {
	Steps      int `json:"steps"`
	Expansions int `json:"expansions"`
	Depth      int `json:"depth"`
}

// Run is the persisted record of one inference run.
type Run struct {
	ID             string     `json:"id"`
	Seq            int64      `json:"seq"`
	Strategy       Strategy   `json:"strategy"`
	RulebookHash   string     `json:"rulebook_hash"`
	Facts          []Symbol   `json:"facts"`
	Goals          []Symbol   `json:"goals"`
	Success        bool       `json:"success"`
	FailureCode    string     `json:"failure_code,omitempty"`
	FailureSymbol  Symbol     `json:"failure_symbol,omitempty"`
	FailureMessage string     `json:"failure_message,omitempty"`
	FullTrace      Trace      `json:"full_trace"`
	OptimalTrace   Trace      `json:"optimal_trace"`
	Dropped        []string   `json:"dropped,omitempty"`
	Limits         Limits     `json:"limits"`
	Log            []Snapshot `json:"log"`
	Summary        string     `json:"summary"`
	EngineVersion  string     `json:"engine_version"`
	IRVersion      string     `json:"ir_version"`
}
