package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/deduce/internal/explain"
	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
	"github.com/roach88/deduce/internal/trace"
)

// Default budget floors. The effective limits grow with the rule table.
const (
	DefaultMaxSteps      = 100
	DefaultMaxExpansions = 10000
)

// Engine runs inference strategies over one immutable rule table.
type Engine struct {
	table    *ir.RuleTable
	classify rules.Classifier

	// Zero means "scale with the table".
	maxSteps      int
	maxExpansions int
	maxDepth      int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxSteps caps the rule firings of forward and greedy runs.
//
// Default: max(100, 2 x rules).
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithMaxExpansions caps the tentative firings of a backtracking search.
//
// Default: max(10000, 100 x rules).
func WithMaxExpansions(n int) Option {
	return func(e *Engine) {
		e.maxExpansions = n
	}
}

// WithMaxDepth caps the firing depth of a backtracking search.
//
// Default: rules + 1, which no search can reach because a branch never
// reuses a rule.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		e.maxDepth = n
	}
}

// WithClassifier sets the classifier used to rank candidate rules against
// a goal. The package-level Run* helpers also normalize with it.
func WithClassifier(c rules.Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classify = c
		}
	}
}

// New creates an Engine over table. The table must not be mutated while the
// engine is in use; ir.RuleTable offers no mutators, so sharing is safe.
func New(table *ir.RuleTable, opts ...Option) *Engine {
	e := &Engine{
		table:    table,
		classify: rules.Classify,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.table == nil {
		e.table = ir.NewRuleTable(nil)
	}
	return e
}

// Table returns the engine's rule table.
func (e *Engine) Table() *ir.RuleTable {
	return e.table
}

// StepLimit returns the effective step budget.
func (e *Engine) StepLimit() int {
	if e.maxSteps > 0 {
		return e.maxSteps
	}
	return max(DefaultMaxSteps, 2*e.table.Len())
}

// ExpansionLimit returns the effective expansion budget.
func (e *Engine) ExpansionLimit() int {
	if e.maxExpansions > 0 {
		return e.maxExpansions
	}
	return max(DefaultMaxExpansions, 100*e.table.Len())
}

// DepthLimit returns the effective search depth.
func (e *Engine) DepthLimit() int {
	if e.maxDepth > 0 {
		return e.maxDepth
	}
	return e.table.Len() + 1
}

func (e *Engine) limits() ir.Limits {
	return ir.Limits{
		Steps:      e.StepLimit(),
		Expansions: e.ExpansionLimit(),
		Depth:      e.DepthLimit(),
	}
}

// Result is the outcome of one run.
type Result struct {
	Strategy ir.Strategy `json:"strategy"`
	Axioms   []ir.Symbol `json:"axioms"`
	Goals    []ir.Symbol `json:"goals"`
	Success  bool        `json:"success"`
	Failure  *Failure    `json:"failure,omitempty"`

	// FullTrace holds every rule fired, in derivation order.
	FullTrace ir.Trace `json:"full_trace"`
	// OptimalTrace is the minimized FullTrace; empty on failure.
	OptimalTrace ir.Trace `json:"optimal_trace"`
	// Dropped holds the rules of FullTrace that OptimalTrace left out.
	Dropped []string `json:"dropped,omitempty"`

	Limits      ir.Limits           `json:"limits"`
	Log         []ir.Snapshot       `json:"process_log"`
	Explanation explain.Explanation `json:"explanation"`
	Summary     string              `json:"success_text"`
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Record converts the result into a persistable run.
func (r Result) Record(id string, seq int64, rulebookHash string) ir.Run {
	run := ir.Run{
		ID:            id,
		Seq:           seq,
		Strategy:      r.Strategy,
		RulebookHash:  rulebookHash,
		Facts:         r.Axioms,
		Goals:         r.Goals,
		Success:       r.Success,
		FullTrace:     r.FullTrace,
		OptimalTrace:  r.OptimalTrace,
		Dropped:       r.Dropped,
		Limits:        r.Limits,
		Log:           r.Log,
		Summary:       r.Summary,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	if r.Failure != nil {
		run.FailureCode = string(r.Failure.Code)
		run.FailureSymbol = r.Failure.Symbol
		run.FailureMessage = r.Failure.Message
	}
	return run
}

// Run dispatches to the named strategy.
func (e *Engine) Run(strategy ir.Strategy, axioms, goals []ir.Symbol) (Result, error) {
	switch strategy {
	case ir.StrategyForward:
		return e.Forward(axioms, goals), nil
	case ir.StrategyBackward:
		return e.BackwardGreedy(axioms, goals), nil
	case ir.StrategySearch:
		return e.BackwardSearch(axioms, goals), nil
	default:
		return Result{}, fmt.Errorf("unknown strategy %q", strategy)
	}
}

// finish minimizes a successful trace and builds the explanation.
func (e *Engine) finish(strategy ir.Strategy, axioms, goals []ir.Symbol, full ir.Trace, log *processLog, failure *Failure) Result {
	if full == nil {
		full = ir.Trace{}
	}
	res := Result{
		Strategy:     strategy,
		Axioms:       axioms,
		Goals:        goals,
		Success:      failure == nil,
		Failure:      failure,
		FullTrace:    full,
		OptimalTrace: ir.Trace{},
		Limits:       e.limits(),
		Log:          log.entries,
	}

	if res.Success {
		m := trace.Minimize(full, e.table, axioms, goals)
		res.OptimalTrace = m.Optimal
		res.Dropped = m.Dropped
		slog.Debug("run succeeded",
			"strategy", strategy,
			"full", len(full),
			"optimal", len(m.Optimal),
			"dropped", len(m.Dropped))
	} else {
		slog.Debug("run failed",
			"strategy", strategy,
			"code", failure.Code,
			"symbol", failure.Symbol)
	}

	in := explain.Input{
		Strategy: strategy,
		Table:    e.table,
		Axioms:   axioms,
		Goals:    goals,
		Full:     res.FullTrace,
		Optimal:  res.OptimalTrace,
		Dropped:  res.Dropped,
		Success:  res.Success,
	}
	if failure != nil {
		in.Failure = failure.Error()
	}
	res.Explanation = explain.Build(in)
	res.Summary = res.Explanation.Summary
	return res
}

// fromRaw normalizes raw records with the classifier the options select.
func fromRaw(raws []ir.RawRule, opts []Option) *Engine {
	e := New(nil, opts...)
	table, rejected := rules.NewNormalizer(rules.WithClassifier(e.classify)).Normalize(raws)
	if len(rejected) > 0 {
		slog.Debug("rules dropped during normalization", "count", len(rejected))
	}
	e.table = table
	return e
}

// RunForward normalizes raw rules and runs forward chaining.
func RunForward(axioms, goals []string, raws []ir.RawRule, opts ...Option) Result {
	return fromRaw(raws, opts).Forward(ir.Symbols(axioms...), ir.Symbols(goals...))
}

// RunBackwardGreedy normalizes raw rules and runs greedy backward chaining.
func RunBackwardGreedy(axioms, goals []string, raws []ir.RawRule, opts ...Option) Result {
	return fromRaw(raws, opts).BackwardGreedy(ir.Symbols(axioms...), ir.Symbols(goals...))
}

// RunBackwardSearch normalizes raw rules and runs backtracking search.
func RunBackwardSearch(axioms, goals []string, raws []ir.RawRule, opts ...Option) Result {
	return fromRaw(raws, opts).BackwardSearch(ir.Symbols(axioms...), ir.Symbols(goals...))
}

// Options returns the options that reproduce the limits of a recorded run.
func Options(l ir.Limits) []Option {
	return []Option{
		WithMaxSteps(l.Steps),
		WithMaxExpansions(l.Expansions),
		WithMaxDepth(l.Depth),
	}
}

// Minimize prunes a full trace against raw rules.
func Minimize(full ir.Trace, raws []ir.RawRule, axioms, goals []string) ir.Trace {
	table, _ := rules.Normalize(raws)
	return trace.Minimize(full, table, rules.NormalizeSymbols(ir.Symbols(axioms...)), rules.NormalizeSymbols(ir.Symbols(goals...))).Optimal
}
