package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/deduce/internal/compiler"
	"github.com/roach88/deduce/internal/engine"
	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
	"github.com/roach88/deduce/internal/store"
	"github.com/roach88/deduce/internal/testutil"
)

// Harness executes scenarios against one scratch store with deterministic
// run ids and seq values.
type Harness struct {
	store *store.Store
	clock *testutil.DeterministicClock
	ids   engine.RunIDGenerator
}

// New creates a harness over a fresh in-memory store.
func New() (*Harness, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	return &Harness{
		store: st,
		clock: testutil.NewDeterministicClock(),
		ids:   testutil.NewSequentialRunIDGenerator("run"),
	}, nil
}

// Close releases the scratch store.
func (h *Harness) Close() error {
	return h.store.Close()
}

// Run executes a test scenario in a fresh harness and returns the result.
func Run(scenario *Scenario) (*Result, error) {
	h, err := New()
	if err != nil {
		return nil, err
	}
	defer h.Close()
	return h.Run(context.Background(), scenario)
}

// Run executes one scenario.
//
// Execution flow:
//  1. Load the rulebook and append inline rules
//  2. Normalize and run the selected strategy
//  3. Persist the run and read it back
//  4. Check expectations, assertions and, on success, the trace laws
//
// An error is returned only when the scenario cannot be executed; a run
// that does not match the scenario yields a failing Result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	strategy, err := ir.ParseStrategy(scenario.Strategy)
	if err != nil {
		return nil, err
	}

	book := &ir.Rulebook{}
	if path := scenario.RulebookPath(); path != "" {
		book, err = compiler.LoadFile(path)
		if err != nil {
			return nil, err
		}
	}
	raws := append(slices.Clone(book.Rules), scenario.rawRules()...)

	facts := ir.Symbols(scenario.Facts...)
	if len(facts) == 0 {
		facts = book.Facts
	}
	goals := ir.Symbols(scenario.Goals...)
	if len(goals) == 0 {
		goals = book.Goals
	}

	table, rejected := rules.Normalize(raws)
	for _, r := range rejected {
		slog.Debug("scenario rule dropped", "scenario", scenario.Name, "rule", r.String())
	}

	var opts []engine.Option
	if scenario.MaxSteps > 0 {
		opts = append(opts, engine.WithMaxSteps(scenario.MaxSteps))
	}
	if scenario.MaxDepth > 0 {
		opts = append(opts, engine.WithMaxDepth(scenario.MaxDepth))
	}
	eng := engine.New(table, opts...)

	outcome, err := eng.Run(strategy, facts, goals)
	if err != nil {
		return nil, err
	}

	hash, err := ir.RulebookHash(table)
	if err != nil {
		return nil, err
	}
	record := outcome.Record(h.ids.Generate(), h.clock.Next(), hash)
	if err := h.store.WriteRun(ctx, record, table); err != nil {
		return nil, fmt.Errorf("persist run: %w", err)
	}
	stored, err := h.store.ReadRun(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("read back run: %w", err)
	}

	result := NewResult()
	result.Run = stored
	result.Outcome = outcome

	if err := checkRoundTrip(record, stored); err != nil {
		result.AddError(err.Error())
	}
	for _, msg := range checkExpectation(scenario.Expect, stored) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, table) {
		result.AddError(msg)
	}
	if stored.Success {
		for _, msg := range CheckLaws(stored, table) {
			result.AddError(msg)
		}
	}

	slog.Debug("scenario executed",
		"scenario", scenario.Name,
		"strategy", strategy,
		"success", stored.Success,
		"pass", result.Pass)
	return result, nil
}

// checkRoundTrip compares the outcome digests of the recorded and the
// stored run.
func checkRoundTrip(recorded, stored ir.Run) error {
	want, err := ir.OutcomeHash(recorded)
	if err != nil {
		return err
	}
	got, err := ir.OutcomeHash(stored)
	if err != nil {
		return err
	}
	if want != got {
		return fmt.Errorf("stored run %s does not match the recorded outcome", stored.ID)
	}
	return nil
}

// checkExpectation compares the run against the expect clause.
func checkExpectation(exp *Expectation, run ir.Run) []string {
	if exp == nil {
		return nil
	}

	var errs []string
	if exp.Success != nil && *exp.Success != run.Success {
		errs = append(errs, fmt.Sprintf("expected success=%t, got %t (%s)", *exp.Success, run.Success, run.FailureMessage))
	}
	if exp.Failure != "" && exp.Failure != run.FailureCode {
		errs = append(errs, fmt.Sprintf("expected failure %s, got %q", exp.Failure, run.FailureCode))
	}
	if exp.Symbol != "" && ir.Symbol(exp.Symbol) != run.FailureSymbol {
		errs = append(errs, fmt.Sprintf("expected failure symbol %s, got %q", exp.Symbol, run.FailureSymbol))
	}
	if exp.FullTrace != nil && !slices.Equal(exp.FullTrace, []string(run.FullTrace)) {
		errs = append(errs, fmt.Sprintf("expected full trace %v, got %v", exp.FullTrace, []string(run.FullTrace)))
	}
	if exp.OptimalTrace != nil && !slices.Equal(exp.OptimalTrace, []string(run.OptimalTrace)) {
		errs = append(errs, fmt.Sprintf("expected optimal trace %v, got %v", exp.OptimalTrace, []string(run.OptimalTrace)))
	}
	if exp.Dropped != nil && !slices.Equal(exp.Dropped, run.Dropped) {
		errs = append(errs, fmt.Sprintf("expected dropped %v, got %v", exp.Dropped, run.Dropped))
	}
	return errs
}
