package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes the trace it was evaluated against.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Trace    ir.Trace // Trace the assertion read
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "  Trace: %s\n", e.Trace)

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the messages of
// the failing ones.
func EvaluateAssertions(result *Result, assertions []Assertion, table *ir.RuleTable) []string {
	var errs []string
	for i, a := range assertions {
		t := result.selectTrace(a.Trace)

		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(t, a)
		case AssertTraceOrder:
			err = assertTraceOrder(t, a)
		case AssertTraceCount:
			err = assertTraceCount(t, a)
		case AssertDerives:
			err = assertDerives(t, a, table, result.Run.Facts)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertTraceContains checks that the rule was fired.
func assertTraceContains(t ir.Trace, a Assertion) error {
	if t.Contains(a.Rule) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("rule %s in trace", a.Rule),
		Actual:   "not found in trace",
		Trace:    t,
	}
}

// assertTraceOrder checks that rules appear in the specified order.
// Rules don't need to be consecutive.
func assertTraceOrder(t ir.Trace, a Assertion) error {
	positions := make(map[string]int)
	for i, id := range t {
		if _, seen := positions[id]; !seen {
			positions[id] = i + 1 // 1-indexed for readability
		}
	}

	for _, id := range a.Rules {
		if positions[id] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all rules present: %v", a.Rules),
				Actual:   fmt.Sprintf("missing rule: %s", id),
				Trace:    t,
			}
		}
	}

	for i := 1; i < len(a.Rules); i++ {
		prev, curr := a.Rules[i-1], a.Rules[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("rules in order: %v", a.Rules),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: t,
			}
		}
	}

	return nil
}

// assertTraceCount checks the trace length, or the occurrences of a.Rule
// when it is set.
func assertTraceCount(t ir.Trace, a Assertion) error {
	count := len(t)
	what := "rules"
	if a.Rule != "" {
		count = 0
		for _, id := range t {
			if id == a.Rule {
				count++
			}
		}
		what = "occurrences of " + a.Rule
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d %s", a.Count, what),
			Actual:   fmt.Sprintf("%d %s", count, what),
			Trace:    t,
		}
	}
	return nil
}

// assertDerives replays the trace from the facts and checks the symbol is
// among the derived ones.
func assertDerives(t ir.Trace, a Assertion, table *ir.RuleTable, facts []ir.Symbol) error {
	known, err := trace.Replay(t, table, facts, nil)
	if err != nil {
		return &AssertionError{
			Type:     AssertDerives,
			Expected: fmt.Sprintf("trace replays and derives %s", a.Symbol),
			Actual:   err.Error(),
			Trace:    t,
		}
	}
	if !known.Has(ir.Symbol(a.Symbol)) {
		return &AssertionError{
			Type:     AssertDerives,
			Expected: fmt.Sprintf("%s derived", a.Symbol),
			Actual:   fmt.Sprintf("known = {%s}", ir.JoinSymbols(known.Sorted(), ", ")),
			Trace:    t,
		}
	}
	return nil
}
