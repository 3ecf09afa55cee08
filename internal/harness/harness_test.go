package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deduce/internal/engine"
	"github.com/roach88/deduce/internal/ir"
)

func TestRun_TestdataScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_TriangleForward(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "triangle_forward.yaml"))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, "run-0001", result.Run.ID)
	assert.Equal(t, int64(1), result.Run.Seq)
	assert.Equal(t, ir.StrategyForward, result.Run.Strategy)
	assert.Equal(t, ir.Symbols("a", "b", "C"), result.Run.Facts, "facts come from the rulebook")
	assert.Equal(t, ir.Symbols("A"), result.Run.Goals)
	assert.NotEmpty(t, result.Run.RulebookHash)
	assert.Equal(t, ir.Limits{Steps: 100, Expansions: 10000, Depth: 3}, result.Run.Limits)
	assert.NotEmpty(t, result.Run.Log, "the process log is persisted")

	require.Len(t, result.Outcome.Explanation.Steps, 2)
	assert.Equal(t, "r1", result.Outcome.Explanation.Steps[0].Rule)
	assert.Equal(t, ir.Symbol("c"), result.Outcome.Explanation.Steps[0].Conclusion)
}

func TestRun_InlineRulesOnly(t *testing.T) {
	s := &Scenario{
		Name:     "inline",
		Strategy: "search",
		Rules: []RuleRecord{
			{ID: "r1", Premises: "a AND b", Conclusion: "c"},
			{ID: "r2", Premises: "c & C", Conclusion: "A"},
			{ID: "", Premises: "a", Conclusion: "z"},
		},
		Facts: []string{"a", "b", "C"},
		Goals: []string{"A"},
		Expect: &Expectation{
			FullTrace:    []string{"r1", "r2"},
			OptimalTrace: []string{"r1", "r2"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, ir.StrategySearch, result.Run.Strategy)
}

func TestRun_ExpectationMismatchFailsResult(t *testing.T) {
	pass := true
	s := &Scenario{
		Name:     "mismatch",
		Strategy: "backward",
		Rules:    []RuleRecord{{ID: "r1", Premises: "x", Conclusion: "g"}},
		Goals:    []string{"g"},
		Expect: &Expectation{
			Success:   &pass,
			Failure:   string(engine.CodeSearchExhausted),
			Symbol:    "g",
			FullTrace: []string{"r2"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err, "a mismatch is a failing result, not an error")
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "expected success=true, got false")
	assert.Contains(t, result.Errors[1], "expected failure SEARCH_EXHAUSTED")
	assert.Contains(t, result.Errors[2], `expected failure symbol g, got "x"`)
	assert.Contains(t, result.Errors[3], "expected full trace [r2], got [r1]")
}

func TestRun_BudgetOverride(t *testing.T) {
	s := &Scenario{
		Name:     "budget",
		Strategy: "forward",
		Rules: []RuleRecord{
			{ID: "r1", Premises: "a", Conclusion: "b"},
			{ID: "r2", Premises: "b", Conclusion: "c"},
		},
		Facts:    []string{"a"},
		Goals:    []string{"c"},
		MaxSteps: 1,
		Expect:   &Expectation{Failure: string(engine.CodeBudgetExceeded), Symbol: "c"},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Run.Limits.Steps)
}

func TestRun_MissingRulebook(t *testing.T) {
	s := &Scenario{
		Name:     "gone",
		Strategy: "forward",
		Rulebook: "does-not-exist.yaml",
		dir:      t.TempDir(),
	}

	_, err := Run(s)
	require.Error(t, err)
}

func TestHarness_SequentialRunIDs(t *testing.T) {
	h, err := New()
	require.NoError(t, err)
	defer h.Close()

	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "detour_search.yaml"))
	require.NoError(t, err)

	first, err := h.Run(context.Background(), s)
	require.NoError(t, err)
	second, err := h.Run(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, "run-0001", first.Run.ID)
	assert.Equal(t, "run-0002", second.Run.ID)
	assert.Equal(t, int64(2), second.Run.Seq)
	assert.Equal(t, first.Run.RulebookHash, second.Run.RulebookHash)
	assert.Equal(t, first.Run.FullTrace, second.Run.FullTrace)
}
