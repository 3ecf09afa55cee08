package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
)

func TestEngine_New_Defaults(t *testing.T) {
	e := New(nil)
	require.NotNil(t, e.Table())
	assert.Equal(t, 0, e.Table().Len())
	assert.Equal(t, DefaultMaxSteps, e.StepLimit())
	assert.Equal(t, DefaultMaxExpansions, e.ExpansionLimit())
	assert.Equal(t, 1, e.DepthLimit())
}

func TestEngine_LimitsScaleWithTable(t *testing.T) {
	var raws []ir.RawRule
	for i := 0; i < 150; i++ {
		raws = append(raws, raw(string(rune('a'+i%26))+string(rune('0'+i/26)), "p", "q"))
	}
	e := New(mustTable(t, raws...))

	assert.Equal(t, 300, e.StepLimit())
	assert.Equal(t, 15000, e.ExpansionLimit())
	assert.Equal(t, 151, e.DepthLimit())
}

func TestEngine_Options(t *testing.T) {
	e := New(nil, WithMaxSteps(7), WithMaxExpansions(8), WithMaxDepth(9))
	assert.Equal(t, 7, e.StepLimit())
	assert.Equal(t, 8, e.ExpansionLimit())
	assert.Equal(t, 9, e.DepthLimit())
}

func TestEngine_WithClassifier(t *testing.T) {
	// Rank "B" as edge-like so the edge rule wins over the shorter angle rule.
	table := ir.NewRuleTable([]ir.Rule{
		{ID: "1", Premises: syms("a", "b"), Conclusion: "B", Category: ir.CategoryEdge},
		{ID: "2", Premises: syms("a"), Conclusion: "B", Category: ir.CategoryAngle},
	})
	edgeOnly := func(ir.Symbol) ir.Category { return ir.CategoryEdge }

	res := New(table, WithClassifier(edgeOnly)).BackwardGreedy(syms("a", "b"), syms("B"))
	require.True(t, res.Success)
	assert.Equal(t, ir.Trace{"1"}, res.FullTrace)

	res = New(table).BackwardGreedy(syms("a", "b"), syms("B"))
	require.True(t, res.Success)
	assert.Equal(t, ir.Trace{"2"}, res.FullTrace)
}

func TestEngine_Run_Dispatch(t *testing.T) {
	e := New(mustTable(t, triangleRules()...))

	for _, s := range ir.ValidStrategies {
		res, err := e.Run(s, syms("a", "b", "C"), syms("A"))
		require.NoError(t, err)
		assert.Equal(t, s, res.Strategy)
		assert.True(t, res.Success)
		assert.Equal(t, ir.Trace{"r1", "r2"}, res.OptimalTrace)
	}

	_, err := e.Run("sideways", nil, nil)
	assert.ErrorContains(t, err, "unknown strategy")
}

func TestRunForward_RawRecords(t *testing.T) {
	raws := []ir.RawRule{
		{ID: "r1", Left: "a & b", Right: "c"},
		{ID: "r2", Left: "c AND C", Right: "A"},
		{ID: "", Left: "a", Right: "z"},
		{ID: "r9", Left: " ; ", Right: "z"},
	}

	res := RunForward([]string{"a", "b", "C", " "}, []string{"A"}, raws)
	require.True(t, res.Success)
	assert.Equal(t, ir.Trace{"r1", "r2"}, res.OptimalTrace)

	res = RunBackwardGreedy([]string{"a", "b", "C"}, []string{"A"}, raws)
	require.True(t, res.Success)
	assert.Equal(t, ir.Trace{"r1", "r2"}, res.FullTrace)

	res = RunBackwardSearch([]string{"a", "b", "C"}, []string{"A"}, raws)
	require.True(t, res.Success)
	assert.Equal(t, ir.Trace{"r1", "r2"}, res.FullTrace)
	assert.Equal(t, "derive c from a, b", res.Explanation.Steps[0].Note)
}

func TestRunBackwardSearch_ClassifierOption(t *testing.T) {
	raws := []ir.RawRule{{ID: "1", Left: "a", Right: "Q"}}
	angle := rules.LookupClassifier([]ir.Symbol{"Q"}, nil)

	res := RunBackwardSearch([]string{"a"}, []string{"Q"}, raws, WithClassifier(angle))
	require.True(t, res.Success)
	assert.Equal(t, ir.CategoryEdge, res.Explanation.Steps[0].Category)
}

func TestMinimize_Facade(t *testing.T) {
	raws := append(triangleRules(), raw("r5", "a", "ha"))
	got := Minimize(ir.Trace{"r5", "r1", "r2"}, raws, []string{"a", "b", "C"}, []string{"A"})
	assert.Equal(t, ir.Trace{"r1", "r2"}, got)
}

func TestResult_Record(t *testing.T) {
	e := New(mustTable(t, triangleRules()...))
	res := e.Forward(syms("a", "b", "C"), syms("A"))

	run := res.Record("run-1", 7, "hash")
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, int64(7), run.Seq)
	assert.Equal(t, ir.StrategyForward, run.Strategy)
	assert.Equal(t, "hash", run.RulebookHash)
	assert.True(t, run.Success)
	assert.Empty(t, run.FailureCode)
	assert.Equal(t, res.FullTrace, run.FullTrace)
	assert.Equal(t, res.Log, run.Log)
	assert.Equal(t, ir.EngineVersion, run.EngineVersion)
	assert.Equal(t, ir.IRVersion, run.IRVersion)
	assert.Equal(t, ir.Limits{Steps: 100, Expansions: 10000, Depth: 3}, run.Limits)

	failed := New(nil).BackwardSearch(syms("a"), syms("B")).Record("run-2", 8, "h")
	assert.False(t, failed.Success)
	assert.Equal(t, string(CodeNoApplicableRule), failed.FailureCode)
	assert.Equal(t, ir.Symbol("B"), failed.FailureSymbol)
	assert.NotEmpty(t, failed.FailureMessage)
}

func TestOptions_ReproduceLimits(t *testing.T) {
	limits := ir.Limits{Steps: 3, Expansions: 40, Depth: 2}
	e := New(mustTable(t, triangleRules()...), Options(limits)...)

	assert.Equal(t, 3, e.StepLimit())
	assert.Equal(t, 40, e.ExpansionLimit())
	assert.Equal(t, 2, e.DepthLimit())
	assert.Equal(t, limits, e.Forward(syms("a"), syms("A")).Limits)
}

func TestEngine_ParallelRuns(t *testing.T) {
	e := New(mustTable(t, branchRules()...))

	const workers = 16
	var wg sync.WaitGroup
	results := make([]Result, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			strategy := ir.ValidStrategies[i%len(ir.ValidStrategies)]
			results[i], _ = e.Run(strategy, syms("a"), syms("g"))
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		want, _ := e.Run(res.Strategy, syms("a"), syms("g"))
		assert.Equal(t, want.FullTrace, res.FullTrace, "worker %d", i)
		assert.Equal(t, want.Success, res.Success, "worker %d", i)
		assert.Equal(t, want.Summary, res.Summary, "worker %d", i)
	}
}
