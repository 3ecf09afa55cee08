package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deduce/internal/engine"
	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/store"
)

func TestRun_ForwardText(t *testing.T) {
	out, err := execute(t, NewRunCommand(textOpts()), testdata("triangle.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "SUCCESS (forward)")
	assert.Contains(t, out, "Full trace (3 rules): r5 -> r1 -> r2")
	assert.Contains(t, out, "Optimal trace (2 rules): r1 -> r2")
	assert.Contains(t, out, "Dropped (not needed): r5")
	assert.Contains(t, out, "third side from the two adjacent sides")
	assert.NotContains(t, out, "Process log:")
}

func TestRun_VerboseShowsLog(t *testing.T) {
	opts := &RootOptions{Format: "text", Verbose: true}
	out, err := execute(t, NewRunCommand(opts), testdata("triangle.yaml"), "--strategy", "backward")
	require.NoError(t, err)

	assert.Contains(t, out, "Process log:")
	assert.Contains(t, out, "replace A with [c, C]")
	assert.Contains(t, out, "SUCCESS (backward)")
}

func TestRun_JSON(t *testing.T) {
	out, err := execute(t, NewRunCommand(jsonOpts()), testdata("detour.cue"), "--strategy", "search")
	require.NoError(t, err)

	var result RunOutput
	resp := decode(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.RunID)
	assert.Equal(t, "detour", result.Rulebook)
	assert.True(t, result.Result.Success)
	assert.Equal(t, ir.StrategySearch, result.Result.Strategy)
	assert.Equal(t, ir.Trace{"r2"}, result.Result.FullTrace)
	assert.Equal(t, ir.Trace{"r2"}, result.Result.OptimalTrace)
}

func TestRun_NoProof(t *testing.T) {
	out, err := execute(t, NewRunCommand(jsonOpts()), testdata("detour.cue"), "--strategy", "backward")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result RunOutput
	resp := decode(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(engine.CodeNoApplicableRule), resp.Error.Code)
	assert.False(t, result.Result.Success)
	assert.Equal(t, ir.Symbol("x"), result.Result.Failure.Symbol)
	assert.Equal(t, ir.Trace{"r1"}, result.Result.FullTrace)
}

func TestRun_NoProofText(t *testing.T) {
	out, err := execute(t, NewRunCommand(textOpts()), testdata("triangle.yaml"), "--facts", "a", "--goals", "B")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAILURE (forward)")
	assert.Contains(t, out, "Reason: NO_APPLICABLE_RULE")
}

func TestRun_BudgetFlag(t *testing.T) {
	out, err := execute(t, NewRunCommand(jsonOpts()), testdata("triangle.yaml"), "--max-steps", "1")
	require.Error(t, err)

	var result RunOutput
	resp := decode(t, out, &result)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(engine.CodeBudgetExceeded), resp.Error.Code)
	assert.Equal(t, 1, result.Result.Limits.Steps)
}

func TestRun_CommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"bad strategy", []string{testdata("triangle.yaml"), "--strategy", "sideways"}, ErrCodeInvalidFlag},
		{"negative budget", []string{testdata("triangle.yaml"), "--max-depth", "-1"}, ErrCodeInvalidFlag},
		{"missing rulebook", []string{testdata("missing.yaml")}, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewRunCommand(jsonOpts()), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decode(t, out, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestRun_NoGoals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nogoals.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - {id: r1, premises: a, conclusion: b}\n"), 0o644))

	out, err := execute(t, NewRunCommand(jsonOpts()), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decode(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidFlag, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "no goals")
}

func TestRun_PersistsRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	opts := &RunOptions{RootOptions: jsonOpts(), IDs: engine.NewFixedGenerator("run-a", "run-b")}
	first := newRunCommandWith(opts)
	out, err := execute(t, first, testdata("triangle.yaml"), "--db", db)
	require.NoError(t, err)
	resp := decode(t, out, nil)
	assert.Equal(t, "run-a", resp.RunID)

	second := newRunCommandWith(opts)
	_, err = execute(t, second, testdata("detour.cue"), "--strategy", "backward", "--db", db)
	require.Error(t, err, "a failed proof is stored too")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-a", runs[0].ID)
	assert.Equal(t, int64(1), runs[0].Seq)
	assert.True(t, runs[0].Success)
	assert.Equal(t, ir.Trace{"r1", "r2"}, runs[0].OptimalTrace)
	assert.Equal(t, "run-b", runs[1].ID)
	assert.Equal(t, int64(2), runs[1].Seq)
	assert.False(t, runs[1].Success)
	assert.Equal(t, string(engine.CodeNoApplicableRule), runs[1].FailureCode)
}
