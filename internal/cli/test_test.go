package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deduce/internal/harness"
)

const scenariosDir = "../harness/testdata/scenarios"

func TestTestCommand_WritesThenMatchesGolden(t *testing.T) {
	golden := t.TempDir()

	out, err := execute(t, NewTestCommand(textOpts()), scenariosDir, "--golden", golden)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ triangle_forward (golden file written)")
	assert.Contains(t, out, "Results: 9 passed, 0 failed, 9 total")
	assert.FileExists(t, filepath.Join(golden, "pruning.golden"))

	out, err = execute(t, NewTestCommand(textOpts()), scenariosDir, "--golden", golden)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ triangle_forward\n")
	assert.NotContains(t, out, "golden file written")
}

func TestTestCommand_JSON(t *testing.T) {
	out, err := execute(t, NewTestCommand(jsonOpts()), scenariosDir, "--no-golden")
	require.NoError(t, err)

	var result harness.SuiteResult
	resp := decode(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 9, result.Total)
	assert.Equal(t, 9, result.Passed)
	for _, s := range result.Scenarios {
		assert.Empty(t, s.Snapshot, s.Name)
	}
}

func TestTestCommand_Filter(t *testing.T) {
	out, err := execute(t, NewTestCommand(jsonOpts()), scenariosDir, "--no-golden", "--filter", "detour_*")
	require.NoError(t, err)

	var result harness.SuiteResult
	decode(t, out, &result)
	require.Equal(t, 2, result.Total)
	assert.Equal(t, "detour_greedy", result.Scenarios[0].Name)
	assert.Equal(t, "detour_search", result.Scenarios[1].Name)
}

func TestTestCommand_Failures(t *testing.T) {
	dir := t.TempDir()
	scenario := `name: wrong
description: expects a rule that never fires
strategy: forward
rules:
  - {id: r1, premises: a, conclusion: b}
facts: [a]
goals: [b]
expect:
  success: true
  full_trace: [r2]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(scenario), 0o644))

	out, err := execute(t, NewTestCommand(textOpts()), dir, "--no-golden")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "Results: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_Empty(t *testing.T) {
	out, err := execute(t, NewTestCommand(textOpts()), t.TempDir(), "--no-golden")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTestCommand_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		out, err := execute(t, NewTestCommand(jsonOpts()), filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))

		resp := decode(t, out, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("bad filter", func(t *testing.T) {
		_, err := execute(t, NewTestCommand(jsonOpts()), scenariosDir, "--filter", "[")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}
