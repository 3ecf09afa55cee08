package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deduce/internal/store"
)

func TestReplay_AllVerified(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, NewReplayCommand(jsonOpts()), "--db", db)
	require.NoError(t, err)

	var result ReplayResult
	resp := decode(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Verified)
	require.Equal(t, 2, result.Total)
	for _, r := range result.Runs {
		assert.True(t, r.Deterministic, r.RunID)
		assert.True(t, r.Sound, r.RunID)
	}
	assert.True(t, result.Runs[0].Success)
	assert.False(t, result.Runs[1].Success)
}

func TestReplay_SingleRunText(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, NewReplayCommand(textOpts()), "--db", db, "--run", "run-b")
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 1 run(s)")
	assert.Contains(t, out, "✓ run-b (backward)")
	assert.Contains(t, out, "✓ All runs verified")
}

func TestReplay_DetectsTamperedTrace(t *testing.T) {
	db := seedDatabase(t)

	st, err := store.Open(db)
	require.NoError(t, err)
	_, err = st.DB().Exec(`UPDATE runs SET full_trace = '["r1","r5","r2"]' WHERE id = 'run-a'`)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, NewReplayCommand(jsonOpts()), "--db", db)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var result ReplayResult
		resp := decode(t, out, &result)
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeDeterminism, resp.Error.Code)
		assert.False(t, result.Verified)
		assert.False(t, result.Runs[0].Deterministic)
		assert.True(t, result.Runs[1].Deterministic)
	})

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, NewReplayCommand(textOpts()), "--db", db)
		require.Error(t, err)
		assert.Contains(t, out, "✗ run-a (forward)")
		assert.Contains(t, out, "Non-deterministic: stored r1 -> r5 -> r2, replayed r5 -> r1 -> r2")
		assert.Contains(t, out, "✗ Replay verification failed")
	})
}

func TestReplay_Errors(t *testing.T) {
	t.Run("unknown run", func(t *testing.T) {
		db := seedDatabase(t)
		out, err := execute(t, NewReplayCommand(jsonOpts()), "--db", db, "--run", "run-z")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))

		resp := decode(t, out, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("missing database", func(t *testing.T) {
		out, err := execute(t, NewReplayCommand(jsonOpts()), "--db", filepath.Join(t.TempDir(), "none.db"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))

		resp := decode(t, out, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeStore, resp.Error.Code)
	})
}
