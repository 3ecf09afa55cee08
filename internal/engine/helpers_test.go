package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
)

func raw(id, left, right string) ir.RawRule {
	return ir.RawRule{ID: id, Left: left, Right: right}
}

func mustTable(t *testing.T, raws ...ir.RawRule) *ir.RuleTable {
	t.Helper()
	table, rejected := rules.Normalize(raws)
	require.Empty(t, rejected, "test rules must be well formed")
	return table
}

func syms(values ...string) []ir.Symbol {
	return ir.Symbols(values...)
}

// triangleRules is the basic two-step chain a, b -> c; c, C -> A.
func triangleRules() []ir.RawRule {
	return []ir.RawRule{
		raw("r1", "a, b", "c"),
		raw("r2", "c ∧ C", "A"),
	}
}

// detourRules offer a one-premise rule for g whose premise nothing can
// produce, and a two-premise rule that works.
func detourRules() []ir.RawRule {
	return []ir.RawRule{
		raw("r1", "x", "g"),
		raw("r2", "a AND b", "g"),
	}
}

// branchRules force search to retry rM on a second branch.
func branchRules() []ir.RawRule {
	return []ir.RawRule{
		raw("rA", "m, n", "g"),
		raw("rB", "m, k", "g"),
		raw("rM", "a", "m"),
		raw("rK", "a", "k"),
	}
}
