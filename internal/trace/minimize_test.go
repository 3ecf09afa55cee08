package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/deduce/internal/ir"
)

func triangle() *ir.RuleTable {
	return ir.NewRuleTable([]ir.Rule{
		{ID: "r1", Premises: []ir.Symbol{"a", "b"}, Conclusion: "c"},
		{ID: "r2", Premises: []ir.Symbol{"c", "C"}, Conclusion: "A"},
		{ID: "r5", Premises: []ir.Symbol{"a"}, Conclusion: "ha"},
		{ID: "r6", Premises: []ir.Symbol{"ha"}, Conclusion: "c"},
	})
}

var (
	axioms = []ir.Symbol{"a", "b", "C"}
	goals  = []ir.Symbol{"A"}
)

func TestMinimize_DropsByproduct(t *testing.T) {
	m := Minimize(ir.Trace{"r5", "r1", "r2"}, triangle(), axioms, goals)
	assert.Equal(t, ir.Trace{"r1", "r2"}, m.Optimal)
	assert.Equal(t, []string{"r5"}, m.Dropped)
	assert.Empty(t, m.Unknown)
}

func TestMinimize_KeepsChain(t *testing.T) {
	m := Minimize(ir.Trace{"r5", "r6", "r2"}, triangle(), axioms, goals)
	assert.Equal(t, ir.Trace{"r5", "r6", "r2"}, m.Optimal)
	assert.Empty(t, m.Dropped)
}

func TestMinimize_LaterProducerWins(t *testing.T) {
	// Both r1 and r6 conclude c; the walk meets r6 first and discharges c.
	m := Minimize(ir.Trace{"r1", "r5", "r6", "r2"}, triangle(), axioms, goals)
	assert.Equal(t, ir.Trace{"r5", "r6", "r2"}, m.Optimal)
	assert.Equal(t, []string{"r1"}, m.Dropped)
}

func TestMinimize_IsStableFilter(t *testing.T) {
	table := ir.NewRuleTable([]ir.Rule{
		{ID: "2", Premises: []ir.Symbol{"a"}, Conclusion: "x"},
		{ID: "1", Premises: []ir.Symbol{"a"}, Conclusion: "y"},
		{ID: "3", Premises: []ir.Symbol{"x", "y"}, Conclusion: "z"},
	})
	m := Minimize(ir.Trace{"2", "1", "3"}, table, []ir.Symbol{"a"}, []ir.Symbol{"z"})
	assert.Equal(t, ir.Trace{"2", "1", "3"}, m.Optimal, "order follows the full trace, not id order")
}

func TestMinimize_Idempotent(t *testing.T) {
	full := ir.Trace{"r1", "r5", "r6", "r2"}
	first := Minimize(full, triangle(), axioms, goals)
	second := Minimize(first.Optimal, triangle(), axioms, goals)
	assert.Equal(t, first.Optimal, second.Optimal)
	assert.Empty(t, second.Dropped)
}

func TestMinimize_UnknownIDs(t *testing.T) {
	m := Minimize(ir.Trace{"zz", "r1", "r2", "yy"}, triangle(), axioms, goals)
	assert.Equal(t, ir.Trace{"r1", "r2"}, m.Optimal)
	assert.Empty(t, m.Dropped)
	assert.Equal(t, []string{"zz", "yy"}, m.Unknown)
}

func TestMinimize_Empty(t *testing.T) {
	m := Minimize(nil, triangle(), axioms, goals)
	assert.Equal(t, ir.Trace{}, m.Optimal)
	assert.Empty(t, m.Dropped)
}

func TestMinimize_AxiomPremisesNotNeeded(t *testing.T) {
	// r1's premises are axioms, so a rule concluding one of them is dropped.
	table := ir.NewRuleTable([]ir.Rule{
		{ID: "ra", Premises: []ir.Symbol{"b"}, Conclusion: "a"},
		{ID: "r1", Premises: []ir.Symbol{"a", "b"}, Conclusion: "c"},
	})
	m := Minimize(ir.Trace{"ra", "r1"}, table, []ir.Symbol{"a", "b"}, []ir.Symbol{"c"})
	assert.Equal(t, ir.Trace{"r1"}, m.Optimal)
	assert.Equal(t, []string{"ra"}, m.Dropped)
}

func TestIsSubsequence(t *testing.T) {
	full := ir.Trace{"r5", "r1", "r2"}
	assert.True(t, IsSubsequence(ir.Trace{"r1", "r2"}, full))
	assert.True(t, IsSubsequence(nil, full))
	assert.True(t, IsSubsequence(full, full))
	assert.False(t, IsSubsequence(ir.Trace{"r2", "r1"}, full))
	assert.False(t, IsSubsequence(ir.Trace{"r9"}, full))
}

func TestDuplicates(t *testing.T) {
	assert.Empty(t, Duplicates(ir.Trace{"r1", "r2"}))
	assert.Equal(t, []string{"r1"}, Duplicates(ir.Trace{"r1", "r2", "r1", "r1"}))
}
