package ir

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareIDs(t *testing.T) {
	ids := []string{"r10", "10", "2", "r2", "b", "007", "7", "a"}
	slices.SortFunc(ids, CompareIDs)
	assert.Equal(t, []string{"2", "007", "7", "10", "a", "b", "r10", "r2"}, ids)
}

func TestCompareIDsTotal(t *testing.T) {
	assert.Equal(t, 0, CompareIDs("5", "5"))
	assert.NotEqual(t, 0, CompareIDs("05", "5"))
	assert.Equal(t, -CompareIDs("3", "12"), CompareIDs("12", "3"))
}

func TestRuleTable(t *testing.T) {
	table := NewRuleTable([]Rule{
		{ID: "10", Premises: []Symbol{"x"}, Conclusion: "c"},
		{ID: "2", Premises: []Symbol{"a", "b"}, Conclusion: "c"},
		{ID: "3", Premises: []Symbol{"c"}, Conclusion: "d"},
	})

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"2", "3", "10"}, table.IDs())

	concluding := table.Concluding("c")
	if assert.Len(t, concluding, 2) {
		assert.Equal(t, "2", concluding[0].ID)
		assert.Equal(t, "10", concluding[1].ID)
	}
	assert.Empty(t, table.Concluding("zz"))

	r, ok := table.Get("3")
	assert.True(t, ok)
	assert.Equal(t, Symbol("d"), r.Conclusion)

	_, ok = table.Get("missing")
	assert.False(t, ok)
}

func TestRuleTableLastIDWins(t *testing.T) {
	table := NewRuleTable([]Rule{
		{ID: "r1", Premises: []Symbol{"a"}, Conclusion: "b"},
		{ID: "r1", Premises: []Symbol{"x"}, Conclusion: "y"},
	})
	assert.Equal(t, 1, table.Len())
	r, _ := table.Get("r1")
	assert.Equal(t, Symbol("y"), r.Conclusion)
	assert.Empty(t, table.Concluding("b"))
}

func TestRuleTableIsImmutable(t *testing.T) {
	src := []Rule{{ID: "r1", Premises: []Symbol{"a"}, Conclusion: "b"}}
	table := NewRuleTable(src)
	src[0].Premises[0] = "mutated"

	r, _ := table.Get("r1")
	r.Premises[0] = "again"

	fresh, _ := table.Get("r1")
	assert.Equal(t, []Symbol{"a"}, fresh.Premises)
}

func TestNilRuleTable(t *testing.T) {
	var table *RuleTable
	assert.Equal(t, 0, table.Len())
	assert.Nil(t, table.IDs())
	assert.Nil(t, table.Rules())
	assert.Nil(t, table.Concluding("a"))
	_, ok := table.Get("r1")
	assert.False(t, ok)
}
