package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/deduce/internal/engine"
	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestTable normalizes the triangle rulebook plus one rule the
// optimal trace drops.
func createTestTable(t *testing.T) *ir.RuleTable {
	t.Helper()
	table, rejected := rules.Normalize([]ir.RawRule{
		{ID: "r1", Left: "a, b", Right: "c"},
		{ID: "r2", Left: "c, C", Right: "A", Note: "angle from sides"},
		{ID: "r5", Left: "a", Right: "ha"},
	})
	if len(rejected) > 0 {
		t.Fatalf("unexpected rejections: %v", rejected)
	}
	return table
}

// createTestRun runs forward chaining over table and records the result.
func createTestRun(t *testing.T, table *ir.RuleTable, id string, seq int64) ir.Run {
	t.Helper()
	res := engine.New(table).Forward(ir.Symbols("a", "b", "C"), ir.Symbols("A"))
	if !res.Success {
		t.Fatalf("forward run failed: %v", res.Err())
	}
	return res.Record(id, seq, ir.MustRulebookHash(table))
}
