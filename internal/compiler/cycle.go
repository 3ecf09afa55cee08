package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/deduce/internal/graph"
	"github.com/roach88/deduce/internal/ir"
)

// CycleWarning represents a cycle in the rule precedence graph.
//
// Cycles are warnings, not errors: every engine terminates on cyclic
// rulebooks, but the backward engines spend budget on them and the greedy
// engine may fail where the search succeeds.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["r1", "r2", "r1"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeCycles reports every strongly connected component of the rule
// graph that contains a cycle. A rule consuming its own conclusion is a
// self-loop and is reported at info level; longer cycles are warnings.
//
// An acyclic table returns an empty list.
func AnalyzeCycles(table *ir.RuleTable) []CycleWarning {
	warnings := []CycleWarning{}
	if table.Len() == 0 {
		return warnings
	}

	g := graph.NewRuleGraph(table, nil)
	for _, path := range g.Cycles() {
		warnings = append(warnings, cycleToWarning(table, path))
	}
	return warnings
}

func cycleToWarning(table *ir.RuleTable, path []string) CycleWarning {
	if len(path) == 2 {
		r, _ := table.Get(path[0])
		return CycleWarning{
			Path:    path,
			Message: fmt.Sprintf("rule %s concludes %s, which is one of its own premises", path[0], r.Conclusion),
			Level:   "info",
		}
	}

	syms := make([]string, 0, len(path)-1)
	for _, id := range path[:len(path)-1] {
		r, _ := table.Get(id)
		syms = append(syms, string(r.Conclusion))
	}
	return CycleWarning{
		Path: path,
		Message: fmt.Sprintf("rules %s form a cycle through %s",
			strings.Join(path, " -> "), strings.Join(syms, ", ")),
		Level: "warning",
	}
}
