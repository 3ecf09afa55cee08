package trace

import (
	"slices"

	"github.com/roach88/deduce/internal/ir"
)

// Minimized is the outcome of pruning a full trace.
type Minimized struct {
	// Optimal holds the kept rules in their full-trace order.
	Optimal ir.Trace
	// Dropped holds fired rules whose conclusion nothing needed, in
	// full-trace order.
	Dropped []string
	// Unknown holds ids that are absent from the rule table.
	Unknown []string
}

// Minimize walks full from the most recent rule to the earliest, keeping a
// rule only when its conclusion is still needed. The needed set starts as
// the goals; each kept rule discharges its conclusion and adds those of its
// premises that are not axioms.
//
// The result is a stable filter of full. It is a single reachability pass
// under firing order, not a globally smallest cover: when two chains can
// each supply a shared sub-goal, the later one in full wins.
func Minimize(full ir.Trace, table *ir.RuleTable, axioms, goals []ir.Symbol) Minimized {
	known := ir.NewSymbolSet(axioms...)
	needed := ir.NewSymbolSet(goals...)
	keep := make([]bool, len(full))

	var unknown []string
	for i := len(full) - 1; i >= 0; i-- {
		rule, ok := table.Get(full[i])
		if !ok {
			unknown = append(unknown, full[i])
			continue
		}
		if !needed.Has(rule.Conclusion) {
			continue
		}
		keep[i] = true
		needed.Remove(rule.Conclusion)
		for _, p := range rule.Premises {
			if !known.Has(p) {
				needed.Add(p)
			}
		}
	}
	slices.Reverse(unknown)

	m := Minimized{Optimal: ir.Trace{}, Unknown: unknown}
	for i, id := range full {
		switch {
		case keep[i]:
			m.Optimal = append(m.Optimal, id)
		case !slices.Contains(unknown, id):
			m.Dropped = append(m.Dropped, id)
		}
	}
	return m
}

// IsSubsequence reports whether sub appears in full in the same relative
// order.
func IsSubsequence(sub, full ir.Trace) bool {
	j := 0
	for _, id := range full {
		if j < len(sub) && sub[j] == id {
			j++
		}
	}
	return j == len(sub)
}

// Duplicates returns the ids occurring more than once in t, in order of
// their second occurrence.
func Duplicates(t ir.Trace) []string {
	seen := make(map[string]int, len(t))
	var dups []string
	for _, id := range t {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}
