package engine

import (
	"cmp"
	"slices"

	"github.com/roach88/deduce/internal/ir"
)

// candidates returns the unused rules concluding goal, best first:
// rules whose category matches the goal's classification, then fewer
// premises, then id order.
func (e *Engine) candidates(goal ir.Symbol, used *ExclusionSet) []ir.Rule {
	want := e.classify(goal)
	var out []ir.Rule
	for _, r := range e.table.Concluding(goal) {
		if used.Has(r.ID) {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b ir.Rule) int {
		if c := cmp.Compare(mismatch(a.Category, want), mismatch(b.Category, want)); c != 0 {
			return c
		}
		if c := cmp.Compare(len(a.Premises), len(b.Premises)); c != 0 {
			return c
		}
		return ir.CompareIDs(a.ID, b.ID)
	})
	return out
}

func mismatch(a, b ir.Category) int {
	if a == b {
		return 0
	}
	return 1
}

// forwardOrder returns every rule ordered by premise count, then id.
func forwardOrder(t *ir.RuleTable) []ir.Rule {
	out := t.Rules()
	slices.SortStableFunc(out, func(a, b ir.Rule) int {
		if c := cmp.Compare(len(a.Premises), len(b.Premises)); c != 0 {
			return c
		}
		return ir.CompareIDs(a.ID, b.ID)
	})
	return out
}

// openGoals returns the goals not among the axioms, sorted.
func openGoals(goals, axioms ir.SymbolSet) []ir.Symbol {
	return axioms.Missing(goals)
}

// reduce returns a copy of goals with goal replaced by the premises of r
// that are not axioms.
func reduce(goals ir.SymbolSet, goal ir.Symbol, r ir.Rule, axioms ir.SymbolSet) ir.SymbolSet {
	next := goals.Clone()
	next.Remove(goal)
	for _, p := range r.Premises {
		if !axioms.Has(p) {
			next.Add(p)
		}
	}
	return next
}

// processLog accumulates snapshots, numbering them from 0.
type processLog struct {
	entries []ir.Snapshot
}

func (l *processLog) add(s ir.Snapshot) {
	s.Step = len(l.entries)
	if s.Set == nil {
		s.Set = []ir.Symbol{}
	}
	s.Trace = slices.Clone(s.Trace)
	if s.Trace == nil {
		s.Trace = ir.Trace{}
	}
	l.entries = append(l.entries, s)
}
