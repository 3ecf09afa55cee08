package trace

import (
	"fmt"

	"github.com/roach88/deduce/internal/ir"
)

// ReplayError reports why a trace does not derive its goals.
type ReplayError struct {
	Index   int    // position of the offending rule, -1 for missing goals
	Rule    string // offending rule id
	Missing []ir.Symbol
}

func (e *ReplayError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("replay: goals not derived: %s", ir.JoinSymbols(e.Missing, ", "))
	case len(e.Missing) == 0:
		return fmt.Sprintf("replay: step %d: unknown rule %q", e.Index, e.Rule)
	default:
		return fmt.Sprintf("replay: step %d: rule %s fired without premises %s",
			e.Index, e.Rule, ir.JoinSymbols(e.Missing, ", "))
	}
}

// Replay fires the rules of t in order starting from the axioms. Every
// rule must have all its premises known when it fires, and every goal must
// be known at the end. It returns the final known set.
func Replay(t ir.Trace, table *ir.RuleTable, axioms, goals []ir.Symbol) (ir.SymbolSet, error) {
	known := ir.NewSymbolSet(axioms...)
	for i, id := range t {
		rule, ok := table.Get(id)
		if !ok {
			return known, &ReplayError{Index: i, Rule: id}
		}
		if missing := known.Missing(ir.NewSymbolSet(rule.Premises...)); len(missing) > 0 {
			return known, &ReplayError{Index: i, Rule: id, Missing: missing}
		}
		known.Add(rule.Conclusion)
	}
	if missing := known.Missing(ir.NewSymbolSet(goals...)); len(missing) > 0 {
		return known, &ReplayError{Index: -1, Missing: missing}
	}
	return known, nil
}
