package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
)

// searcher holds the state of one backtracking run. Goal sets are
// per-frame values: a frame never mutates the set it received, so undo
// only has to unmark the rule and pop the path.
type searcher struct {
	e        *Engine
	known    ir.SymbolSet
	used     *ExclusionSet
	quota    *Quota
	maxDepth int
	path     ir.Trace // firing order
	log      *processLog

	truncated bool // some branch hit the depth limit
	expanded  bool // at least one rule was tried
}

// BackwardSearch is backtracking goal reduction. It picks the smallest
// unproved goal, tries its unused rules in ranked order and undoes a
// firing whose sub-search fails. Exhausting every candidate of the root
// goal fails with SEARCH_EXHAUSTED; a root goal with no rule at all fails
// with NO_APPLICABLE_RULE; a search cut short by the expansion or depth
// limit fails with BUDGET_EXCEEDED.
func (e *Engine) BackwardSearch(axioms, goals []ir.Symbol) Result {
	axioms = rules.NormalizeSymbols(axioms)
	goals = rules.NormalizeSymbols(goals)

	s := &searcher{
		e:        e,
		known:    ir.NewSymbolSet(axioms...),
		used:     NewExclusionSet(),
		quota:    NewQuota(BudgetExpansions, e.ExpansionLimit()),
		maxDepth: e.DepthLimit(),
		log:      &processLog{},
	}
	root := ir.NewSymbolSet(goals...)
	s.log.add(ir.Snapshot{
		Action: ir.ActionInit,
		Set:    root.Sorted(),
		Note:   fmt.Sprintf("goals = {%s}, known = {%s}", ir.JoinSymbols(root.Sorted(), ", "), ir.JoinSymbols(s.known.Sorted(), ", ")),
	})

	ok, err := s.prove(root, 0)
	if ok {
		s.log.add(ir.Snapshot{Action: ir.ActionDone, Trace: s.path, Note: "every goal reduced to known facts"})
		return e.finish(ir.StrategySearch, axioms, goals, s.path.Reversed(), s.log, nil)
	}

	var first ir.Symbol
	if open := openGoals(root, s.known); len(open) > 0 {
		first = open[0]
	}

	var f *Failure
	switch {
	case err != nil:
		slog.Warn("search budget exceeded", "error", err)
		f = budgetFailure(first, err)
	case s.truncated:
		slog.Warn("search depth limit reached", "limit", s.maxDepth)
		f = NewBudgetFailure(first, &BudgetExceededError{Kind: BudgetDepth, Used: s.maxDepth + 1, Limit: s.maxDepth})
	case !s.expanded:
		f = NewNoApplicableRule(first, fmt.Sprintf("no rule concludes %s (%s)", first, e.classify(first)))
	default:
		f = NewSearchExhausted(first, s.quota.Current())
	}
	s.log.add(ir.Snapshot{Action: ir.ActionFail, Goal: first, Set: root.Sorted(), Note: f.Message})
	return e.finish(ir.StrategySearch, axioms, goals, ir.Trace{}, s.log, f)
}

// prove reports whether goals can be reduced to axioms with the rules not
// yet used on the current path. A non-nil error aborts the whole search.
func (s *searcher) prove(goals ir.SymbolSet, depth int) (bool, error) {
	open := openGoals(goals, s.known)
	if len(open) == 0 {
		return true, nil
	}
	if depth >= s.maxDepth {
		s.truncated = true
		return false, nil
	}

	goal := open[0]
	for _, r := range s.e.candidates(goal, s.used) {
		if err := s.quota.Check(); err != nil {
			return false, err
		}
		s.expanded = true

		next := reduce(goals, goal, r, s.known)
		s.used.Add(r.ID)
		s.path = append(s.path, r.ID)
		slog.Debug("search fire", "rule_id", r.ID, "goal", goal, "depth", depth+1)
		s.log.add(ir.Snapshot{
			Action: ir.ActionFire,
			Rule:   r.ID,
			Goal:   goal,
			Set:    next.Sorted(),
			Trace:  s.path,
			Depth:  depth + 1,
			Note:   fmt.Sprintf("replace %s with [%s]", goal, ir.JoinSymbols(r.Premises, ", ")),
		})

		ok, err := s.prove(next, depth+1)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		s.used.Remove(r.ID)
		s.path = s.path[:len(s.path)-1]
		slog.Debug("search undo", "rule_id", r.ID, "goal", goal, "depth", depth+1)
		s.log.add(ir.Snapshot{
			Action: ir.ActionUndo,
			Rule:   r.ID,
			Goal:   goal,
			Set:    goals.Sorted(),
			Trace:  s.path,
			Depth:  depth + 1,
			Note:   fmt.Sprintf("%s leads to a dead end", r.ID),
		})
	}
	return false, nil
}
