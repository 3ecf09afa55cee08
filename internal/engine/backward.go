package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
)

// BackwardGreedy reduces goals without backtracking. At each step the
// lexicographically smallest goal that is not an axiom is replaced by the
// non-axiom premises of its best-ranked unused rule. A goal with no such
// rule fails the run immediately with NO_APPLICABLE_RULE, even when a
// different earlier choice would have led to a proof.
func (e *Engine) BackwardGreedy(axioms, goals []ir.Symbol) Result {
	axioms = rules.NormalizeSymbols(axioms)
	goals = rules.NormalizeSymbols(goals)

	known := ir.NewSymbolSet(axioms...)
	current := ir.NewSymbolSet(goals...)
	used := NewExclusionSet()
	quota := NewQuota(BudgetSteps, e.StepLimit())

	log := &processLog{}
	var fired ir.Trace
	log.add(ir.Snapshot{
		Action: ir.ActionInit,
		Set:    current.Sorted(),
		Note:   fmt.Sprintf("goals = {%s}, known = {%s}", ir.JoinSymbols(current.Sorted(), ", "), ir.JoinSymbols(known.Sorted(), ", ")),
	})

	for {
		open := openGoals(current, known)
		if len(open) == 0 {
			break
		}
		goal := open[0]

		cands := e.candidates(goal, used)
		if len(cands) == 0 {
			f := NewNoApplicableRule(goal, fmt.Sprintf("no unused rule concludes %s (%s)", goal, e.classify(goal)))
			log.add(ir.Snapshot{Action: ir.ActionFail, Goal: goal, Set: current.Sorted(), Trace: fired, Note: f.Message})
			return e.finish(ir.StrategyBackward, axioms, goals, fired.Reversed(), log, f)
		}

		if err := quota.Check(); err != nil {
			slog.Warn("greedy backward budget exceeded", "error", err)
			f := budgetFailure(goal, err)
			log.add(ir.Snapshot{Action: ir.ActionFail, Goal: goal, Set: current.Sorted(), Trace: fired, Note: f.Message})
			return e.finish(ir.StrategyBackward, axioms, goals, fired.Reversed(), log, f)
		}

		r := cands[0]
		used.Add(r.ID)
		current = reduce(current, goal, r, known)
		fired = append(fired, r.ID)
		slog.Debug("greedy reduce", "rule_id", r.ID, "goal", goal, "step", quota.Current())
		log.add(ir.Snapshot{
			Action: ir.ActionFire,
			Rule:   r.ID,
			Goal:   goal,
			Set:    current.Sorted(),
			Trace:  fired,
			Note:   fmt.Sprintf("replace %s with [%s]", goal, ir.JoinSymbols(r.Premises, ", ")),
		})
	}

	log.add(ir.Snapshot{Action: ir.ActionDone, Set: current.Sorted(), Trace: fired, Note: "every goal reduced to known facts"})
	return e.finish(ir.StrategyBackward, axioms, goals, fired.Reversed(), log, nil)
}
