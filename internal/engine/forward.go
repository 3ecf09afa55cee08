package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
)

// Forward chains from the axioms. Each pass fires the first unfired rule,
// in (premise count, id) order, whose premises are all known and whose
// conclusion is not. The run succeeds once every goal is known and fails
// when a full pass fires nothing.
func (e *Engine) Forward(axioms, goals []ir.Symbol) Result {
	axioms = rules.NormalizeSymbols(axioms)
	goals = rules.NormalizeSymbols(goals)

	known := ir.NewSymbolSet(axioms...)
	want := ir.NewSymbolSet(goals...)
	fired := NewExclusionSet()
	quota := NewQuota(BudgetSteps, e.StepLimit())
	order := forwardOrder(e.table)

	log := &processLog{}
	var full ir.Trace
	log.add(ir.Snapshot{
		Action: ir.ActionInit,
		Set:    known.Sorted(),
		Note:   fmt.Sprintf("known = {%s}, goals = {%s}", ir.JoinSymbols(known.Sorted(), ", "), ir.JoinSymbols(want.Sorted(), ", ")),
	})

	for !known.ContainsAll(want) {
		var next *ir.Rule
		for i := range order {
			r := &order[i]
			if fired.Has(r.ID) || known.Has(r.Conclusion) {
				continue
			}
			if known.ContainsAll(ir.NewSymbolSet(r.Premises...)) {
				next = r
				break
			}
		}

		if next == nil {
			missing := known.Missing(want)
			f := NewNoApplicableRule(missing[0],
				fmt.Sprintf("no rule can fire; goals not derived: %s", ir.JoinSymbols(missing, ", ")))
			log.add(ir.Snapshot{Action: ir.ActionFail, Set: known.Sorted(), Trace: full, Note: f.Message})
			return e.finish(ir.StrategyForward, axioms, goals, full, log, f)
		}

		if err := quota.Check(); err != nil {
			slog.Warn("forward chaining budget exceeded", "error", err)
			f := budgetFailure(known.Missing(want)[0], err)
			log.add(ir.Snapshot{Action: ir.ActionFail, Set: known.Sorted(), Trace: full, Note: f.Message})
			return e.finish(ir.StrategyForward, axioms, goals, full, log, f)
		}

		fired.Add(next.ID)
		known.Add(next.Conclusion)
		full = append(full, next.ID)
		slog.Debug("forward fire", "rule_id", next.ID, "conclusion", next.Conclusion, "step", quota.Current())
		log.add(ir.Snapshot{
			Action: ir.ActionFire,
			Rule:   next.ID,
			Set:    known.Sorted(),
			Trace:  full,
			Note:   next.Note,
		})
	}

	log.add(ir.Snapshot{Action: ir.ActionDone, Set: known.Sorted(), Trace: full, Note: "all goals known"})
	return e.finish(ir.StrategyForward, axioms, goals, full, log, nil)
}
