// Package engine proves goals from axioms with production rules.
//
// Three strategies share one rule table:
//
//   - Forward chaining fires any rule whose premises are known, cheapest
//     rule first, until the goals are covered or nothing fires.
//   - Greedy backward chaining replaces the smallest unproved goal with the
//     premises of the best-ranked unused rule. It never undoes a choice,
//     so it can fail even when a proof exists.
//   - Backtracking search performs the same reduction depth-first and undoes
//     a firing when it leads to a dead end.
//
// DETERMINISM:
// Goals are chosen in lexicographic order, candidate rules by
// (category mismatch, premise count, id) and forward candidates by
// (premise count, id). Ids compare numerically when both are all digits.
// No maps are iterated where order is observable.
//
// CONCURRENCY:
// An Engine is immutable after New. Every run owns its working set,
// exclusion set and log, so any number of runs may share one Engine.
//
// TERMINATION:
// Every strategy is bounded by a Quota (steps or expansions) and search
// also by a depth limit. Defaults scale with the rule table. A run that
// hits a limit fails with BUDGET_EXCEEDED, which is distinct from
// NO_APPLICABLE_RULE and SEARCH_EXHAUSTED.
//
// TRACE ORDER:
// Full and optimal traces are reported in derivation order: replaying them
// left to right from the axioms fires every rule with its premises known.
// Backward strategies fire goal-first, so their traces are the reverse of
// the firing order recorded in the process log.
package engine
