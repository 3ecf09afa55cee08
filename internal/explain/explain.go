// Package explain renders a run's traces as a numbered list of steps and
// a plain-text summary.
package explain

import (
	"fmt"
	"strings"

	"github.com/roach88/deduce/internal/ir"
)

// Step is one rule of the optimal trace.
type Step struct {
	Index      int         `json:"step"`
	Rule       string      `json:"rule"`
	Premises   []ir.Symbol `json:"premises"`
	Conclusion ir.Symbol   `json:"conclusion"`
	Category   ir.Category `json:"category"`
	Note       string      `json:"note"`
	// NeededBy lists the later steps that consume Conclusion.
	NeededBy []string `json:"needed_by,omitempty"`
	// Goal is set when Conclusion is one of the run's goals.
	Goal bool `json:"goal,omitempty"`
}

// NeededFor renders the step's consumers: "r2", "r2, r4", "goal A" or
// "goal A, r3".
func (s Step) NeededFor() string {
	parts := make([]string, 0, len(s.NeededBy)+1)
	if s.Goal {
		parts = append(parts, "goal "+string(s.Conclusion))
	}
	parts = append(parts, s.NeededBy...)
	return strings.Join(parts, ", ")
}

// Explanation is the human-readable account of a run.
type Explanation struct {
	Steps       []Step   `json:"steps"`
	FullSize    int      `json:"full_size"`
	OptimalSize int      `json:"optimal_size"`
	Dropped     []string `json:"dropped"`
	Summary     string   `json:"summary"`
}

// Input carries everything Build reads. Build never mutates it.
type Input struct {
	Strategy ir.Strategy
	Table    *ir.RuleTable
	Axioms   []ir.Symbol
	Goals    []ir.Symbol
	Full     ir.Trace
	Optimal  ir.Trace
	Dropped  []string
	Success  bool
	// Failure is the failure text of an unsuccessful run.
	Failure string
}

// Build derives the step list from the optimal trace and writes the summary.
func Build(in Input) Explanation {
	goals := ir.NewSymbolSet(in.Goals...)

	steps := make([]Step, 0, len(in.Optimal))
	rules := make([]ir.Rule, 0, len(in.Optimal))
	for _, id := range in.Optimal {
		r, ok := in.Table.Get(id)
		if !ok {
			continue
		}
		rules = append(rules, r)
	}
	for i, r := range rules {
		steps = append(steps, Step{
			Index:      i + 1,
			Rule:       r.ID,
			Premises:   r.Premises,
			Conclusion: r.Conclusion,
			Category:   r.Category,
			Note:       r.Note,
			NeededBy:   consumers(rules, i),
			Goal:       goals.Has(r.Conclusion),
		})
	}

	e := Explanation{
		Steps:       steps,
		FullSize:    len(in.Full),
		OptimalSize: len(in.Optimal),
		Dropped:     in.Dropped,
	}
	if e.Dropped == nil {
		e.Dropped = []string{}
	}
	e.Summary = summarize(in, e)
	return e
}

// consumers returns the ids of rules after i that use rules[i]'s conclusion
// as a premise, stopping at the next rule that concludes the same symbol.
func consumers(rules []ir.Rule, i int) []string {
	c := rules[i].Conclusion
	var out []string
	for _, r := range rules[i+1:] {
		for _, p := range r.Premises {
			if p == c {
				out = append(out, r.ID)
				break
			}
		}
		if r.Conclusion == c {
			break
		}
	}
	return out
}

func braces(syms []ir.Symbol) string {
	return "{" + ir.JoinSymbols(ir.NewSymbolSet(syms...).Sorted(), ", ") + "}"
}

func summarize(in Input, e Explanation) string {
	var b strings.Builder

	if in.Success {
		fmt.Fprintf(&b, "SUCCESS (%s): derived %s from %s\n", in.Strategy, braces(in.Goals), braces(in.Axioms))
	} else {
		fmt.Fprintf(&b, "FAILURE (%s): could not derive %s from %s\n", in.Strategy, braces(in.Goals), braces(in.Axioms))
		if in.Failure != "" {
			fmt.Fprintf(&b, "Reason: %s\n", in.Failure)
		}
	}

	fmt.Fprintf(&b, "Full trace (%d rules): %s\n", e.FullSize, in.Full)
	if !in.Success {
		return b.String()
	}
	fmt.Fprintf(&b, "Optimal trace (%d rules): %s\n", e.OptimalSize, in.Optimal)

	if len(e.Steps) > 0 {
		b.WriteString("Steps:\n")
	}
	for _, s := range e.Steps {
		fmt.Fprintf(&b, "  %d. %s: {%s} -> %s (%s)\n", s.Index, s.Rule, ir.JoinSymbols(s.Premises, ", "), s.Conclusion, s.Category)
		fmt.Fprintf(&b, "     %s\n", s.Note)
		if nf := s.NeededFor(); nf != "" {
			fmt.Fprintf(&b, "     needed for: %s\n", nf)
		}
	}

	if len(e.Dropped) > 0 {
		fmt.Fprintf(&b, "Dropped (not needed): %s\n", strings.Join(e.Dropped, ", "))
	}
	return b.String()
}
