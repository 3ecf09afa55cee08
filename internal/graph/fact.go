package graph

import (
	"cmp"
	"slices"

	"github.com/roach88/deduce/internal/ir"
)

// FactKind classifies a node of the fact graph.
type FactKind string

const (
	FactAxiom   FactKind = "axiom"
	FactGoal    FactKind = "goal"
	FactDerived FactKind = "derived" // concluded by some rule
	FactFree    FactKind = "free"    // neither given nor derivable
)

// FactNode is a symbol.
type FactNode struct {
	Symbol    ir.Symbol `json:"symbol"`
	Kind      FactKind  `json:"kind"`
	Highlight bool      `json:"highlight,omitempty"`
}

// FactEdge links a premise to a conclusion through a rule.
type FactEdge struct {
	From      ir.Symbol `json:"from"`
	To        ir.Symbol `json:"to"`
	Rule      string    `json:"rule"`
	Highlight bool      `json:"highlight,omitempty"`
}

// FactGraph is the fact precedence graph.
type FactGraph struct {
	Nodes []FactNode `json:"nodes"`
	Edges []FactEdge `json:"edges"`
}

// NewFactGraph builds the fact graph of table. Goals take precedence over
// axioms when a symbol is both. Edges of rules in highlight are marked,
// as are the symbols they touch.
func NewFactGraph(table *ir.RuleTable, axioms, goals []ir.Symbol, highlight ir.Trace) FactGraph {
	given := ir.NewSymbolSet(axioms...)
	wanted := ir.NewSymbolSet(goals...)
	marked := make(map[string]bool, len(highlight))
	for _, id := range highlight {
		marked[id] = true
	}

	symbols := ir.NewSymbolSet(axioms...)
	for _, g := range goals {
		symbols.Add(g)
	}
	derived := ir.NewSymbolSet()
	lit := ir.NewSymbolSet()

	var g FactGraph
	for _, r := range table.Rules() {
		derived.Add(r.Conclusion)
		symbols.Add(r.Conclusion)
		for _, p := range r.Premises {
			symbols.Add(p)
			g.Edges = append(g.Edges, FactEdge{From: p, To: r.Conclusion, Rule: r.ID, Highlight: marked[r.ID]})
			if marked[r.ID] {
				lit.Add(p)
				lit.Add(r.Conclusion)
			}
		}
	}
	slices.SortStableFunc(g.Edges, func(a, b FactEdge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		if c := cmp.Compare(a.To, b.To); c != 0 {
			return c
		}
		return ir.CompareIDs(a.Rule, b.Rule)
	})

	for _, s := range symbols.Sorted() {
		kind := FactFree
		switch {
		case wanted.Has(s):
			kind = FactGoal
		case given.Has(s):
			kind = FactAxiom
		case derived.Has(s):
			kind = FactDerived
		}
		g.Nodes = append(g.Nodes, FactNode{Symbol: s, Kind: kind, Highlight: lit.Has(s)})
	}
	return g
}
