package graph

import (
	"slices"

	"github.com/roach88/deduce/internal/ir"
)

// RuleNode is a rule.
type RuleNode struct {
	ID         string    `json:"id"`
	Conclusion ir.Symbol `json:"conclusion"`
	Highlight  bool      `json:"highlight,omitempty"`
}

// RuleEdge says From's conclusion Symbol is a premise of To.
type RuleEdge struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Symbol    ir.Symbol `json:"symbol"`
	Highlight bool      `json:"highlight,omitempty"`
}

// RuleGraph is the rule precedence graph.
type RuleGraph struct {
	Nodes []RuleNode `json:"nodes"`
	Edges []RuleEdge `json:"edges"`

	succ map[string][]string
}

// NewRuleGraph builds the rule graph of table. An edge is highlighted when
// both of its rules are in highlight.
func NewRuleGraph(table *ir.RuleTable, highlight ir.Trace) *RuleGraph {
	marked := make(map[string]bool, len(highlight))
	for _, id := range highlight {
		marked[id] = true
	}

	g := &RuleGraph{succ: make(map[string][]string)}
	all := table.Rules()
	for _, r := range all {
		g.Nodes = append(g.Nodes, RuleNode{ID: r.ID, Conclusion: r.Conclusion, Highlight: marked[r.ID]})
		g.succ[r.ID] = nil
	}

	// Rules() is in CompareIDs order, so edges come out sorted by
	// (From, To) without a further sort.
	for _, from := range all {
		for _, to := range all {
			if !slices.Contains(to.Premises, from.Conclusion) {
				continue
			}
			g.Edges = append(g.Edges, RuleEdge{
				From:      from.ID,
				To:        to.ID,
				Symbol:    from.Conclusion,
				Highlight: marked[from.ID] && marked[to.ID],
			})
			g.succ[from.ID] = append(g.succ[from.ID], to.ID)
		}
	}
	return g
}

// Successors returns the rules that consume id's conclusion.
func (g *RuleGraph) Successors(id string) []string {
	return slices.Clone(g.succ[id])
}

// Components returns the strongly connected components of the graph
// (Tarjan's algorithm). Nodes are visited in id order and every component
// is sorted, so the result is deterministic.
func (g *RuleGraph) Components() [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.succ[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.SortFunc(scc, ir.CompareIDs)
			sccs = append(sccs, scc)
		}
	}

	for _, n := range g.Nodes {
		if _, visited := indices[n.ID]; !visited {
			strongConnect(n.ID)
		}
	}

	slices.SortFunc(sccs, func(a, b []string) int {
		return ir.CompareIDs(a[0], b[0])
	})
	return sccs
}

// Cycles returns one closed path per component that contains a cycle: a
// component of two or more rules, or a rule consuming its own conclusion.
// Each path starts and ends at the component's smallest id.
func (g *RuleGraph) Cycles() [][]string {
	var cycles [][]string
	for _, scc := range g.Components() {
		if len(scc) == 1 && !slices.Contains(g.succ[scc[0]], scc[0]) {
			continue
		}
		cycles = append(cycles, g.cyclePath(scc))
	}
	return cycles
}

// cyclePath follows edges inside scc from its first member back to it.
// Every member of a strongly connected component reaches every other, so
// a breadth-first search inside the component always closes the loop.
func (g *RuleGraph) cyclePath(scc []string) []string {
	start := scc[0]
	if len(scc) == 1 {
		return []string{start, start}
	}
	members := make(map[string]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	parent := map[string]string{}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.succ[cur] {
			if !members[next] {
				continue
			}
			if next == start {
				path := []string{start}
				for n := cur; n != start; n = parent[n] {
					path = append(path, n)
				}
				slices.Reverse(path[1:])
				return append(path, start)
			}
			if _, seen := parent[next]; !seen {
				parent[next] = cur
				queue = append(queue, next)
			}
		}
	}
	return append(slices.Clone(scc), start)
}
