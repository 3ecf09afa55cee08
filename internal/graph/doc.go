// Package graph builds the two precedence graphs of a rule table.
//
// The fact graph has one node per symbol and one edge per (premise, rule)
// pair pointing at the rule's conclusion. The rule graph has one node per
// rule and an edge r_i -> r_j whenever r_i's conclusion is one of r_j's
// premises. Both can mark the rules of a trace, typically the optimal one.
//
// Layout and drawing are left to callers; this package only produces
// deterministic node and edge lists.
package graph
