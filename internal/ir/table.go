package ir

import (
	"cmp"
	"slices"
	"strings"
)

// RuleTable is an immutable mapping from rule id to Rule.
//
// A table is built once per rulebook and may be shared read-only by any
// number of concurrent runs. Accessors return copies so callers cannot
// mutate premises in place.
type RuleTable struct {
	rules        map[string]Rule
	ids          []string            // CompareIDs order
	byConclusion map[Symbol][]string // CompareIDs order
}

// NewRuleTable builds a table from normalized rules. When two rules share
// an id, the later one wins.
func NewRuleTable(rules []Rule) *RuleTable {
	t := &RuleTable{
		rules:        make(map[string]Rule, len(rules)),
		byConclusion: make(map[Symbol][]string),
	}
	for _, r := range rules {
		t.rules[r.ID] = r.Clone()
	}

	t.ids = make([]string, 0, len(t.rules))
	for id := range t.rules {
		t.ids = append(t.ids, id)
	}
	slices.SortFunc(t.ids, CompareIDs)

	for _, id := range t.ids {
		c := t.rules[id].Conclusion
		t.byConclusion[c] = append(t.byConclusion[c], id)
	}
	return t
}

// Len returns the number of rules.
func (t *RuleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Get returns a copy of the rule with the given id.
func (t *RuleTable) Get(id string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	r, ok := t.rules[id]
	if !ok {
		return Rule{}, false
	}
	return r.Clone(), true
}

// IDs returns all rule ids in CompareIDs order.
func (t *RuleTable) IDs() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.ids)
}

// Rules returns copies of all rules in CompareIDs order.
func (t *RuleTable) Rules() []Rule {
	if t == nil {
		return nil
	}
	out := make([]Rule, 0, len(t.ids))
	for _, id := range t.ids {
		out = append(out, t.rules[id].Clone())
	}
	return out
}

// Concluding returns the rules whose conclusion is sym, in CompareIDs order.
func (t *RuleTable) Concluding(sym Symbol) []Rule {
	if t == nil {
		return nil
	}
	ids := t.byConclusion[sym]
	out := make([]Rule, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rules[id].Clone())
	}
	return out
}

// CompareIDs orders rule ids: all-digit ids first by numeric value, then
// every other id lexicographically.
func CompareIDs(a, b string) int {
	an, bn := isDigits(a), isDigits(b)
	switch {
	case an && bn:
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if c := cmp.Compare(len(ta), len(tb)); c != 0 {
			return c
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case an:
		return -1
	case bn:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
