package engine

// ExclusionSet records the rules already used in one run.
//
// The greedy loop never picks an excluded rule again, which also stops it
// from cycling on mutually dependent rules (x -> y, y -> x). Search adds a
// rule when it fires and removes it when the firing is undone.
//
// An ExclusionSet belongs to exactly one run and is not safe for
// concurrent use.
type ExclusionSet struct {
	used map[string]struct{}
}

// NewExclusionSet creates an empty set.
func NewExclusionSet() *ExclusionSet {
	return &ExclusionSet{used: make(map[string]struct{})}
}

// Has reports whether the rule was used.
func (x *ExclusionSet) Has(ruleID string) bool {
	_, ok := x.used[ruleID]
	return ok
}

// Add marks the rule used.
func (x *ExclusionSet) Add(ruleID string) {
	x.used[ruleID] = struct{}{}
}

// Remove unmarks the rule.
func (x *ExclusionSet) Remove(ruleID string) {
	delete(x.used, ruleID)
}

// Len returns the number of used rules.
func (x *ExclusionSet) Len() int {
	return len(x.used)
}
