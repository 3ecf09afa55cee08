package engine

import (
	"errors"
	"fmt"
)

// Budget kinds.
const (
	BudgetSteps      = "steps"
	BudgetExpansions = "expansions"
	BudgetDepth      = "depth"
)

// Quota counts rule firings in one run and enforces a limit.
//
// Each run owns its own Quota. Forward and greedy runs fire every rule at
// most once, so their step quota only trips when set below the table size.
// Search may fire, undo and refire the same rule along different branches;
// its expansion quota is the safety valve against exponential blow-up.
type Quota struct {
	kind    string
	limit   int
	current int
}

// NewQuota creates a quota of the given kind.
func NewQuota(kind string, limit int) *Quota {
	return &Quota{kind: kind, limit: limit}
}

// Check consumes one unit and returns a BudgetExceededError once the limit
// is passed.
func (q *Quota) Check() error {
	q.current++
	if q.current > q.limit {
		return &BudgetExceededError{Kind: q.kind, Used: q.current, Limit: q.limit}
	}
	return nil
}

// Current returns the units consumed so far.
func (q *Quota) Current() int {
	return q.current
}

// Limit returns the configured limit.
func (q *Quota) Limit() int {
	return q.limit
}

// BudgetExceededError is returned when a run passes one of its limits.
type BudgetExceededError struct {
	Kind  string // steps, expansions or depth
	Used  int
	Limit int
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("%s budget exceeded: %d > %d limit", e.Kind, e.Used, e.Limit)
}

// IsBudgetExceededError returns true if the error is a BudgetExceededError.
// Uses errors.As to handle wrapped errors.
func IsBudgetExceededError(err error) bool {
	var be *BudgetExceededError
	return errors.As(err, &be)
}
