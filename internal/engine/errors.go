package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/deduce/internal/ir"
)

// FailureCode categorizes an unsuccessful run.
type FailureCode string

const (
	// CodeNoApplicableRule means a goal had no usable rule (backward) or no
	// rule could fire while goals were still missing (forward).
	CodeNoApplicableRule FailureCode = "NO_APPLICABLE_RULE"

	// CodeSearchExhausted means backtracking tried every combination.
	CodeSearchExhausted FailureCode = "SEARCH_EXHAUSTED"

	// CodeBudgetExceeded means the run was truncated by a step, expansion
	// or depth limit. The goals may still be provable.
	CodeBudgetExceeded FailureCode = "BUDGET_EXCEEDED"
)

// Failure is the structured reason a run did not prove its goals.
//
// Failures are values carried on Result, never panics: the process log up
// to the failure point stays inspectable. Failure implements error so it
// composes with errors.As.
type Failure struct {
	// Code identifies the failure category.
	Code FailureCode `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Symbol is the unproved goal the failure concerns.
	Symbol ir.Symbol `json:"symbol,omitempty"`

	// Details contains additional context (budget kind and limits).
	Details map[string]string `json:"details,omitempty"`
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// NewNoApplicableRule creates a failure for a goal nothing can produce.
func NewNoApplicableRule(goal ir.Symbol, message string) *Failure {
	return &Failure{Code: CodeNoApplicableRule, Message: message, Symbol: goal}
}

// NewSearchExhausted creates a failure for an exhausted proof search.
func NewSearchExhausted(goal ir.Symbol, expansions int) *Failure {
	return &Failure{
		Code:    CodeSearchExhausted,
		Message: fmt.Sprintf("no combination of rules proves %s (%d expansions)", goal, expansions),
		Symbol:  goal,
		Details: map[string]string{"expansions": strconv.Itoa(expansions)},
	}
}

// NewBudgetFailure converts a budget error into a failure.
func NewBudgetFailure(goal ir.Symbol, be *BudgetExceededError) *Failure {
	return &Failure{
		Code:    CodeBudgetExceeded,
		Message: be.Error(),
		Symbol:  goal,
		Details: map[string]string{
			"kind":  be.Kind,
			"used":  strconv.Itoa(be.Used),
			"limit": strconv.Itoa(be.Limit),
		},
	}
}

func failureCode(err error) (FailureCode, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Code, true
	}
	return "", false
}

// IsNoApplicableRule returns true if the error is a NO_APPLICABLE_RULE failure.
func IsNoApplicableRule(err error) bool {
	code, ok := failureCode(err)
	return ok && code == CodeNoApplicableRule
}

// IsSearchExhausted returns true if the error is a SEARCH_EXHAUSTED failure.
func IsSearchExhausted(err error) bool {
	code, ok := failureCode(err)
	return ok && code == CodeSearchExhausted
}

// IsBudgetExceeded returns true if the error is a BUDGET_EXCEEDED failure
// or a raw BudgetExceededError.
func IsBudgetExceeded(err error) bool {
	if code, ok := failureCode(err); ok {
		return code == CodeBudgetExceeded
	}
	return IsBudgetExceededError(err)
}

// budgetFailure converts an error returned by Quota.Check.
func budgetFailure(goal ir.Symbol, err error) *Failure {
	var be *BudgetExceededError
	if errors.As(err, &be) {
		return NewBudgetFailure(goal, be)
	}
	return &Failure{Code: CodeBudgetExceeded, Message: err.Error(), Symbol: goal}
}
