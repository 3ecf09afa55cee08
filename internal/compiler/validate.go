package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
)

// Validation error codes (E100-E199)
const (
	ErrUnsupportedType = "E100" // unsupported value passed to Validate

	ErrEmptyID               = "E101" // dropped by the normalizer
	ErrEmptyConclusion       = "E102" // dropped by the normalizer
	ErrNoPremises            = "E103" // dropped by the normalizer
	ErrDuplicateID           = "E104" // later record replaces the earlier one
	ErrSelfDependent         = "E105" // conclusion is one of its own premises
	ErrSeparatorInConclusion = "E106" // conclusion looks like a conjunction
)

// ValidationError represents a rulebook validation finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate reports what loading a rulebook would silently do to its
// records. Returns all findings (does not fail-fast).
// Supports *ir.Rulebook, ir.Rulebook and []ir.RawRule.
func Validate(v any) []ValidationError {
	switch b := v.(type) {
	case *ir.Rulebook:
		return validateRecords(b.Rules)
	case ir.Rulebook:
		return validateRecords(b.Rules)
	case []ir.RawRule:
		return validateRecords(b)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type: %T", v),
			Code:    ErrUnsupportedType,
		}}
	}
}

func validateRecords(raws []ir.RawRule) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int)

	for i, raw := range raws {
		field := fmt.Sprintf("rules[%d]", i)
		id := strings.TrimSpace(raw.ID)

		if id == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: "rule id is empty; the record is dropped",
				Code:    ErrEmptyID,
			})
		} else {
			if prev, dup := seen[id]; dup {
				errs = append(errs, ValidationError{
					Field:   field + ".id",
					Message: fmt.Sprintf("duplicate rule id %q (first at rules[%d]); the later record wins", id, prev),
					Code:    ErrDuplicateID,
				})
			}
			seen[id] = i
		}

		conclusion := rules.NormalizeSymbol(raw.Right)
		if conclusion == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".conclusion",
				Message: "conclusion is empty; the record is dropped",
				Code:    ErrEmptyConclusion,
			})
		} else if rules.HasSeparator(string(conclusion)) {
			errs = append(errs, ValidationError{
				Field:   field + ".conclusion",
				Message: fmt.Sprintf("conclusion %q contains a conjunction; a rule concludes a single symbol", conclusion),
				Code:    ErrSeparatorInConclusion,
			})
		}

		premises := rules.SplitPremises(raw.Left)
		if len(premises) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".premises",
				Message: "no premises; the record is dropped",
				Code:    ErrNoPremises,
			})
			continue
		}

		for _, p := range premises {
			if conclusion != "" && p == conclusion {
				errs = append(errs, ValidationError{
					Field:   field + ".premises",
					Message: fmt.Sprintf("rule concludes %q, which is also one of its premises", conclusion),
					Code:    ErrSelfDependent,
				})
				break
			}
		}
	}

	return errs
}
