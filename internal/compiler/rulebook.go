package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/deduce/internal/ir"
)

// CompileRulebook parses a CUE value into a Rulebook.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the rulebook root, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`
//		rule: r1: {premises: ["a", "b"], conclusion: "c"}
//		facts: ["a", "b"]
//		goals: ["c"]
//	`)
//	book, err := CompileRulebook(v)
//
// Rules keep their declaration order. Records are not normalized here;
// malformed rules reach the normalizer, which drops them.
func CompileRulebook(v cue.Value) (*ir.Rulebook, error) {
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	book := &ir.Rulebook{}

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		book.Name = name
	}

	ruleVal := v.LookupPath(cue.ParsePath("rule"))
	if !ruleVal.Exists() {
		return nil, &CompileError{
			Field:   "rule",
			Message: "at least one rule is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := ruleVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		raw, err := compileRule(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		book.Rules = append(book.Rules, raw)
	}

	book.Facts, err = compileSymbols(v, "facts")
	if err != nil {
		return nil, err
	}
	book.Goals, err = compileSymbols(v, "goals")
	if err != nil {
		return nil, err
	}

	return book, nil
}

func compileRule(id string, v cue.Value) (ir.RawRule, error) {
	raw := ir.RawRule{ID: id}

	premVal := v.LookupPath(cue.ParsePath("premises"))
	if !premVal.Exists() {
		return raw, &CompileError{
			Field:   fmt.Sprintf("rule.%s.premises", id),
			Message: "rule premises are required",
			Pos:     v.Pos(),
		}
	}
	left, err := joinedText(premVal)
	if err != nil {
		return raw, err
	}
	raw.Left = left

	conclVal := v.LookupPath(cue.ParsePath("conclusion"))
	if !conclVal.Exists() {
		return raw, &CompileError{
			Field:   fmt.Sprintf("rule.%s.conclusion", id),
			Message: "rule conclusion is required",
			Pos:     v.Pos(),
		}
	}
	right, err := scalarText(conclVal)
	if err != nil {
		return raw, err
	}
	raw.Right = right

	if noteVal := v.LookupPath(cue.ParsePath("note")); noteVal.Exists() {
		note, err := noteVal.String()
		if err != nil {
			return raw, formatCUEError(err)
		}
		raw.Note = note
	}

	return raw, nil
}

// compileSymbols reads an optional string or list of strings.
func compileSymbols(v cue.Value, field string) ([]ir.Symbol, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		return nil, nil
	}
	if val.IncompleteKind() == cue.ListKind {
		list, err := val.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var out []string
		for list.Next() {
			s, err := scalarText(list.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return ir.Symbols(out...), nil
	}
	s, err := scalarText(val)
	if err != nil {
		return nil, err
	}
	return ir.Symbols(strings.Split(s, ",")...), nil
}

// joinedText accepts a string, or a list of scalars joined with ", ".
func joinedText(v cue.Value) (string, error) {
	if v.IncompleteKind() != cue.ListKind {
		return scalarText(v)
	}
	list, err := v.List()
	if err != nil {
		return "", formatCUEError(err)
	}
	var parts []string
	for list.Next() {
		s, err := scalarText(list.Value())
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

// scalarText renders a string or int. Floats are rejected so that the
// textual form of a symbol never depends on number formatting.
func scalarText(v cue.Value) (string, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return "", formatCUEError(err)
		}
		return s, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return "", formatCUEError(err)
		}
		return strconv.FormatInt(n, 10), nil
	default:
		return "", &CompileError{
			Field:   "symbol",
			Message: fmt.Sprintf("expected string or int, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
