package ir

import (
	"fmt"
	"slices"
	"strings"
)

// Symbol identifies a fact: an edge length, an angle, an attribute=value
// pair. Symbols are compared by exact string equality.
type Symbol string

// Category is the semantic class of a symbol. It only biases rule
// selection when several rules share a conclusion; it is never a
// correctness constraint.
type Category int

const (
	// CategoryEdge covers lengths and any symbol that is not angle-like.
	CategoryEdge Category = iota + 1
	// CategoryAngle covers angle-like symbols (single uppercase letters).
	CategoryAngle
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case CategoryEdge:
		return "edge"
	case CategoryAngle:
		return "angle"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(text []byte) error {
	cat, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = cat
	return nil
}

// ParseCategory parses "edge" or "angle" (case-insensitive).
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "edge":
		return CategoryEdge, nil
	case "angle":
		return CategoryAngle, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// RawRule is an unnormalized rule record as delivered by a rule source.
// Left may join premises with any supported conjunction notation.
type RawRule struct {
	ID    string `json:"id"`
	Left  string `json:"premises"`
	Right string `json:"conclusion"`
	Note  string `json:"note,omitempty"`
}

// Rule is a normalized production rule "premises -> conclusion".
type Rule struct {
	ID         string   `json:"id"`
	Premises   []Symbol `json:"premises"`   // ordered, no duplicates
	Conclusion Symbol   `json:"conclusion"`
	Category   Category `json:"category"`   // classification of Conclusion
	Note       string   `json:"note"`
}

// Clone returns a deep copy of the rule.
func (r Rule) Clone() Rule {
	r.Premises = slices.Clone(r.Premises)
	return r
}

// String renders the rule as "id: p1, p2 -> c".
func (r Rule) String() string {
	return fmt.Sprintf("%s: %s -> %s", r.ID, JoinSymbols(r.Premises, ", "), r.Conclusion)
}

// Rulebook is a set of raw rules with optional default facts and goals,
// as loaded from a rulebook file.
type Rulebook struct {
	Name  string    `json:"name,omitempty"`
	Rules []RawRule `json:"rules"`
	Facts []Symbol  `json:"facts,omitempty"`
	Goals []Symbol  `json:"goals,omitempty"`
}

// Symbols converts strings to symbols, trimming whitespace and dropping
// empty entries.
func Symbols(values ...string) []Symbol {
	out := make([]Symbol, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, Symbol(v))
	}
	return out
}

// JoinSymbols joins symbols with sep.
func JoinSymbols(syms []Symbol, sep string) string {
	parts := make([]string, len(syms))
	for i, s := range syms {
		parts[i] = string(s)
	}
	return strings.Join(parts, sep)
}
