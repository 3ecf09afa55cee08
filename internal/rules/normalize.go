package rules

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/deduce/internal/ir"
)

// Reasons a raw record is dropped.
const (
	ReasonEmptyID         = "empty id"
	ReasonEmptyConclusion = "empty conclusion"
	ReasonNoPremises      = "no premises"
)

// Rejection describes a raw record the normalizer dropped.
type Rejection struct {
	Index  int    `json:"index"` // position in the input
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

func (r Rejection) String() string {
	if r.ID == "" {
		return fmt.Sprintf("record %d: %s", r.Index, r.Reason)
	}
	return fmt.Sprintf("record %d (%s): %s", r.Index, r.ID, r.Reason)
}

// symbolSeparators are rewritten to commas before splitting. "&&" must
// precede "&" so the pair is not seen as two delimiters around an empty
// item (which would be discarded anyway).
var symbolSeparators = strings.NewReplacer(
	"∧", ",",
	"^", ",",
	"&&", ",",
	"&", ",",
	";", ",",
	"|", ",",
)

// wordSeparator matches the textual conjunction as a whole word so that
// symbols such as "band" or "ANDx" survive intact.
var wordSeparator = regexp.MustCompile(`\b(?:AND|and)\b`)

// HasSeparator reports whether s contains any conjunction notation.
func HasSeparator(s string) bool {
	return strings.ContainsAny(s, "∧^&;|,") || wordSeparator.MatchString(s)
}

// SplitPremises splits a premise expression into symbols. Fragments are
// trimmed, empty fragments are discarded and duplicates keep their first
// position.
func SplitPremises(expr string) []ir.Symbol {
	expr = wordSeparator.ReplaceAllString(expr, ",")
	expr = symbolSeparators.Replace(expr)

	seen := make(map[ir.Symbol]struct{})
	var out []ir.Symbol
	for _, part := range strings.Split(expr, ",") {
		sym := NormalizeSymbol(part)
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// NormalizeSymbol trims s and converts it to NFC.
func NormalizeSymbol(s string) ir.Symbol {
	return ir.Symbol(norm.NFC.String(strings.TrimSpace(s)))
}

// NormalizeSymbols applies NormalizeSymbol to every entry, dropping empty
// and duplicate symbols.
func NormalizeSymbols(syms []ir.Symbol) []ir.Symbol {
	seen := make(map[ir.Symbol]struct{}, len(syms))
	out := make([]ir.Symbol, 0, len(syms))
	for _, s := range syms {
		n := NormalizeSymbol(string(s))
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// DefaultNote synthesizes the note of a rule that has none.
func DefaultNote(premises []ir.Symbol, conclusion ir.Symbol) string {
	return fmt.Sprintf("derive %s from %s", conclusion, ir.JoinSymbols(premises, ", "))
}

// Normalizer converts raw records into rules.
type Normalizer struct {
	classify Classifier
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClassifier replaces the default symbol classifier.
func WithClassifier(c Classifier) Option {
	return func(n *Normalizer) {
		if c != nil {
			n.classify = c
		}
	}
}

// NewNormalizer creates a normalizer.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{classify: Classify}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Rule normalizes a single record. ok is false when the record must be
// dropped; reason then names the defect.
func (n *Normalizer) Rule(raw ir.RawRule) (rule ir.Rule, reason string, ok bool) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return ir.Rule{}, ReasonEmptyID, false
	}
	conclusion := NormalizeSymbol(raw.Right)
	if conclusion == "" {
		return ir.Rule{}, ReasonEmptyConclusion, false
	}
	premises := SplitPremises(raw.Left)
	if len(premises) == 0 {
		return ir.Rule{}, ReasonNoPremises, false
	}

	note := strings.TrimSpace(raw.Note)
	if note == "" {
		note = DefaultNote(premises, conclusion)
	}
	return ir.Rule{
		ID:         id,
		Premises:   premises,
		Conclusion: conclusion,
		Category:   n.classify(conclusion),
		Note:       note,
	}, "", true
}

// Normalize builds a rule table from raw records. Malformed records are
// dropped and returned as rejections; they are never errors. When two
// records share an id the later one wins.
func (n *Normalizer) Normalize(raws []ir.RawRule) (*ir.RuleTable, []Rejection) {
	var (
		rules    = make([]ir.Rule, 0, len(raws))
		rejected []Rejection
	)
	for i, raw := range raws {
		rule, reason, ok := n.Rule(raw)
		if !ok {
			slog.Debug("dropping malformed rule", "index", i, "rule_id", raw.ID, "reason", reason)
			rejected = append(rejected, Rejection{Index: i, ID: strings.TrimSpace(raw.ID), Reason: reason})
			continue
		}
		rules = append(rules, rule)
	}
	return ir.NewRuleTable(rules), rejected
}

// Normalize builds a rule table with the default classifier.
func Normalize(raws []ir.RawRule) (*ir.RuleTable, []Rejection) {
	return NewNormalizer().Normalize(raws)
}
