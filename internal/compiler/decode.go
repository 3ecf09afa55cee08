package compiler

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/deduce/internal/ir"
)

// DecodeError is a YAML/JSON rulebook error with its source line.
type DecodeError struct {
	Line    int
	Field   string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Rule record keys, compared after lowercasing and removing spaces and
// underscores, so "Ve Trai", "Ve_Trai" and "veTrai" are the same key.
var recordKeys = map[string]string{
	"id":         "id",
	"premises":   "premises",
	"left":       "premises",
	"vetrai":     "premises",
	"if":         "premises",
	"conclusion": "conclusion",
	"right":      "conclusion",
	"vephai":     "conclusion",
	"then":       "conclusion",
	"note":       "note",
}

func canonicalKey(k string) string {
	k = strings.ToLower(k)
	k = strings.ReplaceAll(k, " ", "")
	return strings.ReplaceAll(k, "_", "")
}

// DecodeRulebook reads a YAML or JSON rulebook. The document is either a
// bare sequence of rule records or a mapping with rules, facts, goals and
// name. Scalars keep their source text, so numeric ids come through as
// written. Unknown record keys are ignored.
func DecodeRulebook(data []byte) (*ir.Rulebook, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode rulebook: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, &DecodeError{Field: "document", Message: "empty rulebook"}
	}
	doc := root.Content[0]

	book := &ir.Rulebook{}
	switch doc.Kind {
	case yaml.SequenceNode:
		rules, err := decodeRules(doc)
		if err != nil {
			return nil, err
		}
		book.Rules = rules
		return book, nil
	case yaml.MappingNode:
	default:
		return nil, &DecodeError{Line: doc.Line, Field: "document", Message: "expected a mapping or a sequence of rules"}
	}

	sawRules := false
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		var err error
		switch key.Value {
		case "name":
			book.Name, err = decodeText(val, "name")
		case "rules":
			sawRules = true
			book.Rules, err = decodeRules(val)
		case "facts":
			book.Facts, err = decodeSymbols(val, "facts")
		case "goals":
			book.Goals, err = decodeSymbols(val, "goals")
		}
		if err != nil {
			return nil, err
		}
	}
	if !sawRules {
		return nil, &DecodeError{Line: doc.Line, Field: "rules", Message: "rules are required"}
	}
	return book, nil
}

func decodeRules(n *yaml.Node) ([]ir.RawRule, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, &DecodeError{Line: n.Line, Field: "rules", Message: "expected a sequence"}
	}
	rules := make([]ir.RawRule, 0, len(n.Content))
	for i, item := range n.Content {
		raw, err := decodeRecord(item, i)
		if err != nil {
			return nil, err
		}
		rules = append(rules, raw)
	}
	return rules, nil
}

func decodeRecord(n *yaml.Node, index int) (ir.RawRule, error) {
	var raw ir.RawRule
	if n.Kind != yaml.MappingNode {
		return raw, &DecodeError{Line: n.Line, Field: fmt.Sprintf("rules[%d]", index), Message: "expected a mapping"}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		field := fmt.Sprintf("rules[%d].%s", index, key.Value)
		var err error
		switch recordKeys[canonicalKey(key.Value)] {
		case "id":
			raw.ID, err = decodeText(val, field)
		case "premises":
			raw.Left, err = decodeJoined(val, field)
		case "conclusion":
			raw.Right, err = decodeText(val, field)
		case "note":
			raw.Note, err = decodeText(val, field)
		}
		if err != nil {
			return raw, err
		}
	}
	return raw, nil
}

func decodeText(n *yaml.Node, field string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", &DecodeError{Line: n.Line, Field: field, Message: "expected a scalar"}
	}
	if n.Tag == "!!null" {
		return "", nil
	}
	return strings.TrimSpace(n.Value), nil
}

// decodeJoined accepts a scalar or a sequence of scalars joined with ", ".
func decodeJoined(n *yaml.Node, field string) (string, error) {
	if n.Kind != yaml.SequenceNode {
		return decodeText(n, field)
	}
	parts := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := decodeText(item, field)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

func decodeSymbols(n *yaml.Node, field string) ([]ir.Symbol, error) {
	if n.Kind == yaml.SequenceNode {
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			s, err := decodeText(item, field)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return ir.Symbols(out...), nil
	}
	s, err := decodeText(n, field)
	if err != nil {
		return nil, err
	}
	return ir.Symbols(strings.Split(s, ",")...), nil
}
