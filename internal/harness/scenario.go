package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/deduce/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Strategy is forward, backward or search.
	Strategy string `yaml:"strategy"`

	// Rulebook is a path to a rulebook file or CUE directory, relative
	// to the scenario file.
	Rulebook string `yaml:"rulebook,omitempty"`

	// Rules are inline rule records, appended after the rulebook's.
	Rules []RuleRecord `yaml:"rules,omitempty"`

	// Facts and Goals default to the rulebook's when empty.
	Facts []string `yaml:"facts,omitempty"`
	Goals []string `yaml:"goals,omitempty"`

	// MaxSteps and MaxDepth override the engine budgets when positive.
	MaxSteps int `yaml:"max_steps,omitempty"`
	MaxDepth int `yaml:"max_depth,omitempty"`

	// Expect states the verdict and traces the run must produce.
	Expect *Expectation `yaml:"expect,omitempty"`

	// Assertions are checked against the traces.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// dir is the directory of the scenario file.
	dir string
}

// RuleRecord is an inline rule.
type RuleRecord struct {
	ID         string `yaml:"id"`
	Premises   string `yaml:"premises"`
	Conclusion string `yaml:"conclusion"`
	Note       string `yaml:"note,omitempty"`
}

// Expectation specifies the expected outcome. Unset fields are not
// checked.
type Expectation struct {
	Success *bool `yaml:"success,omitempty"`

	// Failure is the expected failure code, e.g. NO_APPLICABLE_RULE.
	Failure string `yaml:"failure,omitempty"`

	// Symbol is the goal the failure is reported against.
	Symbol string `yaml:"symbol,omitempty"`

	FullTrace    []string `yaml:"full_trace,omitempty"`
	OptimalTrace []string `yaml:"optimal_trace,omitempty"`
	Dropped      []string `yaml:"dropped,omitempty"`
}

// Assertion validates a trace.
type Assertion struct {
	// Type is trace_contains, trace_order, trace_count or derives.
	Type string `yaml:"type"`

	// Trace selects "full" (default) or "optimal".
	Trace string `yaml:"trace,omitempty"`

	// Rule is the rule id (trace_contains, optionally trace_count).
	Rule string `yaml:"rule,omitempty"`

	// Rules is the expected relative order (trace_order).
	Rules []string `yaml:"rules,omitempty"`

	// Count is the expected length, or occurrences of Rule (trace_count).
	Count int `yaml:"count,omitempty"`

	// Symbol must be derived by replaying the trace (derives).
	Symbol string `yaml:"symbol,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertDerives       = "derives"
)

// Trace selectors.
const (
	TraceFull    = "full"
	TraceOptimal = "optimal"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.dir = filepath.Dir(path)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file directly under dir, in
// file name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// RulebookPath returns the rulebook path resolved against the scenario
// file's directory.
func (s *Scenario) RulebookPath() string {
	if s.Rulebook == "" || filepath.IsAbs(s.Rulebook) {
		return s.Rulebook
	}
	return filepath.Join(s.dir, s.Rulebook)
}

// rawRules converts the inline records.
func (s *Scenario) rawRules() []ir.RawRule {
	out := make([]ir.RawRule, len(s.Rules))
	for i, r := range s.Rules {
		out[i] = ir.RawRule{ID: r.ID, Left: r.Premises, Right: r.Conclusion, Note: r.Note}
	}
	return out
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := ir.ParseStrategy(s.Strategy); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	if s.Rulebook == "" && len(s.Rules) == 0 {
		return fmt.Errorf("rulebook or rules is required")
	}

	if s.Rulebook != "" {
		if _, err := os.Stat(s.RulebookPath()); os.IsNotExist(err) {
			return fmt.Errorf("rulebook not found: %s", s.RulebookPath())
		}
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	if s.MaxSteps < 0 || s.MaxDepth < 0 {
		return fmt.Errorf("max_steps and max_depth must be non-negative")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Trace {
	case "", TraceFull, TraceOptimal:
	default:
		return fmt.Errorf("assertions[%d]: trace must be %q or %q", index, TraceFull, TraceOptimal)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Rule == "" {
			return fmt.Errorf("assertions[%d]: rule is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Rules) == 0 {
			return fmt.Errorf("assertions[%d]: rules list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertDerives:
		if a.Symbol == "" {
			return fmt.Errorf("assertions[%d]: symbol is required for derives", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
