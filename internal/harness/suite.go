package harness

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Total     int               `json:"total"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Scenarios []ScenarioStatus  `json:"scenarios"`
	Failures  []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioStatus is the outcome of one scenario in a suite.
type ScenarioStatus struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
	// Snapshot is "written" when the golden file was created or
	// rewritten, "matched" when it was compared, and empty otherwise.
	Snapshot string `json:"snapshot,omitempty"`
}

// ScenarioFailure records why one scenario failed.
type ScenarioFailure struct {
	Scenario string   `json:"scenario"`
	Errors   []string `json:"errors"`
}

// SuiteOption configures RunSuite.
type SuiteOption func(*suiteConfig)

type suiteConfig struct {
	goldenDir string
	update    bool
	filter    string
}

// WithSnapshots compares the snapshot of every passing scenario with
// dir/{name}.golden. Missing files are written; update rewrites all of
// them.
func WithSnapshots(dir string, update bool) SuiteOption {
	return func(c *suiteConfig) {
		c.goldenDir = dir
		c.update = update
	}
}

// WithFilter runs only the scenarios whose name matches the
// filepath.Match pattern.
func WithFilter(pattern string) SuiteOption {
	return func(c *suiteConfig) {
		c.filter = pattern
	}
}

// RunSuite loads and executes every scenario in dir against one shared
// harness, so run ids and seq values continue across scenarios.
//
// A scenario that cannot be executed counts as failed; it does not stop
// the suite.
func RunSuite(ctx context.Context, dir string, opts ...SuiteOption) (*SuiteResult, error) {
	cfg := &suiteConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.filter != "" {
		if _, err := filepath.Match(cfg.filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	scenarios, err := LoadScenarios(dir)
	if err != nil {
		return nil, err
	}

	h, err := New()
	if err != nil {
		return nil, err
	}
	defer h.Close()

	res := &SuiteResult{Scenarios: []ScenarioStatus{}}
	for _, s := range scenarios {
		if cfg.filter != "" {
			if ok, _ := filepath.Match(cfg.filter, s.Name); !ok {
				continue
			}
		}

		status := ScenarioStatus{Name: s.Name}
		r, err := h.Run(ctx, s)
		switch {
		case err != nil:
			status.Errors = []string{fmt.Sprintf("execution error: %v", err)}
		case !r.Pass:
			status.Errors = r.Errors
		case cfg.goldenDir != "":
			status.Snapshot, err = compareSnapshot(cfg, s.Name, r)
			if err != nil {
				status.Errors = []string{err.Error()}
			}
		}
		status.Pass = len(status.Errors) == 0

		res.Total++
		if status.Pass {
			res.Passed++
		} else {
			res.Failed++
			res.Failures = append(res.Failures, ScenarioFailure{Scenario: s.Name, Errors: status.Errors})
		}
		res.Scenarios = append(res.Scenarios, status)
	}
	return res, nil
}

func compareSnapshot(cfg *suiteConfig, name string, r *Result) (string, error) {
	data, err := MarshalSnapshot(name, r)
	if err != nil {
		return "", err
	}
	written, err := CompareGoldenFile(cfg.goldenDir, name, data, cfg.update)
	var mismatch *GoldenMismatchError
	switch {
	case errors.As(err, &mismatch):
		return "", fmt.Errorf("golden mismatch: %s (rerun with --update to accept)", mismatch.Path)
	case err != nil:
		return "", err
	case written:
		return "written", nil
	default:
		return "matched", nil
	}
}
