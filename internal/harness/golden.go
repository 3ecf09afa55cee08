package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/deduce/internal/ir"
)

// Snapshot is the golden view of a scenario run. Run ids and seq values
// are left out so a scenario's snapshot does not depend on its position in
// a suite.
type Snapshot struct {
	ScenarioName string
	Run          ir.Run
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical
// JSON serialization; ir.MarshalCanonical only handles IR types and
// primitives.
func (s *Snapshot) toCanonicalMap() map[string]any {
	log := make([]any, len(s.Run.Log))
	for i, snap := range s.Run.Log {
		entry := map[string]any{
			"step":   snap.Step,
			"action": snap.Action,
			"set":    snap.Set,
			"trace":  snap.Trace,
		}
		if snap.Rule != "" {
			entry["rule"] = snap.Rule
		}
		if snap.Goal != "" {
			entry["goal"] = snap.Goal
		}
		if snap.Depth != 0 {
			entry["depth"] = snap.Depth
		}
		if snap.Note != "" {
			entry["note"] = snap.Note
		}
		log[i] = entry
	}

	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"strategy":      s.Run.Strategy,
		"rulebook_hash": s.Run.RulebookHash,
		"facts":         s.Run.Facts,
		"goals":         s.Run.Goals,
		"success":       s.Run.Success,
		"full_trace":    s.Run.FullTrace,
		"optimal_trace": s.Run.OptimalTrace,
		"dropped":       s.Run.Dropped,
		"summary":       s.Run.Summary,
		"log":           log,
	}
	if s.Run.FailureCode != "" {
		m["failure_code"] = s.Run.FailureCode
		m["failure_symbol"] = s.Run.FailureSymbol
	}
	return m
}

// MarshalSnapshot renders a result as canonical JSON.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snap := Snapshot{ScenarioName: name, Run: result.Run}
	return ir.MarshalCanonical(snap.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
//
// Options are applied after the defaults, so goldie.WithFixtureDir
// relocates the golden files.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...goldie.Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result, opts...)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result, opts ...goldie.Option) error {
	t.Helper()

	data, err := MarshalSnapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t, append([]goldie.Option{
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	}, opts...)...)
	g.Assert(t, name, data)

	return nil
}

// GoldenMismatchError reports a snapshot that differs from its file.
type GoldenMismatchError struct {
	Path string
}

func (e *GoldenMismatchError) Error() string {
	return fmt.Sprintf("snapshot differs from %s", e.Path)
}

// CompareGoldenFile is the non-test counterpart of AssertGolden used by
// the CLI. It compares data with dir/{name}.golden, or writes the file
// when update is set or the file does not exist yet. It reports whether
// the file was written.
func CompareGoldenFile(dir, name string, data []byte, update bool) (bool, error) {
	path := filepath.Join(dir, name+".golden")

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && !update:
		if !bytes.Equal(existing, data) {
			return false, &GoldenMismatchError{Path: path}
		}
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("read golden file: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create golden dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write golden file: %w", err)
	}
	return true, nil
}
