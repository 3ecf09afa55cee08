package testutil

import (
	"fmt"
	"sync"
)

// SequentialRunIDGenerator yields "<prefix>-0001", "<prefix>-0002", ...
//
// Unlike engine.FixedGenerator it never runs out, and unlike
// engine.UUIDv7Generator its output is stable across executions, which
// keeps golden files byte-identical.
//
// Implements engine.RunIDGenerator.
type SequentialRunIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialRunIDGenerator creates a generator. An empty prefix
// becomes "run".
func NewSequentialRunIDGenerator(prefix string) *SequentialRunIDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialRunIDGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialRunIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
