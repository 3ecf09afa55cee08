// Package harness provides conformance testing for rulebooks and engines.
//
// A scenario names a rulebook, a strategy, facts and goals, and states what
// the run must produce. The harness executes the run through the engine,
// persists it to a scratch store, reads it back, and checks expectations,
// assertions and the trace laws.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: triangle_forward
//	description: "Forward chaining derives A through c"
//	strategy: forward
//	rulebook: ../rulebooks/triangle.yaml   # or inline rules:
//	rules:
//	  - {id: r1, premises: "a, b", conclusion: c}
//	facts: [a, b, C]
//	goals: [A]
//	expect:
//	  success: true
//	  full_trace: [r1, r2]
//	  optimal_trace: [r1, r2]
//	assertions:
//	  - type: trace_contains
//	    trace: optimal
//	    rule: r2
//	  - type: trace_order
//	    rules: [r1, r2]
//	  - type: trace_count
//	    count: 2
//	  - type: derives
//	    symbol: c
//
// # Assertion Types
//
//   - trace_contains: a rule appears in the trace
//   - trace_order: rules appear in the given relative order
//   - trace_count: the trace has exactly N rules (or rule appears N times)
//   - derives: replaying the trace derives the symbol
//
// Assertions read the full trace unless trace: optimal is set.
//
// # Laws
//
// Every successful run is also checked for:
//   - the optimal trace is a subsequence of the full trace
//   - minimizing the optimal trace returns it unchanged
//   - the optimal trace replays forward from the facts to every goal
//   - no rule id occurs twice in the full trace
//
// # Deterministic Testing
//
// Runs are stamped with testutil.SequentialRunIDGenerator ids and a
// testutil.DeterministicClock, so golden snapshots are byte-identical
// across executions.
package harness
