// Package ir provides the shared data model for deduce.
//
// This package contains type definitions, canonical serialization and
// content hashes only. All other internal packages import ir; ir imports
// nothing internal. This keeps the model the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Symbols are opaque strings compared by exact equality (no unification)
//   - A Rule is immutable once normalized; RuleTable hands out copies
//   - Traces are rule-id sequences in derivation order (axioms outward)
//   - All JSON tags use snake_case
//   - Runs are ordered by logical seq, never by wall-clock time
package ir
