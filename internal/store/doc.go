// Package store provides SQLite-backed run history.
//
// The store is append-only and holds:
//   - Rulebooks: normalized rule tables, content-addressed by ir.RulebookHash
//   - Runs: one row per inference run with inputs, verdict and both traces
//   - Snapshots: the process log of each run, one row per step
//
// # Ordering
//
// Runs are ordered by their logical seq (engine.Clock), never by wall
// time. Every list query ends in ORDER BY seq ASC, id ASC COLLATE BINARY so
// results are identical across processes.
//
// # Encoding
//
// Symbol lists and traces are stored as RFC 8785 canonical JSON
// (ir.MarshalCanonical), so equal values always produce equal column text.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
