package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/deduce/internal/ir"
)

const runColumns = `
	id, seq, strategy, rulebook_hash, facts, goals, success,
	failure_code, failure_symbol, failure_message,
	full_trace, optimal_trace, dropped,
	max_steps, max_expansions, max_depth,
	summary, engine_version, ir_version`

// ReadRun retrieves a run and its process log by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+runColumns+`
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		return ir.Run{}, err
	}

	run.Log, err = s.readSnapshots(ctx, id)
	if err != nil {
		return ir.Run{}, err
	}
	return run, nil
}

// ListRuns returns every run without its process log, ordered by
// seq ASC, id ASC.
//
// Returns an empty slice (not nil) if the store holds no runs.
func (s *Store) ListRuns(ctx context.Context) ([]ir.Run, error) {
	return s.QueryRuns(ctx, nil)
}

// LatestRun returns the run with the highest seq.
// Returns sql.ErrNoRows if the store is empty.
func (s *Store) LatestRun(ctx context.Context) (ir.Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`).Scan(&id)
	if err != nil {
		return ir.Run{}, err
	}
	return s.ReadRun(ctx, id)
}

// ReadRulebook rebuilds the rule table stored under hash.
// Returns sql.ErrNoRows if no rulebook has that hash.
func (s *Store) ReadRulebook(ctx context.Context, hash string) (*ir.RuleTable, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT rule_count FROM rulebooks WHERE hash = ?
	`, hash).Scan(&count)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, premises, conclusion, category, note
		FROM rulebook_rules
		WHERE rulebook_hash = ?
		ORDER BY position ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query rulebook rules: %w", err)
	}
	defer rows.Close()

	rules := make([]ir.Rule, 0, count)
	for rows.Next() {
		var (
			r                    ir.Rule
			premises, conclusion string
			category             string
		)
		if err := rows.Scan(&r.ID, &premises, &conclusion, &category, &r.Note); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if r.Premises, err = unmarshalSymbols(premises); err != nil {
			return nil, err
		}
		if r.Category, err = ir.ParseCategory(category); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		r.Conclusion = ir.Symbol(conclusion)
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rulebook rules: %w", err)
	}
	if len(rules) != count {
		return nil, fmt.Errorf("rulebook %s: expected %d rules, found %d", hash, count, len(rules))
	}
	return ir.NewRuleTable(rules), nil
}

// GetLastSeq returns the highest seq number used in the store.
// Used to resume the logical clock from the correct position.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM runs
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq from runs: %w", err)
	}
	return seq, nil
}

func (s *Store) readSnapshots(ctx context.Context, runID string) ([]ir.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, action, rule, goal, symbols, trace, depth, note
		FROM snapshots
		WHERE run_id = ?
		ORDER BY step ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	log := []ir.Snapshot{}
	for rows.Next() {
		var (
			snap        ir.Snapshot
			action      string
			goal        string
			symbols, tr string
		)
		if err := rows.Scan(&snap.Step, &action, &snap.Rule, &goal, &symbols, &tr, &snap.Depth, &snap.Note); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Action = ir.StepAction(action)
		snap.Goal = ir.Symbol(goal)
		if snap.Set, err = unmarshalSymbols(symbols); err != nil {
			return nil, err
		}
		if snap.Trace, err = unmarshalTrace(tr); err != nil {
			return nil, err
		}
		log = append(log, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return log, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads one runs row. sql.ErrNoRows passes through unwrapped.
func scanRun(row rowScanner) (ir.Run, error) {
	var (
		run                  ir.Run
		strategy             string
		failureSymbol        string
		facts, goals         string
		full, optimal, dropd string
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&strategy,
		&run.RulebookHash,
		&facts,
		&goals,
		&run.Success,
		&run.FailureCode,
		&failureSymbol,
		&run.FailureMessage,
		&full,
		&optimal,
		&dropd,
		&run.Limits.Steps,
		&run.Limits.Expansions,
		&run.Limits.Depth,
		&run.Summary,
		&run.EngineVersion,
		&run.IRVersion,
	)
	if err == sql.ErrNoRows {
		return ir.Run{}, err
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Strategy = ir.Strategy(strategy)
	run.FailureSymbol = ir.Symbol(failureSymbol)
	if run.Facts, err = unmarshalSymbols(facts); err != nil {
		return ir.Run{}, err
	}
	if run.Goals, err = unmarshalSymbols(goals); err != nil {
		return ir.Run{}, err
	}
	if run.FullTrace, err = unmarshalTrace(full); err != nil {
		return ir.Run{}, err
	}
	if run.OptimalTrace, err = unmarshalTrace(optimal); err != nil {
		return ir.Run{}, err
	}
	if run.Dropped, err = unmarshalDropped(dropd); err != nil {
		return ir.Run{}, err
	}
	return run, nil
}
