package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/deduce/internal/ir"
)

// WriteRun stores a run together with its process log and the rule table
// it ran against. The three writes happen in one transaction.
//
// The rulebook is content-addressed: writing a second run over the same
// table reuses the stored rulebook. Run ids are unique; writing a run
// whose id already exists is a no-op (ON CONFLICT DO NOTHING), so a retry
// after a partial failure is safe.
//
// run.RulebookHash is filled in when empty; when set it must match the
// table's hash.
func (s *Store) WriteRun(ctx context.Context, run ir.Run, table *ir.RuleTable) error {
	hash, err := ir.RulebookHash(table)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if run.RulebookHash == "" {
		run.RulebookHash = hash
	} else if run.RulebookHash != hash {
		return fmt.Errorf("write run: rulebook hash %s does not match table hash %s", run.RulebookHash, hash)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := writeRulebook(ctx, tx, hash, table); err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	inserted, err := writeRunRow(ctx, tx, run)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if inserted {
		if err := writeSnapshots(ctx, tx, run.ID, run.Log); err != nil {
			return fmt.Errorf("write run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// WriteRulebook stores a rule table on its own and returns its hash.
func (s *Store) WriteRulebook(ctx context.Context, table *ir.RuleTable) (string, error) {
	hash, err := ir.RulebookHash(table)
	if err != nil {
		return "", fmt.Errorf("write rulebook: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write rulebook: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeRulebook(ctx, tx, hash, table); err != nil {
		return "", fmt.Errorf("write rulebook: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write rulebook: commit: %w", err)
	}
	return hash, nil
}

func writeRulebook(ctx context.Context, tx *sql.Tx, hash string, table *ir.RuleTable) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO rulebooks (hash, rule_count)
		VALUES (?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, table.Len())
	if err != nil {
		return fmt.Errorf("insert rulebook: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert rulebook: rows affected: %w", err)
	}
	if n == 0 {
		return nil // same content already stored
	}

	for pos, r := range table.Rules() {
		premises, err := marshalList(r.Premises)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rulebook_rules
			(rulebook_hash, position, id, premises, conclusion, category, note)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, hash, pos, r.ID, premises, string(r.Conclusion), r.Category.String(), r.Note)
		if err != nil {
			return fmt.Errorf("insert rule %s: %w", r.ID, err)
		}
	}
	return nil
}

func writeRunRow(ctx context.Context, tx *sql.Tx, run ir.Run) (bool, error) {
	facts, err := marshalList(run.Facts)
	if err != nil {
		return false, err
	}
	goals, err := marshalList(run.Goals)
	if err != nil {
		return false, err
	}
	full, err := marshalList(run.FullTrace)
	if err != nil {
		return false, err
	}
	optimal, err := marshalList(run.OptimalTrace)
	if err != nil {
		return false, err
	}
	dropped, err := marshalList(run.Dropped)
	if err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, strategy, rulebook_hash, facts, goals, success,
		 failure_code, failure_symbol, failure_message,
		 full_trace, optimal_trace, dropped,
		 max_steps, max_expansions, max_depth,
		 summary, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		string(run.Strategy),
		run.RulebookHash,
		facts,
		goals,
		run.Success,
		run.FailureCode,
		string(run.FailureSymbol),
		run.FailureMessage,
		full,
		optimal,
		dropped,
		run.Limits.Steps,
		run.Limits.Expansions,
		run.Limits.Depth,
		run.Summary,
		run.EngineVersion,
		run.IRVersion,
	)
	if err != nil {
		return false, fmt.Errorf("insert run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert run: rows affected: %w", err)
	}
	return n > 0, nil
}

func writeSnapshots(ctx context.Context, tx *sql.Tx, runID string, log []ir.Snapshot) error {
	for _, snap := range log {
		set, err := marshalList(snap.Set)
		if err != nil {
			return err
		}
		tr, err := marshalList(snap.Trace)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshots
			(run_id, step, action, rule, goal, symbols, trace, depth, note)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, snap.Step, string(snap.Action), snap.Rule, string(snap.Goal), set, tr, snap.Depth, snap.Note)
		if err != nil {
			return fmt.Errorf("insert snapshot %d: %w", snap.Step, err)
		}
	}
	return nil
}
