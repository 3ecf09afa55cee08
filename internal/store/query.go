package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/deduce/internal/ir"
)

// Predicate is a condition on the runs table. Predicates compile to
// parameterized SQL; values are never interpolated.
type Predicate interface {
	predicateNode()
}

// Equals matches rows whose column equals Value.
type Equals struct {
	Column string
	Value  any // string, int64 or bool
}

// Includes matches rows whose JSON array column has Value as an element.
type Includes struct {
	Column string
	Value  string
}

// And is a conjunction. An empty And matches every row.
type And struct {
	Predicates []Predicate
}

func (Equals) predicateNode()   {}
func (Includes) predicateNode() {}
func (And) predicateNode()      {}

// scalarColumns may appear in Equals; arrayColumns hold canonical JSON
// arrays and may appear in Includes.
var (
	scalarColumns = map[string]bool{
		"id": true, "seq": true, "strategy": true, "rulebook_hash": true,
		"success": true, "failure_code": true, "failure_symbol": true,
	}
	arrayColumns = map[string]bool{
		"facts": true, "goals": true, "full_trace": true, "optimal_trace": true, "dropped": true,
	}
)

// RunFilter selects stored runs. Zero fields match everything.
type RunFilter struct {
	Strategy ir.Strategy
	Success  *bool
	Goal     ir.Symbol // one of the run's goals
	Rule     string    // fired in the full trace
}

// Predicate converts the filter into a conjunction.
func (f RunFilter) Predicate() Predicate {
	var and And
	if f.Strategy != "" {
		and.Predicates = append(and.Predicates, Equals{Column: "strategy", Value: string(f.Strategy)})
	}
	if f.Success != nil {
		and.Predicates = append(and.Predicates, Equals{Column: "success", Value: *f.Success})
	}
	if f.Goal != "" {
		and.Predicates = append(and.Predicates, Includes{Column: "goals", Value: string(f.Goal)})
	}
	if f.Rule != "" {
		and.Predicates = append(and.Predicates, Includes{Column: "full_trace", Value: f.Rule})
	}
	return and
}

// compileWhere compiles p into a WHERE fragment and its parameters.
func compileWhere(p Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case Equals:
		if !scalarColumns[pred.Column] {
			return "", nil, fmt.Errorf("unknown column %q", pred.Column)
		}
		switch v := pred.Value.(type) {
		case string, int64:
			return pred.Column + " = ?", []any{v}, nil
		case int:
			return pred.Column + " = ?", []any{int64(v)}, nil
		case bool:
			// success is stored as INTEGER
			if v {
				return pred.Column + " = ?", []any{int64(1)}, nil
			}
			return pred.Column + " = ?", []any{int64(0)}, nil
		default:
			return "", nil, fmt.Errorf("unsupported value type for %s: %T", pred.Column, pred.Value)
		}

	case Includes:
		if !arrayColumns[pred.Column] {
			return "", nil, fmt.Errorf("unknown array column %q", pred.Column)
		}
		sql := fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(runs.%s) WHERE json_each.value = ?)", pred.Column)
		return sql, []any{pred.Value}, nil

	case And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil
		}
		parts := make([]string, 0, len(pred.Predicates))
		var params []any
		for _, sub := range pred.Predicates {
			sql, subParams, err := compileWhere(sub)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, subParams...)
		}
		return strings.Join(parts, " AND "), params, nil

	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// QueryRuns returns the runs matching p without their process logs,
// ordered by seq ASC, id ASC.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) QueryRuns(ctx context.Context, p Predicate) ([]ir.Run, error) {
	where, params, err := compileWhere(p)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT`+runColumns+`
		FROM runs
		WHERE `+where+`
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, params...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
