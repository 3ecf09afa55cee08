package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/deduce/internal/engine"
	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/store"
	"github.com/roach88/deduce/internal/trace"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string      `json:"run_id"`
	Strategy      ir.Strategy `json:"strategy"`
	Success       bool        `json:"success"`
	Deterministic bool        `json:"deterministic"`
	// Sound is true when a successful run's optimal trace fires in order
	// from its facts and derives its goals. Failed runs are vacuously
	// sound.
	Sound  bool   `json:"sound"`
	Detail string `json:"detail,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs     []ReplayRunResult `json:"runs"`
	Total    int               `json:"total"`
	Verified bool              `json:"verified"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run stored runs and verify their outcome",
		Long: `Re-execute stored runs against their stored rulebooks.

Each run is repeated with the strategy, facts, goals and budgets it was
recorded with. The replayed outcome must match the stored one
(determinism) and a successful run's optimal trace must derive its goals
when fired in order (soundness).

Exit codes:
  0 - All runs verified
  1 - A run is non-deterministic or unsound
  2 - Command error (database not found, unknown run, etc.)

Examples:
  deduce replay --db ./runs.db
  deduce replay --db ./runs.db --run 0190b6a2-...
  deduce replay --db ./runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := newFormatter(opts.RootOptions, cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	var runs []ir.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, sql.ErrNoRows) {
			return out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		}
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
		}
		runs = []ir.Run{run}
	} else {
		runs, err = st.ListRuns(ctx)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
		}
	}

	result := ReplayResult{
		Runs:     make([]ReplayRunResult, 0, len(runs)),
		Total:    len(runs),
		Verified: true,
	}
	for _, run := range runs {
		r, err := replayRun(ctx, st, run)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}
		out.VerboseLog("replayed %s: deterministic=%t sound=%t", r.RunID, r.Deterministic, r.Sound)
		result.Runs = append(result.Runs, r)
		if !r.Deterministic || !r.Sound {
			result.Verified = false
		}
	}

	if out.JSON() {
		return outputReplayJSON(out, result)
	}
	return outputReplayText(out.Writer, result)
}

// replayRun repeats one run with its recorded limits and compares the
// outcome digests.
func replayRun(ctx context.Context, st *store.Store, run ir.Run) (ReplayRunResult, error) {
	res := ReplayRunResult{RunID: run.ID, Strategy: run.Strategy, Success: run.Success, Sound: true}

	table, err := st.ReadRulebook(ctx, run.RulebookHash)
	if err != nil {
		return res, err
	}

	again, err := engine.New(table, engine.Options(run.Limits)...).Run(run.Strategy, run.Facts, run.Goals)
	if err != nil {
		return res, err
	}
	replayed := again.Record(run.ID, run.Seq, run.RulebookHash)

	want, err := ir.OutcomeHash(run)
	if err != nil {
		return res, err
	}
	got, err := ir.OutcomeHash(replayed)
	if err != nil {
		return res, err
	}
	res.Deterministic = want == got
	if !res.Deterministic {
		res.Detail = fmt.Sprintf("stored %s, replayed %s", run.FullTrace, replayed.FullTrace)
	}

	if run.Success {
		if _, err := trace.Replay(run.OptimalTrace, table, run.Facts, run.Goals); err != nil {
			res.Sound = false
			res.Detail = err.Error()
		}
	}
	return res, nil
}

func outputReplayJSON(out *OutputFormatter, result ReplayResult) error {
	resp := CLIResponse{Status: "ok", Data: result}
	if !result.Verified {
		resp.Status = "error"
		resp.Error = &CLIError{Code: replayErrorCode(result), Message: "replay verification failed"}
	}
	if err := out.Encode(resp); err != nil {
		return err
	}
	if !result.Verified {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

func replayErrorCode(result ReplayResult) string {
	for _, r := range result.Runs {
		if !r.Deterministic {
			return ErrCodeDeterminism
		}
	}
	return ErrCodeUnsound
}

func outputReplayText(w io.Writer, result ReplayResult) error {
	if result.Total == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.Total)
	for _, r := range result.Runs {
		status := "✓"
		if !r.Deterministic || !r.Sound {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s (%s)\n", status, r.RunID, r.Strategy)
		if !r.Deterministic {
			fmt.Fprintf(w, "  Non-deterministic: %s\n", r.Detail)
		} else if !r.Sound {
			fmt.Fprintf(w, "  Unsound: %s\n", r.Detail)
		}
	}

	if result.Verified {
		fmt.Fprintln(w, "✓ All runs verified")
		return nil
	}
	fmt.Fprintln(w, "✗ Replay verification failed")
	return NewExitError(ExitFailure, "replay verification failed")
}
