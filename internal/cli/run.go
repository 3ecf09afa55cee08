package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/deduce/internal/engine"
	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Strategy string
	Facts    []string
	Goals    []string
	MaxSteps int
	MaxDepth int
	Database string

	// IDs overrides the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs engine.RunIDGenerator
}

// RunOutput is the payload of the run command.
type RunOutput struct {
	Rulebook string        `json:"rulebook"`
	RunID    string        `json:"run_id,omitempty"`
	Dropped  int           `json:"dropped_records,omitempty"`
	Result   engine.Result `json:"result"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommandWith(&RunOptions{RootOptions: rootOpts})
}

func newRunCommandWith(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <rulebook>",
		Short: "Derive the goals of a rulebook",
		Long: `Run one inference strategy over a rulebook.

Strategies:
  forward   chain from the facts until every goal is known
  backward  greedy goal reduction, never revisits a choice
  search    backtracking goal reduction

--facts and --goals replace the rulebook's own lists. With --db the run,
its process log and its rulebook are stored for trace and replay.

Exit codes:
  0 - Goals derived
  1 - No proof found
  2 - Command error (unreadable rulebook, bad flags, database errors)

Examples:
  deduce run ./triangle.yaml
  deduce run ./triangle.cue --strategy search --goals A
  deduce run ./triangle.yaml --facts a,b,C --goals A --db ./runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInference(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", string(ir.StrategyForward), "forward, backward or search")
	cmd.Flags().StringSliceVar(&opts.Facts, "facts", nil, "given facts (comma separated)")
	cmd.Flags().StringSliceVar(&opts.Goals, "goals", nil, "goal facts (comma separated)")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "firing budget for forward and backward (0 scales with the rulebook)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "depth budget for search (0 scales with the rulebook)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "store the run in this SQLite database")

	return cmd
}

func runInference(ctx context.Context, opts *RunOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := newFormatter(opts.RootOptions, cmd)

	strategy, err := ir.ParseStrategy(opts.Strategy)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --strategy", err)
	}
	if opts.MaxSteps < 0 || opts.MaxDepth < 0 {
		return out.Fail(ExitCommandError, ErrCodeInvalidFlag, "budgets must be non-negative", nil)
	}

	p, err := loadProblem(path, opts.Facts, opts.Goals)
	if err != nil {
		return out.Fail(ExitCommandError, loadErrorCode(err), "failed to load rulebook", err)
	}
	if len(p.Goals) == 0 {
		return out.Fail(ExitCommandError, ErrCodeInvalidFlag, "no goals: set --goals or add goals to the rulebook", nil)
	}
	out.VerboseLog("loaded %s: %d rules (%d records dropped)", p.Book.Name, p.Table.Len(), p.Dropped)

	var engOpts []engine.Option
	if opts.MaxSteps > 0 {
		engOpts = append(engOpts, engine.WithMaxSteps(opts.MaxSteps))
	}
	if opts.MaxDepth > 0 {
		engOpts = append(engOpts, engine.WithMaxDepth(opts.MaxDepth))
	}
	res, err := engine.New(p.Table, engOpts...).Run(strategy, p.Facts, p.Goals)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeInvalidFlag, "run failed", err)
	}

	result := RunOutput{Rulebook: p.Book.Name, Dropped: p.Dropped, Result: res}
	if opts.Database != "" {
		id, err := persistRun(ctx, opts, p.Table, res)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to store run", err)
		}
		result.RunID = id
		slog.Info("run stored", "run_id", id, "db", opts.Database)
	}

	if out.JSON() {
		return outputRunJSON(out, result)
	}
	return outputRunText(out.Writer, result, opts.Verbose)
}

// persistRun records res in the database with the next seq after the
// stored history.
func persistRun(ctx context.Context, opts *RunOptions, table *ir.RuleTable, res engine.Result) (string, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer st.Close()

	last, err := st.GetLastSeq(ctx)
	if err != nil {
		return "", err
	}
	hash, err := ir.RulebookHash(table)
	if err != nil {
		return "", err
	}

	ids := opts.IDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	run := res.Record(ids.Generate(), engine.NewClockAt(last).Next(), hash)
	if err := st.WriteRun(ctx, run, table); err != nil {
		return "", err
	}
	return run.ID, nil
}

func outputRunJSON(out *OutputFormatter, result RunOutput) error {
	resp := CLIResponse{Status: "ok", Data: result, RunID: result.RunID}
	if f := result.Result.Failure; f != nil {
		resp.Status = "error"
		resp.Error = &CLIError{Code: string(f.Code), Message: f.Message, Details: f.Details}
	}
	if err := out.Encode(resp); err != nil {
		return err
	}
	if !result.Result.Success {
		return NewExitError(ExitFailure, "no proof found")
	}
	return nil
}

func outputRunText(w io.Writer, result RunOutput, verbose bool) error {
	res := result.Result
	if verbose {
		fmt.Fprintln(w, "Process log:")
		writeLog(w, res.Log)
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, res.Summary)
	if result.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", result.RunID)
	}

	if !res.Success {
		return NewExitError(ExitFailure, "no proof found")
	}
	return nil
}

// writeLog prints one line per process log entry.
func writeLog(w io.Writer, log []ir.Snapshot) {
	for _, s := range log {
		fmt.Fprintf(w, "  %3d %-4s", s.Step, s.Action)
		if s.Rule != "" {
			fmt.Fprintf(w, " %s", s.Rule)
		}
		if s.Goal != "" {
			fmt.Fprintf(w, " goal=%s", s.Goal)
		}
		if s.Depth > 0 {
			fmt.Fprintf(w, " depth=%d", s.Depth)
		}
		fmt.Fprintf(w, " {%s}", ir.JoinSymbols(s.Set, ", "))
		if s.Note != "" {
			fmt.Fprintf(w, "  %s", s.Note)
		}
		fmt.Fprintln(w)
	}
}
