package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show one run with its process log

	// Listing filters
	Strategy string
	Status   string // succeeded or failed
	Goal     string
	Rule     string
}

// RunSummary is one line of the run listing.
type RunSummary struct {
	ID           string      `json:"id"`
	Seq          int64       `json:"seq"`
	Strategy     ir.Strategy `json:"strategy"`
	Success      bool        `json:"success"`
	FailureCode  string      `json:"failure_code,omitempty"`
	Goals        []ir.Symbol `json:"goals"`
	FullTrace    ir.Trace    `json:"full_trace"`
	OptimalTrace ir.Trace    `json:"optimal_trace"`
}

// TraceListing is the payload of trace without --run.
type TraceListing struct {
	Runs  []RunSummary `json:"runs"`
	Total int          `json:"total"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show stored runs",
		Long: `Show the run history of a database.

Without --run every stored run is listed in seq order; --strategy,
--status, --goal and --rule narrow the listing. With --run one run is shown with its process log: each rule fired, goal replaced, undo and
the working or goal set after it.

Examples:
  deduce trace --db ./runs.db
  deduce trace --db ./runs.db --status failed --goal A
  deduce trace --db ./runs.db --run 0190b6a2-...
  deduce trace --db ./runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "list only runs of this strategy")
	cmd.Flags().StringVar(&opts.Status, "status", "", "list only succeeded or failed runs")
	cmd.Flags().StringVar(&opts.Goal, "goal", "", "list only runs with this goal")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "list only runs whose full trace fired this rule")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := newFormatter(opts.RootOptions, cmd)

	filter, err := opts.filter()
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid listing filter", err)
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, sql.ErrNoRows) {
			return out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		}
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
		}
		if out.JSON() {
			return out.Encode(CLIResponse{Status: "ok", Data: run, RunID: run.ID})
		}
		writeRunText(out.Writer, run)
		return nil
	}

	runs, err := st.QueryRuns(ctx, filter.Predicate())
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
	}
	listing := TraceListing{Runs: make([]RunSummary, 0, len(runs)), Total: len(runs)}
	for _, r := range runs {
		listing.Runs = append(listing.Runs, RunSummary{
			ID:           r.ID,
			Seq:          r.Seq,
			Strategy:     r.Strategy,
			Success:      r.Success,
			FailureCode:  r.FailureCode,
			Goals:        r.Goals,
			FullTrace:    r.FullTrace,
			OptimalTrace: r.OptimalTrace,
		})
	}

	if out.JSON() {
		return out.Success(listing)
	}
	writeListingText(out.Writer, listing)
	return nil
}

func (o *TraceOptions) filter() (store.RunFilter, error) {
	var f store.RunFilter
	if o.Strategy != "" {
		s, err := ir.ParseStrategy(o.Strategy)
		if err != nil {
			return f, err
		}
		f.Strategy = s
	}
	switch o.Status {
	case "":
	case "succeeded":
		ok := true
		f.Success = &ok
	case "failed":
		ok := false
		f.Success = &ok
	default:
		return f, fmt.Errorf("--status %q: must be succeeded or failed", o.Status)
	}
	f.Goal = ir.Symbol(strings.TrimSpace(o.Goal))
	f.Rule = strings.TrimSpace(o.Rule)
	return f, nil
}

// openExisting opens a database that must already exist; store.Open
// would create an empty one.
func openExisting(path string) (*store.Store, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}

func writeListingText(w io.Writer, listing TraceListing) {
	if listing.Total == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return
	}
	fmt.Fprintf(w, "%d run(s)\n", listing.Total)
	for _, r := range listing.Runs {
		status := "✓"
		if !r.Success {
			status = "✗ " + r.FailureCode
		}
		fmt.Fprintf(w, "%4d %s %-8s goals {%s} optimal %s %s\n",
			r.Seq, r.ID, r.Strategy, ir.JoinSymbols(r.Goals, ", "), r.OptimalTrace, status)
	}
}

func writeRunText(w io.Writer, run ir.Run) {
	fmt.Fprintf(w, "Run %s (seq %d)\n", run.ID, run.Seq)
	fmt.Fprintf(w, "Strategy: %s\n", run.Strategy)
	fmt.Fprintf(w, "Rulebook: %s\n", run.RulebookHash)
	fmt.Fprintf(w, "Limits: steps %d, expansions %d, depth %d\n", run.Limits.Steps, run.Limits.Expansions, run.Limits.Depth)
	fmt.Fprintln(w, "Process log:")
	writeLog(w, run.Log)
	fmt.Fprintln(w)
	fmt.Fprint(w, run.Summary)
}
