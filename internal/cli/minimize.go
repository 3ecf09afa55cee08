package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
	"github.com/roach88/deduce/internal/trace"
)

// MinimizeOptions holds flags for the minimize command.
type MinimizeOptions struct {
	*RootOptions
	Trace []string
	Facts []string
	Goals []string
}

// MinimizeOutput is the payload of the minimize command.
type MinimizeOutput struct {
	Full    ir.Trace `json:"full_trace"`
	Optimal ir.Trace `json:"optimal_trace"`
	Dropped []string `json:"dropped"`
	Unknown []string `json:"unknown,omitempty"`
	// Replays is true when the optimal trace fires in order from the
	// facts and derives every goal.
	Replays     bool   `json:"replays"`
	ReplayError string `json:"replay_error,omitempty"`
}

// NewMinimizeCommand creates the minimize command.
func NewMinimizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MinimizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "minimize <rulebook>",
		Short: "Prune a fired trace to the rules the goals need",
		Long: `Minimize a full trace against a rulebook.

The trace is walked from the last rule to the first; a rule is kept only
when its conclusion is still needed by a goal or by a kept rule.

Exit codes:
  0 - Trace minimized
  1 - The trace names rules the rulebook does not define
  2 - Command error

Examples:
  deduce minimize ./triangle.yaml --trace r5,r1,r2
  deduce minimize ./triangle.yaml --trace r1,r2 --facts a,b,C --goals A`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMinimize(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Trace, "trace", nil, "full trace in firing order (required)")
	_ = cmd.MarkFlagRequired("trace")
	cmd.Flags().StringSliceVar(&opts.Facts, "facts", nil, "given facts (comma separated)")
	cmd.Flags().StringSliceVar(&opts.Goals, "goals", nil, "goal facts (comma separated)")

	return cmd
}

func runMinimize(opts *MinimizeOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	p, err := loadProblem(path, opts.Facts, opts.Goals)
	if err != nil {
		return out.Fail(ExitCommandError, loadErrorCode(err), "failed to load rulebook", err)
	}

	full := ir.Trace{}
	for _, id := range opts.Trace {
		if id = strings.TrimSpace(id); id != "" {
			full = append(full, id)
		}
	}
	facts := rules.NormalizeSymbols(p.Facts)
	goals := rules.NormalizeSymbols(p.Goals)

	m := trace.Minimize(full, p.Table, facts, goals)
	result := MinimizeOutput{
		Full:    full,
		Optimal: m.Optimal,
		Dropped: m.Dropped,
		Unknown: m.Unknown,
		Replays: true,
	}
	if result.Dropped == nil {
		result.Dropped = []string{}
	}
	if _, err := trace.Replay(m.Optimal, p.Table, facts, goals); err != nil {
		result.Replays = false
		result.ReplayError = err.Error()
	}

	if out.JSON() {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		writeMinimizeText(out.Writer, result)
	}

	if len(result.Unknown) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("unknown rules: %s", strings.Join(result.Unknown, ", ")))
	}
	return nil
}

func writeMinimizeText(w io.Writer, result MinimizeOutput) {
	fmt.Fprintf(w, "Full trace (%d rules): %s\n", len(result.Full), result.Full)
	fmt.Fprintf(w, "Optimal trace (%d rules): %s\n", len(result.Optimal), result.Optimal)
	if len(result.Dropped) > 0 {
		fmt.Fprintf(w, "Dropped (not needed): %s\n", strings.Join(result.Dropped, ", "))
	}
	if len(result.Unknown) > 0 {
		fmt.Fprintf(w, "Unknown rules: %s\n", strings.Join(result.Unknown, ", "))
	}
	if result.Replays {
		fmt.Fprintln(w, "✓ optimal trace derives every goal")
	} else {
		fmt.Fprintf(w, "✗ %s\n", result.ReplayError)
	}
}
