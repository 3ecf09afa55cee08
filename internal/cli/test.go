package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/deduce/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // scenario name filter (glob pattern)
	Golden   string // golden directory, default <scenarios-dir>/golden
	NoGolden bool   // skip snapshot comparison
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run every scenario file in a directory.

Each scenario runs one strategy and checks its expect block, its
assertions and, on success, the trace laws: the optimal trace is a
subsequence of the full trace, minimizing it again changes nothing, it
derives every goal when replayed and no rule fires twice. The snapshot of
each passing scenario is compared with <name>.golden; missing files are
created.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, malformed scenario files, etc.)

Examples:
  deduce test ./scenarios
  deduce test ./scenarios --filter "triangle_*"
  deduce test ./scenarios --update
  deduce test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by name glob pattern")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden file directory (default <scenarios-dir>/golden)")
	cmd.Flags().BoolVar(&opts.NoGolden, "no-golden", false, "skip golden snapshot comparison")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := newFormatter(opts.RootOptions, cmd)

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", dir), nil)
	}

	var suiteOpts []harness.SuiteOption
	if !opts.NoGolden {
		golden := opts.Golden
		if golden == "" {
			golden = filepath.Join(dir, "golden")
		}
		suiteOpts = append(suiteOpts, harness.WithSnapshots(golden, opts.Update))
	}
	if opts.Filter != "" {
		suiteOpts = append(suiteOpts, harness.WithFilter(opts.Filter))
	}

	result, err := harness.RunSuite(ctx, dir, suiteOpts...)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeGeneric, "failed to load scenarios", err)
	}

	if out.JSON() {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		writeTestText(out.Writer, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

func writeTestText(w io.Writer, result *harness.SuiteResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	for _, s := range result.Scenarios {
		if !s.Pass {
			fmt.Fprintf(w, "✗ %s\n", s.Name)
			for _, e := range s.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
			continue
		}
		if s.Snapshot == "written" {
			fmt.Fprintf(w, "✓ %s (golden file written)\n", s.Name)
		} else {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Results: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
