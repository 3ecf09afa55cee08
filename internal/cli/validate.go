package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/deduce/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // cycle warnings fail validation
}

// ValidateOutput is the payload of the validate command.
type ValidateOutput struct {
	Rulebook string                     `json:"rulebook"`
	Records  int                        `json:"records"`
	Rules    int                        `json:"rules"`
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors"`
	Cycles   []compiler.CycleWarning    `json:"cycles"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <rulebook>",
		Short: "Check a rulebook for records the loader would drop",
		Long: `Validate a rulebook without running it.

Loading never rejects a rulebook: malformed records are dropped and
duplicate ids keep the last record. validate reports each of those, and
every cycle in the rule graph.

Exit codes:
  0 - No findings (cycles are warnings unless --strict)
  1 - Findings reported
  2 - Command error

Examples:
  deduce validate ./triangle.yaml
  deduce validate ./rules --strict --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat cycle warnings as errors")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	p, err := loadProblem(path, nil, nil)
	if err != nil {
		return out.Fail(ExitCommandError, loadErrorCode(err), "failed to load rulebook", err)
	}

	result := ValidateOutput{
		Rulebook: p.Book.Name,
		Records:  len(p.Book.Rules),
		Rules:    p.Table.Len(),
		Errors:   compiler.Validate(p.Book),
		Cycles:   compiler.AnalyzeCycles(p.Table),
	}
	if result.Errors == nil {
		result.Errors = []compiler.ValidationError{}
	}
	result.Valid = len(result.Errors) == 0 && (!opts.Strict || len(result.Cycles) == 0)

	if out.JSON() {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		writeValidateText(out.Writer, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func writeValidateText(w io.Writer, result ValidateOutput) {
	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s\n", e.Error())
	}
	for _, c := range result.Cycles {
		fmt.Fprintf(w, "! %s: %s\n", c.Level, c.Message)
	}

	if len(result.Errors) == 0 {
		fmt.Fprintf(w, "✓ %s: %d rules valid\n", result.Rulebook, result.Rules)
		return
	}
	fmt.Fprintf(w, "%s: %d of %d records kept, %d finding(s)\n",
		result.Rulebook, result.Rules, result.Records, len(result.Errors))
}
