package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/deduce/internal/engine"
	"github.com/roach88/deduce/internal/graph"
	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
)

// Graph kinds.
const (
	GraphFact = "fact"
	GraphRule = "rule"
	GraphBoth = "both"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	Kind      string
	Highlight []string
	Strategy  string // highlight the optimal trace of this strategy
	Facts     []string
	Goals     []string
}

// GraphOutput is the payload of the graph command.
type GraphOutput struct {
	Rulebook  string           `json:"rulebook"`
	Highlight ir.Trace         `json:"highlight"`
	Facts     *graph.FactGraph `json:"facts,omitempty"`
	Rules     *graph.RuleGraph `json:"rules,omitempty"`
	Cycles    [][]string       `json:"cycles,omitempty"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph <rulebook>",
		Short: "Print the fact and rule precedence graphs",
		Long: `Print the precedence graphs of a rulebook.

The fact graph links each premise to its conclusion through a rule. The
rule graph links a rule to every rule that consumes its conclusion.
Edges of the highlighted trace are starred; --strategy highlights the
optimal trace of a run.

Examples:
  deduce graph ./triangle.yaml
  deduce graph ./triangle.yaml --kind rule --highlight r1,r2
  deduce graph ./triangle.yaml --strategy search --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", GraphBoth, "fact, rule or both")
	cmd.Flags().StringSliceVar(&opts.Highlight, "highlight", nil, "rule ids to highlight")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "highlight the optimal trace of this strategy")
	cmd.Flags().StringSliceVar(&opts.Facts, "facts", nil, "given facts (comma separated)")
	cmd.Flags().StringSliceVar(&opts.Goals, "goals", nil, "goal facts (comma separated)")

	return cmd
}

func runGraph(opts *GraphOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	switch opts.Kind {
	case GraphFact, GraphRule, GraphBoth:
	default:
		return out.Fail(ExitCommandError, ErrCodeInvalidFlag,
			fmt.Sprintf("invalid --kind %q: must be fact, rule or both", opts.Kind), nil)
	}
	if opts.Strategy != "" && len(opts.Highlight) > 0 {
		return out.Fail(ExitCommandError, ErrCodeInvalidFlag, "--highlight and --strategy are exclusive", nil)
	}

	p, err := loadProblem(path, opts.Facts, opts.Goals)
	if err != nil {
		return out.Fail(ExitCommandError, loadErrorCode(err), "failed to load rulebook", err)
	}

	highlight := ir.Trace(opts.Highlight)
	if opts.Strategy != "" {
		strategy, err := ir.ParseStrategy(opts.Strategy)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --strategy", err)
		}
		res, err := engine.New(p.Table).Run(strategy, p.Facts, p.Goals)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeGeneric, "run failed", err)
		}
		highlight = res.OptimalTrace
		out.VerboseLog("%s", strings.TrimSpace(res.Summary))
	}
	if highlight == nil {
		highlight = ir.Trace{}
	}

	result := GraphOutput{Rulebook: p.Book.Name, Highlight: highlight}
	if opts.Kind != GraphRule {
		fg := graph.NewFactGraph(p.Table, rules.NormalizeSymbols(p.Facts), rules.NormalizeSymbols(p.Goals), highlight)
		result.Facts = &fg
	}
	if opts.Kind != GraphFact {
		result.Rules = graph.NewRuleGraph(p.Table, highlight)
		result.Cycles = result.Rules.Cycles()
	}

	if out.JSON() {
		return out.Success(result)
	}
	writeGraphText(out.Writer, result)
	return nil
}

func star(on bool) string {
	if on {
		return " *"
	}
	return ""
}

func writeGraphText(w io.Writer, result GraphOutput) {
	if fg := result.Facts; fg != nil {
		fmt.Fprintf(w, "Fact graph (%d symbols, %d edges)\n", len(fg.Nodes), len(fg.Edges))
		for _, n := range fg.Nodes {
			fmt.Fprintf(w, "  %s [%s]%s\n", n.Symbol, n.Kind, star(n.Highlight))
		}
		for _, e := range fg.Edges {
			fmt.Fprintf(w, "  %s -> %s (%s)%s\n", e.From, e.To, e.Rule, star(e.Highlight))
		}
	}
	if rg := result.Rules; rg != nil {
		fmt.Fprintf(w, "Rule graph (%d rules, %d edges)\n", len(rg.Nodes), len(rg.Edges))
		for _, e := range rg.Edges {
			fmt.Fprintf(w, "  %s -> %s via %s%s\n", e.From, e.To, e.Symbol, star(e.Highlight))
		}
		for _, c := range result.Cycles {
			fmt.Fprintf(w, "  cycle: %s\n", strings.Join(c, " -> "))
		}
	}
}
