package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/trace"
)

// CheckLaws verifies the trace laws every successful run must satisfy and
// returns one message per violated law.
func CheckLaws(run ir.Run, table *ir.RuleTable) []string {
	var errs []string

	if !trace.IsSubsequence(run.OptimalTrace, run.FullTrace) {
		errs = append(errs, fmt.Sprintf("law subsequence: optimal %s is not a subsequence of full %s",
			run.OptimalTrace, run.FullTrace))
	}

	again := trace.Minimize(run.OptimalTrace, table, run.Facts, run.Goals).Optimal
	if !slices.Equal(again, run.OptimalTrace) {
		errs = append(errs, fmt.Sprintf("law idempotence: minimizing %s gives %s", run.OptimalTrace, again))
	}

	if _, err := trace.Replay(run.OptimalTrace, table, run.Facts, run.Goals); err != nil {
		errs = append(errs, fmt.Sprintf("law replay: %v", err))
	}

	if dups := trace.Duplicates(run.FullTrace); len(dups) > 0 {
		errs = append(errs, fmt.Sprintf("law no-duplicates: %v fired more than once", dups))
	}

	return errs
}
