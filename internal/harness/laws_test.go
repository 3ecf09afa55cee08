package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deduce/internal/ir"
)

func TestCheckLaws_Holds(t *testing.T) {
	assert.Empty(t, CheckLaws(testResult().Run, testTable(t)))
}

func TestCheckLaws_Violations(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*ir.Run)
		wantErr string
	}{
		{
			name:    "not a subsequence",
			edit:    func(r *ir.Run) { r.FullTrace = ir.Trace{"r2", "r1"} },
			wantErr: "law subsequence",
		},
		{
			name:    "not minimal",
			edit:    func(r *ir.Run) { r.OptimalTrace = ir.Trace{"r5", "r1", "r2"} },
			wantErr: "law idempotence",
		},
		{
			name:    "does not replay",
			edit:    func(r *ir.Run) { r.OptimalTrace = ir.Trace{"r2"} },
			wantErr: "law replay",
		},
		{
			name:    "rule fired twice",
			edit:    func(r *ir.Run) { r.FullTrace = ir.Trace{"r1", "r1", "r2"} },
			wantErr: "law no-duplicates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := testResult().Run
			tt.edit(&run)

			errs := CheckLaws(run, testTable(t))
			require.NotEmpty(t, errs)

			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			assert.True(t, found, "want %q in %v", tt.wantErr, errs)
		})
	}
}
