package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuota_WithinLimit(t *testing.T) {
	q := NewQuota(BudgetSteps, 10)

	for i := 0; i < 10; i++ {
		assert.NoError(t, q.Check(), "step %d should be allowed", i+1)
	}
	assert.Equal(t, 10, q.Current())
	assert.Equal(t, 10, q.Limit())
}

func TestQuota_ExceedsLimit(t *testing.T) {
	q := NewQuota(BudgetExpansions, 2)
	require.NoError(t, q.Check())
	require.NoError(t, q.Check())

	err := q.Check()
	require.Error(t, err)

	var be *BudgetExceededError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, BudgetExpansions, be.Kind)
	assert.Equal(t, 3, be.Used)
	assert.Equal(t, 2, be.Limit)
	assert.Equal(t, "expansions budget exceeded: 3 > 2 limit", err.Error())
}

func TestIsBudgetExceededError_Wrapped(t *testing.T) {
	err := fmt.Errorf("run: %w", &BudgetExceededError{Kind: BudgetSteps, Used: 2, Limit: 1})
	assert.True(t, IsBudgetExceededError(err))
	assert.True(t, IsBudgetExceeded(err))
	assert.False(t, IsBudgetExceededError(fmt.Errorf("other")))
}
