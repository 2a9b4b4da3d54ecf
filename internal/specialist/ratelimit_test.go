package specialist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
	"github.com/fyrsmithlabs/boqd/internal/executor"
)

func TestWithRateLimit_PassesThrough(t *testing.T) {
	next := executor.InvokerFunc(func(_ context.Context, role analysis.Role, _ analysis.WorkItem,
		_ analysis.ProjectContext, _ *analysis.ContextChain) (analysis.RoleOutput, error) {
		return analysis.Succeed(role, nil, 0.9), nil
	})
	invoker := WithRateLimit(next, 100, 10)

	out, err := invoker.Invoke(context.Background(), analysis.RoleStandards,
		analysis.WorkItem{}, analysis.ProjectContext{}, analysis.NewContextChain())

	require.NoError(t, err)
	assert.Equal(t, analysis.RoleStandards, out.Role)
}

func TestWithRateLimit_ThrottlesBeyondBurst(t *testing.T) {
	next := executor.InvokerFunc(func(_ context.Context, role analysis.Role, _ analysis.WorkItem,
		_ analysis.ProjectContext, _ *analysis.ContextChain) (analysis.RoleOutput, error) {
		return analysis.Succeed(role, nil, 0.9), nil
	})
	// Burst of one: the second call has to wait for a token.
	invoker := WithRateLimit(next, 50, 1)

	start := time.Now()
	for i := 0; i < 2; i++ {
		_, err := invoker.Invoke(context.Background(), analysis.RoleStandards,
			analysis.WorkItem{}, analysis.ProjectContext{}, analysis.NewContextChain())
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestWithRateLimit_CancelledWait(t *testing.T) {
	next := executor.InvokerFunc(func(_ context.Context, role analysis.Role, _ analysis.WorkItem,
		_ analysis.ProjectContext, _ *analysis.ContextChain) (analysis.RoleOutput, error) {
		return analysis.Succeed(role, nil, 0.9), nil
	})
	// Zero-rate limiter with an empty bucket never grants a token.
	invoker := WithRateLimit(next, 0.001, 1)

	_, err := invoker.Invoke(context.Background(), analysis.RoleStandards,
		analysis.WorkItem{}, analysis.ProjectContext{}, analysis.NewContextChain())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = invoker.Invoke(ctx, analysis.RoleStandards,
		analysis.WorkItem{}, analysis.ProjectContext{}, analysis.NewContextChain())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}
