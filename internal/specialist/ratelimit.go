package specialist

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
	"github.com/fyrsmithlabs/boqd/internal/executor"
)

type rateLimitedInvoker struct {
	next    executor.Invoker
	limiter *rate.Limiter
}

// WithRateLimit wraps an invoker with a token-bucket rate limiter. Remote
// model backends impose request-per-second quotas; parallel phases fan out
// several invocations at once, so the limiter sits on the collaborator side
// where concurrent callers block until a token is available.
func WithRateLimit(next executor.Invoker, rps float64, burst int) executor.Invoker {
	return &rateLimitedInvoker{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *rateLimitedInvoker) Invoke(ctx context.Context, role analysis.Role, item analysis.WorkItem,
	pctx analysis.ProjectContext, chain *analysis.ContextChain) (analysis.RoleOutput, error) {

	if err := r.limiter.Wait(ctx); err != nil {
		return analysis.RoleOutput{}, fmt.Errorf("waiting for rate limit: %w", err)
	}
	return r.next.Invoke(ctx, role, item, pctx, chain)
}
