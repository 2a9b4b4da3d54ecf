package specialist

import (
	"context"
	"errors"
	"time"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
	"github.com/fyrsmithlabs/boqd/internal/executor"
)

// RetryConfig configures retry behavior for a wrapped invoker.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts after the first
	// call. Default: 2.
	MaxRetries int

	// InitialBackoff is the delay before the first retry. Default: 200ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff. Default: 5 seconds.
	MaxBackoff time.Duration

	// BackoffMultiplier grows the backoff between attempts. Default: 2.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    200 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// ApplyDefaults sets default values for unset fields.
func (c *RetryConfig) ApplyDefaults() {
	defaults := DefaultRetryConfig()
	if c.MaxRetries == 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = defaults.InitialBackoff
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = defaults.MaxBackoff
	}
	if c.BackoffMultiplier == 0 {
		c.BackoffMultiplier = defaults.BackoffMultiplier
	}
}

type retryInvoker struct {
	next   executor.Invoker
	config RetryConfig
}

// WithRetry wraps an invoker with exponential-backoff retries. The
// orchestrator never retries; the retry policy lives here, on the
// collaborator side of the boundary. Context cancellation and deadline
// expiry are never retried.
func WithRetry(next executor.Invoker, config RetryConfig) executor.Invoker {
	config.ApplyDefaults()
	return &retryInvoker{next: next, config: config}
}

func (r *retryInvoker) Invoke(ctx context.Context, role analysis.Role, item analysis.WorkItem,
	pctx analysis.ProjectContext, chain *analysis.ContextChain) (analysis.RoleOutput, error) {

	backoff := r.config.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return analysis.RoleOutput{}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * r.config.BackoffMultiplier)
			if backoff > r.config.MaxBackoff {
				backoff = r.config.MaxBackoff
			}
		}

		out, err := r.next.Invoke(ctx, role, item, pctx, chain)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return analysis.RoleOutput{}, err
		}
		lastErr = err
	}
	return analysis.RoleOutput{}, lastErr
}
