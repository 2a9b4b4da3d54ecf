// Package executor runs an execution plan against a specialist invoker.
// Phases run in plan order; a parallel phase fans out its roles against one
// frozen context-chain snapshot and joins before the chain grows. A role
// that errors, panics, or times out settles as a failure without disturbing
// siblings or later phases: every planned role settles exactly once.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
	"github.com/fyrsmithlabs/boqd/internal/logging"
	"github.com/fyrsmithlabs/boqd/internal/planner"
)

// Invoker is the collaborator that actually produces specialist findings.
// Implementations may call a remote model, run a local rules engine, or
// stub results; the executor treats a returned error, a panic, and a
// timeout identically, as a failed output. Retry policy, if any, belongs to
// the implementation, not the executor.
type Invoker interface {
	Invoke(ctx context.Context, role analysis.Role, item analysis.WorkItem,
		pctx analysis.ProjectContext, chain *analysis.ContextChain) (analysis.RoleOutput, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, role analysis.Role, item analysis.WorkItem,
	pctx analysis.ProjectContext, chain *analysis.ContextChain) (analysis.RoleOutput, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, role analysis.Role, item analysis.WorkItem,
	pctx analysis.ProjectContext, chain *analysis.ContextChain) (analysis.RoleOutput, error) {
	return f(ctx, role, item, pctx, chain)
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithRoleTimeout bounds each individual specialist invocation. Zero means
// no per-role deadline.
func WithRoleTimeout(d time.Duration) Option {
	return func(e *Executor) { e.roleTimeout = d }
}

// Executor drives a plan to completion.
type Executor struct {
	invoker     Invoker
	logger      *logging.Logger
	roleTimeout time.Duration
}

// New creates an executor around the given invoker.
func New(invoker Invoker, opts ...Option) *Executor {
	e := &Executor{
		invoker: invoker,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("executor")
	return e
}

// Execute runs every phase of the plan and returns the settled output of
// every planned role. It never returns partial maps: when the caller's
// context is cancelled mid-run, the remaining roles are recorded as
// failures carrying the context error.
func (e *Executor) Execute(ctx context.Context, plan planner.Plan, item analysis.WorkItem,
	pctx analysis.ProjectContext) map[analysis.Role]analysis.RoleOutput {

	outputs := make(map[analysis.Role]analysis.RoleOutput, len(plan.Roles()))
	chain := analysis.NewContextChain()

	for i, phase := range plan.Phases {
		if err := ctx.Err(); err != nil {
			e.failRemaining(plan.Phases[i:], outputs, err)
			return outputs
		}

		e.logger.Debug("starting phase",
			zap.Int("phase", i),
			zap.String("kind", string(phase.Kind)),
			zap.Int("roles", len(phase.Roles)),
		)

		var settled []analysis.RoleOutput
		switch phase.Kind {
		case planner.Parallel:
			settled = e.runParallel(ctx, phase.Roles, item, pctx, chain)
		default:
			settled = []analysis.RoleOutput{e.invokeOne(ctx, phase.Roles[0], item, pctx, chain)}
		}

		for _, out := range settled {
			outputs[out.Role] = out
		}
		// The chain grows only between phases, so parallel siblings can
		// never observe each other.
		chain = chain.With(settled...)
	}

	return outputs
}

// runParallel fans the phase's roles out concurrently against one chain
// snapshot and waits for every member to settle. A failing or panicking
// sibling cancels nothing.
func (e *Executor) runParallel(ctx context.Context, phaseRoles []analysis.Role,
	item analysis.WorkItem, pctx analysis.ProjectContext, snapshot *analysis.ContextChain) []analysis.RoleOutput {

	settled := make([]analysis.RoleOutput, len(phaseRoles))
	var wg sync.WaitGroup
	for i, role := range phaseRoles {
		wg.Add(1)
		go func(i int, role analysis.Role) {
			defer wg.Done()
			settled[i] = e.invokeOne(ctx, role, item, pctx, snapshot)
		}(i, role)
	}
	wg.Wait()
	return settled
}

// invokeOne runs a single specialist, converting every failure mode (error
// return, panic, timeout) into a failed output.
func (e *Executor) invokeOne(ctx context.Context, role analysis.Role, item analysis.WorkItem,
	pctx analysis.ProjectContext, chain *analysis.ContextChain) (out analysis.RoleOutput) {

	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("role", string(role)))
	invocationCounter.Add(ctx, 1, attrs)

	defer func() {
		if r := recover(); r != nil {
			out = analysis.Fail(role, fmt.Sprintf("specialist panicked: %v", r))
		}
		invocationDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		if !out.OK {
			invocationFailures.Add(ctx, 1, attrs)
			e.logger.Warn("specialist failed",
				zap.String("role", string(role)),
				zap.String("reason", out.FailReason),
			)
		} else {
			e.logger.Debug("specialist settled",
				zap.String("role", string(role)),
				zap.Float64("confidence", out.Confidence),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}()

	if e.roleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.roleTimeout)
		defer cancel()
	}

	result, err := e.invoker.Invoke(ctx, role, item, pctx, chain)
	if err != nil {
		return analysis.Fail(role, err.Error())
	}
	if result.Role != role {
		return analysis.Fail(role, fmt.Sprintf("invoker answered for wrong role %q", result.Role))
	}
	return result
}

// failRemaining records a failure for every role of the unexecuted phases.
func (e *Executor) failRemaining(phases []planner.Phase,
	outputs map[analysis.Role]analysis.RoleOutput, cause error) {
	for _, phase := range phases {
		for _, role := range phase.Roles {
			outputs[role] = analysis.Fail(role, fmt.Sprintf("run aborted: %v", cause))
		}
	}
}
