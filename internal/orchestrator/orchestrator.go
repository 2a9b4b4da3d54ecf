package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
	"github.com/fyrsmithlabs/boqd/internal/complexity"
	"github.com/fyrsmithlabs/boqd/internal/conflict"
	"github.com/fyrsmithlabs/boqd/internal/executor"
	"github.com/fyrsmithlabs/boqd/internal/logging"
	"github.com/fyrsmithlabs/boqd/internal/planner"
	"github.com/fyrsmithlabs/boqd/internal/roles"
)

const tracerName = "github.com/fyrsmithlabs/boqd/internal/orchestrator"

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithRoleTimeout bounds each specialist invocation.
func WithRoleTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.roleTimeout = d }
}

// WithDetector replaces the built-in detection rule set.
func WithDetector(d *conflict.Detector) Option {
	return func(o *Orchestrator) { o.detector = d }
}

// WithResolver replaces the built-in resolver.
func WithResolver(r *conflict.Resolver) Option {
	return func(o *Orchestrator) { o.resolver = r }
}

// Orchestrator wires the pipeline stages around a specialist invoker.
type Orchestrator struct {
	invoker     executor.Invoker
	detector    *conflict.Detector
	resolver    *conflict.Resolver
	logger      *logging.Logger
	tracer      trace.Tracer
	roleTimeout time.Duration
}

// New creates an orchestrator around the given invoker.
func New(invoker executor.Invoker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		invoker:  invoker,
		detector: conflict.NewDetector(conflict.DefaultRules()...),
		resolver: conflict.NewResolver(),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Named("orchestrator")
	o.tracer = otel.Tracer(tracerName)
	return o
}

// Analyze runs the full pipeline over one work item. The caller always
// receives a complete result unless planning fails, which indicates a
// configuration defect in the static dependency table.
func (o *Orchestrator) Analyze(ctx context.Context, item analysis.WorkItem,
	pctx analysis.ProjectContext) (*analysis.Result, error) {

	runID := uuid.NewString()
	start := time.Now()

	ctx, span := o.tracer.Start(ctx, "boqd.analyze",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.String("item.title", item.Title),
			attribute.Int("item.rows", len(item.Rows)),
		))
	defer span.End()

	logger := o.logger.With(zap.String("run_id", runID))

	tier := complexity.Classify(item)
	selected := roles.Select(tier, item, pctx)
	logger.Info("analysis started",
		zap.String("title", item.Title),
		zap.String("tier", tier.String()),
		zap.Int("roles", len(selected)),
	)

	plan, err := planner.Build(selected)
	if err != nil {
		logger.Error("planning failed", zap.Error(err))
		return nil, fmt.Errorf("planning analysis of %q: %w", item.Title, err)
	}

	exec := executor.New(o.invoker,
		executor.WithLogger(logger),
		executor.WithRoleTimeout(o.roleTimeout),
	)
	outputs := exec.Execute(ctx, plan, item, pctx)

	conflicts := o.detector.Detect(outputs)
	resolutions := o.resolver.ResolveAll(conflicts, outputs)

	result := aggregate(tier, outputs, conflicts, resolutions, time.Since(start))
	result.RunID = runID

	span.SetAttributes(
		attribute.String("tier", tier.String()),
		attribute.Int("conflicts", len(conflicts)),
		attribute.String("status", string(result.Status)),
	)
	logger.Info("analysis finished",
		zap.String("status", string(result.Status)),
		zap.Int("conflicts", len(conflicts)),
		zap.Float64("confidence", result.OverallConfidence),
		zap.Duration("elapsed", result.Elapsed),
	)

	return result, nil
}
