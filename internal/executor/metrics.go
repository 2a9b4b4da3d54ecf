package executor

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/fyrsmithlabs/boqd/internal/executor"

var (
	invocationCounter  metric.Int64Counter
	invocationFailures metric.Int64Counter
	invocationDuration metric.Float64Histogram
)

// initMetrics initializes OpenTelemetry metrics for specialist execution.
// Called once during package initialization.
func initMetrics() {
	meter := otel.Meter(instrumentationName)

	var err error

	invocationCounter, err = meter.Int64Counter(
		"boqd.executor.invocations",
		metric.WithDescription("Total number of specialist invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create invocation counter: %v", err))
	}

	invocationFailures, err = meter.Int64Counter(
		"boqd.executor.failures",
		metric.WithDescription("Number of specialist invocations that settled as failures"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create failure counter: %v", err))
	}

	invocationDuration, err = meter.Float64Histogram(
		"boqd.executor.invocation_duration",
		metric.WithDescription("Duration of individual specialist invocations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create duration histogram: %v", err))
	}
}

func init() {
	initMetrics()
}
