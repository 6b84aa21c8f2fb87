package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricToolCalls    = "cyclocalc.tool.calls"
	metricToolDuration = "cyclocalc.tool.duration"
	metricToolErrors   = "cyclocalc.tool.errors"
	metricToolInflight = "cyclocalc.tool.inflight"

	attrTool = "tool"
)

// StatusError marks a tool call that failed or returned an error result.
const StatusError = "error"

// ToolMetrics holds rate, error and duration instruments for tool calls served
// over MCP.
type ToolMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewToolMetrics creates tool call instruments from the given meter.
func NewToolMetrics(mt metric.Meter) (*ToolMetrics, error) {
	calls, err := mt.Int64Counter(metricToolCalls,
		metric.WithDescription("Tool calls by tool and status"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricToolCalls, err)
	}

	duration, err := mt.Float64Histogram(metricToolDuration,
		metric.WithDescription("Tool call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricToolDuration, err)
	}

	errs, err := mt.Int64Counter(metricToolErrors,
		metric.WithDescription("Failed tool calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricToolErrors, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricToolInflight,
		metric.WithDescription("Tool calls in progress"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricToolInflight, err)
	}

	return &ToolMetrics{calls: calls, duration: duration, errors: errs, inflight: inflight}, nil
}

// RecordCall records a completed call with its status and duration.
func (tm *ToolMetrics) RecordCall(ctx context.Context, tool, status string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)

	tm.calls.Add(ctx, 1, attrs)
	tm.duration.Record(ctx, elapsed.Seconds(), attrs)

	if status == StatusError {
		tm.errors.Add(ctx, 1, metric.WithAttributes(attribute.String(attrTool, tool)))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (tm *ToolMetrics) TrackInflight(ctx context.Context, tool string) func() {
	attrs := metric.WithAttributes(attribute.String(attrTool, tool))
	tm.inflight.Add(ctx, 1, attrs)

	return func() {
		tm.inflight.Add(ctx, -1, attrs)
	}
}
