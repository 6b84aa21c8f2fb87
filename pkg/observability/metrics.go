package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesAnalyzed     = "cyclocalc.files.analyzed"
	metricFunctionsAnalyzed = "cyclocalc.functions.analyzed"
	metricSmells            = "cyclocalc.smells"
	metricFileDuration      = "cyclocalc.file.duration"

	attrStatus  = "status"
	attrTier    = "tier"
	attrSubject = "subject"
)

// Values of the status attribute on cyclocalc.files.analyzed.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// durationBucketBoundaries covers 100µs to 5s; single files rarely take longer.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// AnalysisMetrics holds OTel instruments for per-file analysis.
type AnalysisMetrics struct {
	filesAnalyzed     metric.Int64Counter
	functionsAnalyzed metric.Int64Counter
	smells            metric.Int64Counter
	fileDuration      metric.Float64Histogram
}

// FileStats describes the outcome of analyzing one file.
type FileStats struct {
	Status    string
	Functions int
	Duration  time.Duration

	// Smells counts smells keyed by subject kind and tier name.
	Smells map[SmellKey]int
}

// SmellKey groups smell counts by subject kind and tier.
type SmellKey struct {
	Subject string
	Tier    string
}

// NewAnalysisMetrics creates analysis metric instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	files, err := mt.Int64Counter(metricFilesAnalyzed,
		metric.WithDescription("Files analyzed by outcome"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesAnalyzed, err)
	}

	functions, err := mt.Int64Counter(metricFunctionsAnalyzed,
		metric.WithDescription("Functions measured"),
		metric.WithUnit("{function}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFunctionsAnalyzed, err)
	}

	smells, err := mt.Int64Counter(metricSmells,
		metric.WithDescription("Smells emitted by tier and subject kind"),
		metric.WithUnit("{smell}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSmells, err)
	}

	duration, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Per-file analysis duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	return &AnalysisMetrics{
		filesAnalyzed:     files,
		functionsAnalyzed: functions,
		smells:            smells,
		fileDuration:      duration,
	}, nil
}

// RecordFile records the outcome of one file. Safe to call on a nil receiver.
func (am *AnalysisMetrics) RecordFile(ctx context.Context, stats FileStats) {
	if am == nil {
		return
	}

	am.filesAnalyzed.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, stats.Status)))
	am.fileDuration.Record(ctx, stats.Duration.Seconds())

	if stats.Functions > 0 {
		am.functionsAnalyzed.Add(ctx, int64(stats.Functions))
	}

	for key, n := range stats.Smells {
		am.smells.Add(ctx, int64(n), metric.WithAttributes(
			attribute.String(attrTier, key.Tier),
			attribute.String(attrSubject, key.Subject),
		))
	}
}
