package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal     = "memefang.analysis.runs.total"
	metricRecordsTotal  = "memefang.analysis.records.total"
	metricStageDuration = "memefang.analysis.stage.duration.seconds"
	metricCurveFits     = "memefang.analysis.curve_fits.total"

	attrOutcome = "outcome"
	attrStage   = "stage"

	outcomeAccepted = "accepted"
	outcomeSkipped  = "skipped"
)

// AnalysisMetrics holds OTel instruments for lifecycle analysis runs.
type AnalysisMetrics struct {
	runsTotal     metric.Int64Counter
	recordsTotal  metric.Int64Counter
	stageDuration metric.Float64Histogram
	curveFits     metric.Int64Counter
}

// AnalysisStats holds the statistics of a single lifecycle run,
// decoupled from the lifecycle types.
type AnalysisStats struct {
	Accepted       int
	Skipped        int
	StageDurations map[string]time.Duration
	// CurveOutcome is the curve stage status; empty when the stage did not run.
	CurveOutcome string
}

// NewAnalysisMetrics creates analysis metric instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	runs, err := mt.Int64Counter(metricRunsTotal,
		metric.WithDescription("Total lifecycle analysis runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunsTotal, err)
	}

	records, err := mt.Int64Counter(metricRecordsTotal,
		metric.WithDescription("Input records by normalization outcome"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRecordsTotal, err)
	}

	stageDur, err := mt.Float64Histogram(metricStageDuration,
		metric.WithDescription("Per-stage processing duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStageDuration, err)
	}

	fits, err := mt.Int64Counter(metricCurveFits,
		metric.WithDescription("Curve fit attempts by status"),
		metric.WithUnit("{fit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCurveFits, err)
	}

	return &AnalysisMetrics{
		runsTotal:     runs,
		recordsTotal:  records,
		stageDuration: stageDur,
		curveFits:     fits,
	}, nil
}

// RecordRun records statistics for a completed lifecycle run.
// Safe to call on a nil receiver (no-op).
func (am *AnalysisMetrics) RecordRun(ctx context.Context, stats AnalysisStats) {
	if am == nil {
		return
	}

	am.runsTotal.Add(ctx, 1)
	am.recordsTotal.Add(ctx, int64(stats.Accepted), metric.WithAttributes(attribute.String(attrOutcome, outcomeAccepted)))
	am.recordsTotal.Add(ctx, int64(stats.Skipped), metric.WithAttributes(attribute.String(attrOutcome, outcomeSkipped)))

	for stage, d := range stats.StageDurations {
		am.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String(attrStage, stage)))
	}

	if stats.CurveOutcome != "" {
		am.curveFits.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, stats.CurveOutcome)))
	}
}
