package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/memefang/pkg/observability"
)

const tracerName = "memefang/lifecycle"

// Analyzer runs the full lifecycle pipeline for one meme at a time.
// It holds no per-run state and is safe for concurrent use.
type Analyzer struct {
	opts    Options
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics *observability.AnalysisMetrics
}

// AnalyzerOption customizes an [Analyzer].
type AnalyzerOption func(*Analyzer)

// WithTracer sets the tracer used for stage spans.
func WithTracer(tracer trace.Tracer) AnalyzerOption {
	return func(a *Analyzer) { a.tracer = tracer }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = logger }
}

// WithMetrics sets the analysis metric instruments. Nil disables metrics.
func WithMetrics(metrics *observability.AnalysisMetrics) AnalyzerOption {
	return func(a *Analyzer) { a.metrics = metrics }
}

// NewAnalyzer creates an analyzer with the given options.
func NewAnalyzer(opts Options, options ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		opts:   opts,
		tracer: otel.Tracer(tracerName),
		logger: slog.Default(),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

// run collects the intermediate results of one invocation.
type run struct {
	meme   string
	stats  observability.AnalysisStats
	input  SynthesisInput
	posts  []PostRecord
	status []StageStatus
}

// Run analyzes raw records for meme. Stages that lack data are recorded in
// the report diagnostics and do not fail the run. Run fails only when no
// record survives normalization, or when ctx is cancelled.
func (a *Analyzer) Run(ctx context.Context, meme string, raws []RawPost) (*Report, error) {
	ctx, span := a.tracer.Start(ctx, "lifecycle.run",
		trace.WithAttributes(
			attribute.String("analysis.meme", meme),
			attribute.Int("analysis.records", len(raws)),
		))
	defer span.End()

	r := &run{
		meme:  meme,
		stats: observability.AnalysisStats{StageDurations: make(map[string]time.Duration)},
		input: SynthesisInput{Meme: meme},
	}

	report, err := a.execute(ctx, r, raws)
	a.metrics.RecordRun(ctx, r.stats)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	return report, nil
}

func (a *Analyzer) execute(ctx context.Context, r *run, raws []RawPost) (*Report, error) {
	a.stage(ctx, r, StageNormalize, func(context.Context) error {
		posts, rejected := Normalize(raws)
		r.posts = posts
		r.input.Diagnostics = diagnosticsFor(len(posts), rejected)
		r.stats.Accepted = len(posts)
		r.stats.Skipped = len(rejected)

		for _, rej := range rejected {
			a.logger.DebugContext(ctx, "record skipped", "meme", r.meme, "index", rej.Index, "reason", rej.Reason)
		}

		if len(rejected) > 0 {
			a.logger.WarnContext(ctx, "skipped malformed records",
				"meme", r.meme, "skipped", len(rejected), "accepted", len(posts))
		}

		return nil
	})

	if len(r.posts) == 0 {
		return nil, fmt.Errorf("meme %q: %w: no valid records in batch of %d", r.meme, ErrInsufficientData, len(raws))
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageAggregate, func(context.Context) error {
			r.input.Series = Aggregate(r.posts, a.opts.RollingWindow)

			return nil
		}},
		{StagePhases, func(context.Context) error {
			phases, err := IdentifyPhases(r.input.Series, a.opts.Phase)
			r.input.Phases = phases

			return err
		}},
		{StageCurve, func(context.Context) error {
			curve, err := FitCurve(r.input.Series, a.opts.Curve)
			r.input.CurveFit = curve

			return err
		}},
		{StageMetrics, func(context.Context) error {
			m, err := ComputeMetrics(r.posts, r.input.Series, a.opts.TopShare)
			r.input.Metrics = m

			return err
		}},
		{StageTemporal, func(context.Context) error {
			r.input.Temporal = AnalyzeTemporal(r.posts)
			r.input.SourceGroups = TopSourceGroups(r.posts)

			return nil
		}},
	}

	for _, step := range steps {
		err := ctx.Err()
		if err != nil {
			return nil, fmt.Errorf("meme %q: %w", r.meme, err)
		}

		a.stage(ctx, r, step.name, step.fn)
	}

	r.stats.CurveOutcome = Diagnostics{Stages: r.status}.Status(StageCurve)

	var report *Report

	a.stage(ctx, r, StageReport, func(context.Context) error {
		report = Synthesize(r.input, a.opts.Policy)

		return nil
	})

	// The report stage finishes after synthesis; attach the complete list.
	report.Diagnostics.Stages = r.status

	a.logger.InfoContext(ctx, "lifecycle analyzed",
		"meme", r.meme,
		"posts", report.Metrics.TotalPosts,
		"lifecycle", report.Classification.Lifecycle,
		"spread", report.Classification.SpreadPattern)

	return report, nil
}

// stage runs fn inside a span, times it and records its status.
func (a *Analyzer) stage(ctx context.Context, r *run, name string, fn func(context.Context) error) {
	ctx, span := a.tracer.Start(ctx, "lifecycle."+name,
		trace.WithAttributes(attribute.String("analysis.stage", name)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	r.stats.StageDurations[name] = time.Since(start)

	status := StageStatus{Stage: name, Status: StatusOK}

	switch {
	case err == nil:
	case errors.Is(err, ErrFitDivergence):
		status.Status = StatusFitFailed
		status.Detail = err.Error()

		span.RecordError(err)
		a.logger.WarnContext(ctx, "curve fit failed", "meme", r.meme, "stage", name, "reason", err.Error())
	case errors.Is(err, ErrInsufficientData):
		status.Status = StatusInsufficientData
		status.Detail = err.Error()

		a.logger.InfoContext(ctx, "stage skipped", "meme", r.meme, "stage", name, "reason", err.Error())
	default:
		status.Status = StatusFailed
		status.Detail = err.Error()

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.SetAttributes(attribute.String("analysis.status", status.Status))
	r.status = append(r.status, status)
}

func diagnosticsFor(accepted int, rejected []Rejection) Diagnostics {
	d := Diagnostics{AcceptedRecords: accepted, SkippedRecords: len(rejected)}

	if len(rejected) > 0 {
		d.SkipReasons = make(map[string]int)

		for _, rej := range rejected {
			d.SkipReasons[rej.Reason]++
		}
	}

	return d
}
