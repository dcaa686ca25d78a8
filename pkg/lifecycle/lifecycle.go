// Package lifecycle turns a closed batch of timestamped posts about one meme
// into a lifecycle description: a daily time series, Growth/Decline phases,
// a fitted Gaussian intensity curve, summary metrics and a classification.
//
// Every stage is a pure function over immutable inputs. [Analyzer] chains
// the stages, records diagnostics for stages that lack data and produces a
// deterministic [Report].
package lifecycle

import "errors"

// Sentinel errors shared by the lifecycle stages.
var (
	// ErrInsufficientData is returned by a stage whose window holds fewer
	// samples than it needs.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrFitDivergence is returned when the curve solver fails to converge
	// or yields non-finite parameters.
	ErrFitDivergence = errors.New("curve fit diverged")
	// ErrMalformedInput marks a raw record that cannot be normalized.
	ErrMalformedInput = errors.New("malformed input record")
)

// Stage names used in diagnostics, spans and logs.
const (
	StageNormalize = "normalize"
	StageAggregate = "aggregate"
	StagePhases    = "phases"
	StageCurve     = "curve"
	StageMetrics   = "metrics"
	StageTemporal  = "temporal"
	StageReport    = "report"
)

// Stage statuses recorded in [Diagnostics].
const (
	StatusOK               = "ok"
	StatusInsufficientData = "insufficient_data"
	StatusFitFailed        = "fit_failed"
	StatusFailed           = "failed"
)

// dateLayout is the calendar-day format used in rendered dates.
const dateLayout = "2006-01-02"
