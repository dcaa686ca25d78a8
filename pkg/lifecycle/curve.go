package lifecycle

import (
	"fmt"
	"math"
	"time"

	"github.com/Sumatoshi-tech/memefang/pkg/alg/fit"
	"github.com/Sumatoshi-tech/memefang/pkg/alg/stats"
)

// Curve fitting defaults.
const (
	DefaultMinCurveDays     = 10
	DefaultMaxFitIterations = fit.DefaultMaxEvaluations

	// ModelGaussian is the only supported intensity model.
	ModelGaussian = "gaussian"

	// initialSpreadDivisor sets the starting spread to a quarter of the window.
	initialSpreadDivisor = 4
)

// DefaultCurveWindowStart is the default first day of the curve-fit window.
var DefaultCurveWindowStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// CurveOptions configures [FitCurve].
type CurveOptions struct {
	// WindowStart drops days before it. Zero keeps the whole series.
	WindowStart time.Time
	// MinDays is the minimum number of samples in the window.
	MinDays int
	// MaxIterations bounds the number of solver evaluations.
	MaxIterations int
}

// GaussianParams are the fitted parameters of a·exp(-(x-b)²/(2c²)).
type GaussianParams struct {
	Amplitude  float64 `json:"amplitude" yaml:"amplitude"`
	PeakOffset float64 `json:"peak_offset" yaml:"peak_offset"`
	Spread     float64 `json:"spread" yaml:"spread"`
}

// CurveFitResult is a fitted intensity curve over the curve window.
type CurveFitResult struct {
	Model       string         `json:"model" yaml:"model"`
	Params      GaussianParams `json:"params" yaml:"params"`
	RSquared    float64        `json:"r_squared" yaml:"r_squared"`
	PeakDay     int            `json:"peak_day" yaml:"peak_day"`
	SpreadDays  int            `json:"spread_days" yaml:"spread_days"`
	Evaluations int            `json:"evaluations" yaml:"evaluations"`
	WindowStart time.Time      `json:"window_start" yaml:"window_start"`
	Samples     int            `json:"samples" yaml:"samples"`
}

// Evaluate returns the fitted intensity x days after the window start.
func (r *CurveFitResult) Evaluate(x float64) float64 {
	return fit.Gaussian(x, r.paramVector())
}

// PeakDate returns the calendar day of the fitted peak.
func (r *CurveFitResult) PeakDate() time.Time {
	return r.WindowStart.AddDate(0, 0, r.PeakDay)
}

func (r *CurveFitResult) paramVector() []float64 {
	return []float64{r.Params.Amplitude, r.Params.PeakOffset, r.Params.Spread}
}

// FitCurve fits a Gaussian to the daily post counts of the windowed series
// by Levenberg–Marquardt least squares. x is the number of days since the
// window start. The reported spread is always positive.
func FitCurve(series []DailyMetric, opts CurveOptions) (*CurveFitResult, error) {
	minDays := opts.MinDays
	if minDays <= 0 {
		minDays = DefaultMinCurveDays
	}

	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxFitIterations
	}

	window := sinceDate(series, opts.WindowStart)
	if len(window) < minDays {
		return nil, fmt.Errorf("%w: curve window has %d days, need %d", ErrInsufficientData, len(window), minDays)
	}

	xs := make([]float64, len(window))
	ys := make([]float64, len(window))

	for i, day := range window {
		xs[i] = float64(daysBetween(window[0].Date, day.Date))
		ys[i] = float64(day.PostCount)
	}

	peak := stats.ArgMax(ys)
	initial := []float64{ys[peak], xs[peak], float64(len(xs)) / initialSpreadDivisor}

	settings := fit.DefaultSettings()
	settings.MaxEvaluations = maxIter

	problem := fit.Problem{X: xs, Y: ys, Model: fit.Gaussian, Gradient: fit.GaussianGradient}

	res, err := fit.LevenbergMarquardt(problem, initial, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFitDivergence, err)
	}

	params := GaussianParams{
		Amplitude:  res.Params[fit.GaussAmplitude],
		PeakOffset: res.Params[fit.GaussCenter],
		Spread:     math.Abs(res.Params[fit.GaussWidth]),
	}

	if params.Spread == 0 {
		return nil, fmt.Errorf("%w: zero spread", ErrFitDivergence)
	}

	out := &CurveFitResult{
		Model:       ModelGaussian,
		Params:      params,
		PeakDay:     int(params.PeakOffset),
		SpreadDays:  int(params.Spread),
		Evaluations: res.Evaluations,
		WindowStart: window[0].Date,
		Samples:     len(window),
	}

	out.RSquared = fit.RSquared(xs, ys, fit.Gaussian, out.paramVector())

	return out, nil
}
