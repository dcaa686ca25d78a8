package lifecycle

import (
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/memefang/pkg/alg/stats"
)

// DefaultMinPhaseDays is the minimum number of days in the phase window.
const DefaultMinPhaseDays = 30

// DefaultPhaseWindowStart is the default first day of the phase window.
var DefaultPhaseWindowStart = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// PhaseLabel names a lifecycle phase.
type PhaseLabel string

// Phase labels.
const (
	PhaseGrowth  PhaseLabel = "Growth"
	PhaseDecline PhaseLabel = "Decline"
)

// Phase is a contiguous run of days sharing a lifecycle label.
type Phase struct {
	Label         PhaseLabel `json:"label" yaml:"label"`
	Start         time.Time  `json:"start_date" yaml:"start_date"`
	End           time.Time  `json:"end_date" yaml:"end_date"`
	DurationDays  int        `json:"duration_days" yaml:"duration_days"`
	TotalPosts    int        `json:"total_posts" yaml:"total_posts"`
	AvgDailyPosts float64    `json:"avg_daily_posts" yaml:"avg_daily_posts"`
}

// PhaseOptions configures [IdentifyPhases].
type PhaseOptions struct {
	// WindowStart drops days before it. Zero keeps the whole series.
	WindowStart time.Time
	// MinDays is the minimum window length; below it phases are not computed.
	MinDays int
}

// IdentifyPhases splits the windowed series at the peak of its smoothed post
// count. Days strictly before the peak form the Growth phase; the peak day
// and everything after form the Decline phase. A phase with no days is
// omitted. Ties for the peak resolve to the earliest date, and an all-zero
// window peaks on its first day.
func IdentifyPhases(series []DailyMetric, opts PhaseOptions) ([]Phase, error) {
	minDays := opts.MinDays
	if minDays <= 0 {
		minDays = DefaultMinPhaseDays
	}

	window := sinceDate(series, opts.WindowStart)
	if len(window) < minDays {
		return nil, fmt.Errorf("%w: phase window has %d days, need %d", ErrInsufficientData, len(window), minDays)
	}

	peak := stats.ArgMax(normalizedIntensity(window))

	phases := make([]Phase, 0, 2)

	if peak > 0 {
		phases = append(phases, newPhase(PhaseGrowth, window[:peak]))
	}

	phases = append(phases, newPhase(PhaseDecline, window[peak:]))

	return phases, nil
}

// normalizedIntensity scales the smoothed post counts by their maximum so the
// peak is 1. An all-zero window stays all zero.
func normalizedIntensity(window []DailyMetric) []float64 {
	values := make([]float64, len(window))
	for i, day := range window {
		values[i] = day.RollingPosts
	}

	peak := stats.Max(values)
	if peak <= 0 {
		return values
	}

	for i := range values {
		values[i] /= peak
	}

	return values
}

func newPhase(label PhaseLabel, days []DailyMetric) Phase {
	total := 0
	for _, day := range days {
		total += day.PostCount
	}

	return Phase{
		Label:         label,
		Start:         days[0].Date,
		End:           days[len(days)-1].Date,
		DurationDays:  len(days),
		TotalPosts:    total,
		AvgDailyPosts: float64(total) / float64(len(days)),
	}
}
