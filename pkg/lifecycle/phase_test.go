package lifecycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

func defaultPhaseOptions() lifecycle.PhaseOptions {
	return lifecycle.DefaultOptions().Phase
}

func TestIdentifyPhases_FortyDayScenario(t *testing.T) {
	t.Parallel()

	start := day(2024, time.June, 1)
	series := lifecycle.Aggregate(postSeries(start, fortyDayCounts()), lifecycle.DefaultRollingWindow)

	phases, err := lifecycle.IdentifyPhases(series, defaultPhaseOptions())
	require.NoError(t, err)
	require.Len(t, phases, 2)

	growth, decline := phases[0], phases[1]

	assert.Equal(t, lifecycle.PhaseGrowth, growth.Label)
	assert.Equal(t, start, growth.Start)
	assert.Equal(t, day(2024, time.June, 19), growth.End)
	assert.Equal(t, 19, growth.DurationDays)
	assert.Equal(t, 460, growth.TotalPosts)

	assert.Equal(t, lifecycle.PhaseDecline, decline.Label)
	assert.Equal(t, day(2024, time.June, 20), decline.Start)
	assert.Equal(t, day(2024, time.July, 10), decline.End)
	assert.Equal(t, 21, decline.DurationDays)
	assert.Equal(t, 90, decline.TotalPosts)
	assert.InDelta(t, 90.0/21, decline.AvgDailyPosts, 1e-9)

	assert.Equal(t, growth.End.AddDate(0, 0, 1), decline.Start)
	assert.Equal(t, len(series), growth.DurationDays+decline.DurationDays)
}

func TestIdentifyPhases_InsufficientData(t *testing.T) {
	t.Parallel()

	series := lifecycle.Aggregate(postSeries(day(2024, time.June, 1), []int{3, 2}), lifecycle.DefaultRollingWindow)

	phases, err := lifecycle.IdentifyPhases(series, defaultPhaseOptions())
	require.ErrorIs(t, err, lifecycle.ErrInsufficientData)
	assert.Empty(t, phases)
}

func TestIdentifyPhases_WindowStartDropsEarlyDays(t *testing.T) {
	t.Parallel()

	counts := make([]int, 40)
	for i := range counts {
		counts[i] = 1
	}

	series := lifecycle.Aggregate(postSeries(day(2022, time.December, 1), counts), lifecycle.DefaultRollingWindow)

	// Only 9 of 40 days fall on or after the default window start.
	_, err := lifecycle.IdentifyPhases(series, defaultPhaseOptions())
	require.ErrorIs(t, err, lifecycle.ErrInsufficientData)

	phases, err := lifecycle.IdentifyPhases(series, lifecycle.PhaseOptions{MinDays: 30})
	require.NoError(t, err)
	require.Len(t, phases, 1, "flat series peaks on its first day")
	assert.Equal(t, lifecycle.PhaseDecline, phases[0].Label)
	assert.Equal(t, 40, phases[0].DurationDays)
}

func TestIdentifyPhases_PeakTiePrefersEarliest(t *testing.T) {
	t.Parallel()

	counts := make([]int, 30)
	for i := range counts {
		counts[i] = 1
	}

	counts[5], counts[20] = 10, 10

	series := lifecycle.Aggregate(postSeries(day(2024, time.January, 1), counts), 1)

	phases, err := lifecycle.IdentifyPhases(series, defaultPhaseOptions())
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.Equal(t, day(2024, time.January, 6), phases[1].Start)
}
