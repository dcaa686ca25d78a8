package lifecycle

import (
	"time"

	"github.com/Sumatoshi-tech/memefang/pkg/alg/stats"
)

// DefaultRollingWindow is the trailing window, in days, of the smoothed
// series.
const DefaultRollingWindow = 7

// DailyMetric is one row of the zero-filled daily series.
type DailyMetric struct {
	Date              time.Time `json:"date" yaml:"date"`
	PostCount         int       `json:"post_count" yaml:"post_count"`
	AvgScore          float64   `json:"avg_score" yaml:"avg_score"`
	TotalScore        float64   `json:"total_score" yaml:"total_score"`
	AvgComments       float64   `json:"avg_comments" yaml:"avg_comments"`
	TotalComments     float64   `json:"total_comments" yaml:"total_comments"`
	TotalEngagement   float64   `json:"total_engagement" yaml:"total_engagement"`
	CumulativePosts   int       `json:"cumulative_posts" yaml:"cumulative_posts"`
	DaysSinceStart    int       `json:"days_since_start" yaml:"days_since_start"`
	RollingPosts      float64   `json:"posts_ma7" yaml:"posts_ma7"`
	RollingEngagement float64   `json:"engagement_ma7" yaml:"engagement_ma7"`
	GrowthRate        *float64  `json:"growth_rate" yaml:"growth_rate"`
}

// Aggregate groups posts by UTC calendar day into a contiguous, zero-filled
// series spanning the earliest to the latest post date. Rolling means use a
// trailing window that shrinks at the start of the series. An empty input
// yields an empty series.
func Aggregate(posts []PostRecord, window int) []DailyMetric {
	if len(posts) == 0 {
		return nil
	}

	if window <= 0 {
		window = DefaultRollingWindow
	}

	first, last := posts[0].Date, posts[0].Date

	for _, p := range posts[1:] {
		if p.Date.Before(first) {
			first = p.Date
		}

		if p.Date.After(last) {
			last = p.Date
		}
	}

	series := make([]DailyMetric, daysBetween(first, last)+1)
	for i := range series {
		series[i].Date = first.AddDate(0, 0, i)
		series[i].DaysSinceStart = i
	}

	for _, p := range posts {
		day := &series[daysBetween(first, p.Date)]
		day.PostCount++
		day.TotalScore += p.Score
		day.TotalComments += p.NumComments
		day.TotalEngagement += p.Engagement
	}

	counts := make([]float64, len(series))
	engagement := make([]float64, len(series))
	cumulative := 0

	for i := range series {
		day := &series[i]

		if day.PostCount > 0 {
			day.AvgScore = day.TotalScore / float64(day.PostCount)
			day.AvgComments = day.TotalComments / float64(day.PostCount)
		}

		cumulative += day.PostCount
		day.CumulativePosts = cumulative

		counts[i] = float64(day.PostCount)
		engagement[i] = day.TotalEngagement
	}

	rollingPosts := stats.RollingMean(counts, window)
	rollingEngagement := stats.RollingMean(engagement, window)
	growth := stats.PctChange(rollingPosts)

	for i := range series {
		series[i].RollingPosts = rollingPosts[i]
		series[i].RollingEngagement = rollingEngagement[i]
		series[i].GrowthRate = growth[i]
	}

	return series
}

// sinceDate returns the suffix of series whose dates are on or after start.
// A zero start selects the whole series.
func sinceDate(series []DailyMetric, start time.Time) []DailyMetric {
	if start.IsZero() {
		return series
	}

	start = truncateDay(start)

	for i, day := range series {
		if !day.Date.Before(start) {
			return series[i:]
		}
	}

	return nil
}
