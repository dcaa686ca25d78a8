package lifecycle

import (
	"fmt"
	"math"
	"time"

	"github.com/Sumatoshi-tech/memefang/pkg/alg/stats"
)

// DefaultTopShare is the fraction of highest-engagement posts used for
// viral concentration.
const DefaultTopShare = 0.1

// topShareEpsilon absorbs floating-point error in n×share before flooring.
const topShareEpsilon = 1e-9

// LifecycleMetrics are summary statistics over the whole batch.
// The growth/decline fields are nil unless the raw peak is after the first
// day.
type LifecycleMetrics struct {
	TotalPosts         int       `json:"total_posts" yaml:"total_posts"`
	UniqueAuthors      int       `json:"unique_authors" yaml:"unique_authors"`
	StartDate          time.Time `json:"start_date" yaml:"start_date"`
	EndDate            time.Time `json:"end_date" yaml:"end_date"`
	DateRange          string    `json:"date_range" yaml:"date_range"`
	DurationDays       int       `json:"duration_days" yaml:"duration_days"`
	AvgScore           float64   `json:"avg_score" yaml:"avg_score"`
	AvgComments        float64   `json:"avg_comments" yaml:"avg_comments"`
	TotalEngagement    float64   `json:"total_engagement" yaml:"total_engagement"`
	PostsPerAuthor     float64   `json:"posts_per_author" yaml:"posts_per_author"`
	SourceGroupCount   int       `json:"source_group_count" yaml:"source_group_count"`
	PeakDate           time.Time `json:"peak_date" yaml:"peak_date"`
	DaysToPeak         int       `json:"days_to_peak" yaml:"days_to_peak"`
	GrowthPhasePosts   *int      `json:"growth_phase_posts,omitempty" yaml:"growth_phase_posts,omitempty"`
	DeclinePhasePosts  *int      `json:"decline_phase_posts,omitempty" yaml:"decline_phase_posts,omitempty"`
	GrowthDeclineRatio *float64  `json:"growth_decline_ratio,omitempty" yaml:"growth_decline_ratio,omitempty"`
	ActiveDaysRatio    float64   `json:"active_days_ratio" yaml:"active_days_ratio"`
	ViralConcentration float64   `json:"viral_concentration" yaml:"viral_concentration"`
}

// ComputeMetrics summarizes the full, unwindowed batch. series must be the
// [Aggregate] output for posts. The peak is the first day with the highest
// raw post count. topShare selects the ⌊n×topShare⌋ most engaging posts for
// viral concentration; values outside (0, 1] fall back to [DefaultTopShare].
func ComputeMetrics(posts []PostRecord, series []DailyMetric, topShare float64) (LifecycleMetrics, error) {
	if len(posts) == 0 || len(series) == 0 {
		return LifecycleMetrics{}, fmt.Errorf("%w: no accepted records", ErrInsufficientData)
	}

	if topShare <= 0 || topShare > 1 {
		topShare = DefaultTopShare
	}

	authors := make([]string, len(posts))
	groups := make([]string, 0, len(posts))
	engagement := make([]float64, len(posts))

	var scoreSum, commentSum float64

	for i, p := range posts {
		authors[i] = p.Author
		engagement[i] = p.Engagement
		scoreSum += p.Score
		commentSum += p.NumComments

		if p.SourceGroup != "" {
			groups = append(groups, p.SourceGroup)
		}
	}

	n := float64(len(posts))
	first, last := series[0].Date, series[len(series)-1].Date

	m := LifecycleMetrics{
		TotalPosts:       len(posts),
		UniqueAuthors:    stats.CountDistinct(authors),
		StartDate:        first,
		EndDate:          last,
		DateRange:        first.Format(dateLayout) + " to " + last.Format(dateLayout),
		DurationDays:     daysBetween(first, last),
		AvgScore:         scoreSum / n,
		AvgComments:      commentSum / n,
		TotalEngagement:  stats.Sum(engagement),
		SourceGroupCount: stats.CountDistinct(groups),
	}

	m.PostsPerAuthor = n / float64(m.UniqueAuthors)

	counts := make([]int, len(series))
	active := 0

	for i, day := range series {
		counts[i] = day.PostCount

		if day.PostCount > 0 {
			active++
		}
	}

	peak := stats.ArgMax(counts)
	m.PeakDate = series[peak].Date
	m.DaysToPeak = daysBetween(first, m.PeakDate)
	m.ActiveDaysRatio = float64(active) / float64(len(series))

	if m.DaysToPeak > 0 {
		growth := stats.Sum(counts[:peak])
		decline := stats.Sum(counts[peak:])
		ratio := float64(growth) / float64(max(decline, 1))

		m.GrowthPhasePosts = &growth
		m.DeclinePhasePosts = &decline
		m.GrowthDeclineRatio = &ratio
	}

	m.ViralConcentration = viralConcentration(engagement, topShare)

	return m, nil
}

// viralConcentration is the engagement share of the top ⌊n×share⌋ posts.
// A non-positive total has no meaningful share and yields 0.
func viralConcentration(engagement []float64, share float64) float64 {
	total := stats.Sum(engagement)
	if total <= 0 {
		return 0
	}

	k := int(math.Floor(float64(len(engagement))*share + topShareEpsilon))

	return stats.Clamp(stats.TopSum(engagement, k)/total, 0, 1)
}
