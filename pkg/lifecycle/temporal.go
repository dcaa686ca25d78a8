package lifecycle

import (
	"cmp"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/memefang/pkg/alg/stats"
)

const (
	hoursInDay  = 24
	daysInWeek  = 7
	topGroupCap = 10
)

// weekdayNames lists weekdays Monday first.
var weekdayNames = [daysInWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// TemporalPatterns describes when during the day and week posts appear.
type TemporalPatterns struct {
	Hourly         [hoursInDay]int `json:"hourly" yaml:"hourly"`
	Weekday        [daysInWeek]int `json:"weekday" yaml:"weekday"`
	PeakHour       int             `json:"peak_hour" yaml:"peak_hour"`
	PeakWeekday    string          `json:"peak_weekday" yaml:"peak_weekday"`
	ActiveDays     int             `json:"active_days" yaml:"active_days"`
	MeanDailyPosts float64         `json:"mean_daily_posts" yaml:"mean_daily_posts"`
}

// WeekdayName returns the name of weekday index i of
// [TemporalPatterns.Weekday], Monday being 0.
func WeekdayName(i int) string {
	return weekdayNames[i%daysInWeek]
}

// SourceGroupShare is the post volume of one source group.
type SourceGroupShare struct {
	Name  string  `json:"name" yaml:"name"`
	Posts int     `json:"posts" yaml:"posts"`
	Share float64 `json:"share" yaml:"share"`
}

// AnalyzeTemporal computes hour-of-day and day-of-week distributions.
// MeanDailyPosts averages over days with at least one post. Returns nil for
// an empty batch.
func AnalyzeTemporal(posts []PostRecord) *TemporalPatterns {
	if len(posts) == 0 {
		return nil
	}

	tp := &TemporalPatterns{}
	days := make(map[time.Time]struct{})

	for _, p := range posts {
		tp.Hourly[p.CreatedUTC.Hour()]++
		tp.Weekday[mondayIndex(p.CreatedUTC.Weekday())]++
		days[p.Date] = struct{}{}
	}

	tp.PeakHour = stats.ArgMax(tp.Hourly[:])
	tp.PeakWeekday = WeekdayName(stats.ArgMax(tp.Weekday[:]))
	tp.ActiveDays = len(days)
	tp.MeanDailyPosts = float64(len(posts)) / float64(len(days))

	return tp
}

// TopSourceGroups returns up to ten source groups by post count, ties broken
// by name. Posts without a source group are ignored.
func TopSourceGroups(posts []PostRecord) []SourceGroupShare {
	counts := make(map[string]int)

	for _, p := range posts {
		if p.SourceGroup != "" {
			counts[p.SourceGroup]++
		}
	}

	out := make([]SourceGroupShare, 0, len(counts))
	for name, n := range counts {
		out = append(out, SourceGroupShare{Name: name, Posts: n, Share: float64(n) / float64(len(posts))})
	}

	slices.SortFunc(out, func(a, b SourceGroupShare) int {
		if c := cmp.Compare(b.Posts, a.Posts); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	if len(out) > topGroupCap {
		out = out[:topGroupCap]
	}

	return out
}

func mondayIndex(wd time.Weekday) int {
	return (int(wd) + daysInWeek - 1) % daysInWeek
}
