package lifecycle_test

import (
	"fmt"
	"math"
	"time"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

func ptr(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// rawSeries builds raw posts with counts[i] posts on start+i days. Each post
// has score 10 and 1 comment, posted at 12:00 UTC.
func rawSeries(start time.Time, counts []int) []lifecycle.RawPost {
	var out []lifecycle.RawPost

	for i, n := range counts {
		ts := start.AddDate(0, 0, i).Add(12 * time.Hour)

		for j := range n {
			out = append(out, lifecycle.RawPost{
				ID:          fmt.Sprintf("p-%d-%d", i, j),
				Author:      fmt.Sprintf("author-%d", j%5),
				CreatedUTC:  lifecycle.Timestamp(ts.Format("2006-01-02 15:04:05")),
				Score:       ptr(10),
				NumComments: ptr(1),
				SourceGroup: []string{"memes", "dankmemes"}[j%2],
			})
		}
	}

	return out
}

func postSeries(start time.Time, counts []int) []lifecycle.PostRecord {
	posts, _ := lifecycle.Normalize(rawSeries(start, counts))

	return posts
}

// fortyDayCounts rises from 1 on day 1 to 50 on day 20 and falls back to 2
// for days 21–40.
func fortyDayCounts() []int {
	counts := make([]int, 40)

	for i := range 20 {
		counts[i] = int(math.Round(1 + float64(i)*49/19))
	}

	for i := 20; i < 40; i++ {
		counts[i] = 2
	}

	return counts
}
