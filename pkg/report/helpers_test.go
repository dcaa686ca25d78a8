package report_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

func ptr(v float64) *float64 { return &v }

var seriesStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func rawSeries(counts []int) []lifecycle.RawPost {
	var out []lifecycle.RawPost

	for i, n := range counts {
		ts := seriesStart.AddDate(0, 0, i).Add(12 * time.Hour)

		for j := range n {
			out = append(out, lifecycle.RawPost{
				ID:          fmt.Sprintf("p-%d-%d", i, j),
				Author:      fmt.Sprintf("author-%d", j%5),
				CreatedUTC:  lifecycle.Timestamp(ts.Format(time.RFC3339)),
				Score:       ptr(10),
				NumComments: ptr(1),
				SourceGroup: []string{"memes", "dankmemes"}[j%2],
			})
		}
	}

	return out
}

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

func analyze(t *testing.T, meme string, raws []lifecycle.RawPost) *lifecycle.Report {
	t.Helper()

	rep, err := lifecycle.NewAnalyzer(lifecycle.DefaultOptions()).Run(context.Background(), meme, raws)
	require.NoError(t, err)

	return rep
}

// fullReport has phases and a fitted curve.
func fullReport(t *testing.T) *lifecycle.Report {
	t.Helper()

	return analyze(t, "doge_coin", rawSeries(fortyDayCounts()))
}

// shortReport covers five days, too short for phases or a curve fit.
func shortReport(t *testing.T) *lifecycle.Report {
	t.Helper()

	return analyze(t, "pepe", rawSeries([]int{3, 5, 2, 1, 4}))
}
