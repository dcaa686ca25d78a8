package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
	"github.com/Sumatoshi-tech/memefang/pkg/plotpage"
)

const (
	phaseAreaOpacity   = 0.25
	rollingAreaOpacity = 0.15
	hourLabelLayout    = "%02d:00"
	hoursPerDay        = 24
	plotDecimalPlaces  = 2
	roundScale         = 100
)

// PlotOptions controls the HTML dashboard.
type PlotOptions struct {
	Theme plotpage.Theme
}

// RenderPlot writes an interactive HTML dashboard for rep.
func RenderPlot(w io.Writer, rep *lifecycle.Report, opts PlotOptions) error {
	page := BuildPlotPage(rep, opts)

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

// BuildPlotPage assembles the dashboard sections without rendering them.
func BuildPlotPage(rep *lifecycle.Report, opts PlotOptions) *plotpage.Page {
	theme := opts.Theme
	if theme == "" {
		theme = plotpage.ThemeDark
	}

	cOpts := plotpage.NewChartOpts(theme)
	palette := plotpage.GetChartPalette(theme)

	page := plotpage.NewPage(rep.Title+" Lifecycle", rep.Metrics.DateRange).WithTheme(theme)
	page.AddStats(
		plotpage.Stat{Label: "Total posts", Value: humanize.Comma(int64(rep.Metrics.TotalPosts))},
		plotpage.Stat{Label: "Unique authors", Value: humanize.Comma(int64(rep.Metrics.UniqueAuthors))},
		plotpage.Stat{Label: "Duration", Value: fmt.Sprintf("%d days", rep.Metrics.DurationDays)},
		plotpage.Stat{Label: "Lifecycle", Value: rep.Classification.Lifecycle},
		plotpage.Stat{Label: "Spread", Value: rep.Classification.SpreadPattern},
	)

	labels := seriesLabels(rep.Series)

	page.Add(activitySection(cOpts, palette, rep, labels))

	if len(rep.Phases) > 0 {
		page.Add(phaseSection(cOpts, palette, rep, labels))
	}

	page.Add(engagementSection(cOpts, palette, rep, labels))

	if len(rep.SourceGroups) > 0 {
		page.Add(sourceGroupSection(cOpts, palette, rep.SourceGroups))
	}

	if rep.Temporal != nil {
		page.Add(hourlySection(cOpts, palette, rep.Temporal))
		page.Add(weekdaySection(cOpts, palette, rep.Temporal))
	}

	return page
}

func seriesLabels(series []lifecycle.DailyMetric) []string {
	labels := make([]string, len(series))
	for i, d := range series {
		labels[i] = d.Date.Format(dateLayout)
	}

	return labels
}

func activitySection(cOpts *plotpage.ChartOpts, palette plotpage.ChartPalette, rep *lifecycle.Report, labels []string) plotpage.Section {
	posts := make([]plotpage.SeriesData, len(rep.Series))
	rolling := make([]plotpage.SeriesData, len(rep.Series))

	for i, d := range rep.Series {
		posts[i] = d.PostCount
		rolling[i] = round2(d.RollingPosts)
	}

	series := []plotpage.LineSeries{
		{
			Name: "Daily posts", Data: posts, Color: palette.Primary[0],
			Marker: rep.Metrics.PeakDate.Format(dateLayout), MarkerName: "Peak",
		},
		{Name: "7-day mean", Data: rolling, Color: palette.Primary[1], Smooth: true, AreaOpacity: rollingAreaOpacity},
	}

	hint := plotpage.Hint{Title: "How to read", Items: []string{
		"The raw count shows individual viral days; the rolling mean shows the trend.",
	}}

	if fitted := fittedSeries(rep.Series, rep.CurveFit); fitted != nil {
		series = append(series, plotpage.LineSeries{
			Name: "Gaussian fit", Data: fitted, Color: palette.Semantic.Good, Dashed: true,
		})
		hint.Items = append(hint.Items, fmt.Sprintf(
			"The fitted curve peaks on %s with R² %.3f.",
			rep.CurveFit.PeakDate().Format(dateLayout), rep.CurveFit.RSquared))
	}

	return plotpage.Section{
		Title:    "Daily activity",
		Subtitle: "Posts per day with the rolling mean and the fitted intensity curve",
		Hint:     hint,
		Chart:    plotpage.BuildLineChart(cOpts, labels, series, "Posts"),
	}
}

// fittedSeries evaluates the fitted curve on each day of the curve window.
// Days before the window are gaps.
func fittedSeries(series []lifecycle.DailyMetric, fit *lifecycle.CurveFitResult) []plotpage.SeriesData {
	if fit == nil {
		return nil
	}

	out := make([]plotpage.SeriesData, len(series))

	for i, d := range series {
		if d.Date.Before(fit.WindowStart) {
			continue
		}

		x := d.Date.Sub(fit.WindowStart).Hours() / float64(hoursPerDay)
		out[i] = round2(fit.Evaluate(x))
	}

	return out
}

func phaseSection(cOpts *plotpage.ChartOpts, palette plotpage.ChartPalette, rep *lifecycle.Report, labels []string) plotpage.Section {
	series := make([]plotpage.LineSeries, 0, len(rep.Phases))
	colors := map[lifecycle.PhaseLabel]string{
		lifecycle.PhaseGrowth:  palette.Semantic.Good,
		lifecycle.PhaseDecline: palette.Semantic.Bad,
	}

	items := make([]string, 0, len(rep.Phases))

	for _, phase := range rep.Phases {
		data := make([]plotpage.SeriesData, len(rep.Series))

		for i, d := range rep.Series {
			if inPhase(d.Date, phase) {
				data[i] = round2(d.RollingPosts)
			}
		}

		series = append(series, plotpage.LineSeries{
			Name:        string(phase.Label),
			Data:        data,
			Color:       colors[phase.Label],
			AreaOpacity: phaseAreaOpacity,
		})
		items = append(items, fmt.Sprintf("%s: %s to %s, %s posts over %d days.",
			phase.Label, phase.Start.Format(dateLayout), phase.End.Format(dateLayout),
			humanize.Comma(int64(phase.TotalPosts)), phase.DurationDays))
	}

	return plotpage.Section{
		Title:    "Lifecycle phases",
		Subtitle: "Smoothed activity split at its peak",
		Hint:     plotpage.Hint{Title: "Phases", Items: items},
		Chart:    plotpage.BuildLineChart(cOpts, labels, series, "Posts (7-day mean)"),
	}
}

func inPhase(day time.Time, phase lifecycle.Phase) bool {
	return !day.Before(phase.Start) && !day.After(phase.End)
}

func engagementSection(cOpts *plotpage.ChartOpts, palette plotpage.ChartPalette, rep *lifecycle.Report, labels []string) plotpage.Section {
	total := make([]plotpage.SeriesData, len(rep.Series))
	rolling := make([]plotpage.SeriesData, len(rep.Series))

	for i, d := range rep.Series {
		total[i] = round2(d.TotalEngagement)
		rolling[i] = round2(d.RollingEngagement)
	}

	return plotpage.Section{
		Title:    "Engagement",
		Subtitle: "Score plus comments per day",
		Chart: plotpage.BuildLineChart(cOpts, labels, []plotpage.LineSeries{
			{Name: "Daily engagement", Data: total, Color: palette.Primary[2]},
			{Name: "7-day mean", Data: rolling, Color: palette.Primary[3], Smooth: true},
		}, "Engagement"),
	}
}

func sourceGroupSection(cOpts *plotpage.ChartOpts, palette plotpage.ChartPalette, groups []lifecycle.SourceGroupShare) plotpage.Section {
	labels := make([]string, len(groups))
	data := make([]plotpage.SeriesData, len(groups))

	for i, g := range groups {
		labels[i] = g.Name
		data[i] = g.Posts
	}

	return plotpage.Section{
		Title:    "Top source groups",
		Subtitle: "Communities contributing the most posts",
		Chart: plotpage.BuildBarChart(cOpts, labels, []plotpage.BarSeries{
			{Name: "Posts", Data: data, Color: palette.Primary[4]},
		}, "Posts"),
	}
}

func hourlySection(cOpts *plotpage.ChartOpts, palette plotpage.ChartPalette, tp *lifecycle.TemporalPatterns) plotpage.Section {
	labels := make([]string, hoursPerDay)
	data := make([]plotpage.SeriesData, hoursPerDay)

	for h := range hoursPerDay {
		labels[h] = fmt.Sprintf(hourLabelLayout, h)
		data[h] = tp.Hourly[h]
	}

	return plotpage.Section{
		Title:    "Posting hours",
		Subtitle: "Posts by hour of day (UTC)",
		Hint: plotpage.Hint{Title: "Peaks", Items: []string{
			"Busiest hour: " + fmt.Sprintf(hourLabelLayout, tp.PeakHour) + " UTC",
			"Busiest weekday: " + tp.PeakWeekday,
			"Mean posts per active day: " + strconv.FormatFloat(tp.MeanDailyPosts, 'f', plotDecimalPlaces, 64),
		}},
		Chart: plotpage.BuildBarChart(cOpts, labels, []plotpage.BarSeries{
			{Name: "Posts", Data: data, Color: palette.Primary[5]},
		}, "Posts"),
	}
}

func weekdaySection(cOpts *plotpage.ChartOpts, palette plotpage.ChartPalette, tp *lifecycle.TemporalPatterns) plotpage.Section {
	labels := make([]string, len(tp.Weekday))
	data := make([]plotpage.SeriesData, len(tp.Weekday))

	for i, n := range tp.Weekday {
		labels[i] = lifecycle.WeekdayName(i)
		data[i] = n
	}

	return plotpage.Section{
		Title:    "Posting weekdays",
		Subtitle: "Posts by day of week (UTC)",
		Chart: plotpage.BuildBarChart(cOpts, labels, []plotpage.BarSeries{
			{Name: "Posts", Data: data, Color: palette.Primary[3]},
		}, "Posts"),
	}
}

func round2(v float64) float64 {
	return math.Round(v*roundScale) / roundScale
}
