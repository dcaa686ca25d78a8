package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

const (
	reportTitle     = "MEME LIFECYCLE ANALYSIS REPORT"
	titleRuleWidth  = 50
	sectionRuleSize = 30
	dateLayout      = "2006-01-02"
	stampLayout     = "2006-01-02 15:04:05"
	percentScale    = 100
)

// Section headings of the text report. Numbers are fixed so that an
// omitted section never renumbers the ones after it.
const (
	SectionOverview       = "1. OVERVIEW"
	SectionEngagement     = "2. ENGAGEMENT METRICS"
	SectionSpread         = "3. SPREAD METRICS"
	SectionPhases         = "4. LIFECYCLE PHASES"
	SectionCurveFit       = "5. CURVE FITTING RESULTS"
	SectionClassification = "6. LIFECYCLE CLASSIFICATION"
	SectionDataQuality    = "7. DATA QUALITY"
)

// TextOptions controls the text projection.
type TextOptions struct {
	// GeneratedAt adds an "Analysis Date" line when non-zero. Leave it zero
	// for byte-stable output.
	GeneratedAt time.Time
}

// RenderText writes the section-numbered plain text report. The phase and
// curve-fit sections are omitted when the report has none.
func RenderText(w io.Writer, rep *lifecycle.Report, opts TextOptions) error {
	var b strings.Builder

	b.WriteString(reportTitle + "\n")
	b.WriteString(strings.Repeat("=", titleRuleWidth) + "\n")
	fmt.Fprintf(&b, "Meme: %s\n", rep.Title)

	if !opts.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Analysis Date: %s\n", opts.GeneratedAt.UTC().Format(stampLayout))
	}

	writeOverview(&b, rep)
	writeEngagement(&b, rep)
	writeSpread(&b, rep)

	if len(rep.Phases) > 0 {
		writePhases(&b, rep.Phases)
	}

	if rep.CurveFit != nil {
		writeCurveFit(&b, rep.CurveFit)
	}

	writeClassification(&b, rep)
	writeDataQuality(&b, rep.Diagnostics)

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	return nil
}

func heading(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s\n%s\n", title, strings.Repeat("-", sectionRuleSize))
}

func writeOverview(b *strings.Builder, rep *lifecycle.Report) {
	m := rep.Metrics

	heading(b, SectionOverview)
	fmt.Fprintf(b, "Total Posts: %s\n", humanize.Comma(int64(m.TotalPosts)))
	fmt.Fprintf(b, "Unique Authors: %s\n", humanize.Comma(int64(m.UniqueAuthors)))
	fmt.Fprintf(b, "Date Range: %s\n", m.DateRange)
	fmt.Fprintf(b, "Duration: %d days\n", m.DurationDays)
	fmt.Fprintf(b, "Peak Date: %s\n", m.PeakDate.Format(dateLayout))
	fmt.Fprintf(b, "Days to Peak: %d\n", m.DaysToPeak)

	if tp := rep.Temporal; tp != nil {
		fmt.Fprintf(b, "Peak Hour (UTC): %02d:00\n", tp.PeakHour)
		fmt.Fprintf(b, "Peak Weekday: %s\n", tp.PeakWeekday)
		fmt.Fprintf(b, "Mean Posts per Active Day: %.2f\n", tp.MeanDailyPosts)
	}
}

func writeEngagement(b *strings.Builder, rep *lifecycle.Report) {
	m := rep.Metrics

	heading(b, SectionEngagement)
	fmt.Fprintf(b, "Average Score: %.1f\n", m.AvgScore)
	fmt.Fprintf(b, "Average Comments: %.1f\n", m.AvgComments)
	fmt.Fprintf(b, "Total Engagement: %s\n", humanize.Commaf(m.TotalEngagement))
	fmt.Fprintf(b, "Viral Concentration: %s\n", percent(m.ViralConcentration))
}

func writeSpread(b *strings.Builder, rep *lifecycle.Report) {
	m := rep.Metrics

	heading(b, SectionSpread)
	fmt.Fprintf(b, "Posts per Author: %.2f\n", m.PostsPerAuthor)
	fmt.Fprintf(b, "Source Group Count: %d\n", m.SourceGroupCount)
	fmt.Fprintf(b, "Active Days Ratio: %s\n", percent(m.ActiveDaysRatio))

	if m.GrowthDeclineRatio != nil {
		fmt.Fprintf(b, "Growth/Decline Ratio: %.2f (%s growth, %s decline posts)\n",
			*m.GrowthDeclineRatio,
			humanize.Comma(int64(*m.GrowthPhasePosts)),
			humanize.Comma(int64(*m.DeclinePhasePosts)))
	}

	if len(rep.SourceGroups) > 0 {
		b.WriteString("Top Source Groups:\n")

		for _, g := range rep.SourceGroups {
			fmt.Fprintf(b, "  - %s: %s (%s)\n", g.Name, humanize.Comma(int64(g.Posts)), percent(g.Share))
		}
	}
}

func writePhases(b *strings.Builder, phases []lifecycle.Phase) {
	heading(b, SectionPhases)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.AppendHeader(table.Row{"Phase", "Period", "Days", "Total Posts", "Avg Daily Posts"})

	for _, p := range phases {
		tbl.AppendRow(table.Row{
			string(p.Label),
			p.Start.Format(dateLayout) + " to " + p.End.Format(dateLayout),
			p.DurationDays,
			humanize.Comma(int64(p.TotalPosts)),
			fmt.Sprintf("%.1f", p.AvgDailyPosts),
		})
	}

	b.WriteString(tbl.Render() + "\n")
}

func writeCurveFit(b *strings.Builder, fit *lifecycle.CurveFitResult) {
	heading(b, SectionCurveFit)
	fmt.Fprintf(b, "Model: %s\n", fit.Model)
	fmt.Fprintf(b, "R-squared: %.3f\n", fit.RSquared)
	fmt.Fprintf(b, "Peak Day: %d (%s)\n", fit.PeakDay, fit.PeakDate().Format(dateLayout))
	fmt.Fprintf(b, "Spread: %d days\n", fit.SpreadDays)
	fmt.Fprintf(b, "Window: %s, %d days\n", fit.WindowStart.Format(dateLayout), fit.Samples)
}

func writeClassification(b *strings.Builder, rep *lifecycle.Report) {
	heading(b, SectionClassification)
	fmt.Fprintf(b, "Lifecycle Type: %s\n", rep.Classification.Lifecycle)
	fmt.Fprintf(b, "Spread Pattern: %s\n", rep.Classification.SpreadPattern)
}

func writeDataQuality(b *strings.Builder, d lifecycle.Diagnostics) {
	heading(b, SectionDataQuality)
	fmt.Fprintf(b, "Accepted Records: %s\n", humanize.Comma(int64(d.AcceptedRecords)))
	fmt.Fprintf(b, "Skipped Records: %s\n", humanize.Comma(int64(d.SkippedRecords)))

	for _, reason := range d.SortedSkipReasons() {
		fmt.Fprintf(b, "  - %s: %d\n", reason, d.SkipReasons[reason])
	}

	for _, s := range d.Stages {
		if s.Status == lifecycle.StatusOK {
			continue
		}

		fmt.Fprintf(b, "Stage %s: %s", s.Stage, s.Status)

		if s.Detail != "" {
			fmt.Fprintf(b, " (%s)", s.Detail)
		}

		b.WriteString("\n")
	}
}

func percent(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*percentScale)
}
