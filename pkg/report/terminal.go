package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
	"github.com/Sumatoshi-tech/memefang/pkg/terminal"
)

const (
	termLabelWidth = 22
	termBarWidth   = 24

	// Fit quality bands for coloring R².
	goodFitR2 = 0.8
	weakFitR2 = 0.5
)

// RenderTerminal writes a compact boxed summary for interactive use.
func RenderTerminal(w io.Writer, rep *lifecycle.Report, cfg terminal.Config) error {
	var b strings.Builder

	m := rep.Metrics

	b.WriteString(terminal.DrawHeader(strings.ToUpper(rep.Title), m.DateRange, cfg.Width) + "\n")
	fmt.Fprintf(&b, "%s %s   %s %s\n",
		terminal.PadRight("Lifecycle", termLabelWidth), cfg.Colorize(rep.Classification.Lifecycle, terminal.LevelNeutral),
		"Spread", cfg.Colorize(rep.Classification.SpreadPattern, spreadLevel(rep.Classification.SpreadPattern)))
	fmt.Fprintf(&b, "%s %s posts, %s authors, peak %s (+%dd)\n",
		terminal.PadRight("Volume", termLabelWidth),
		humanize.Comma(int64(m.TotalPosts)), humanize.Comma(int64(m.UniqueAuthors)),
		m.PeakDate.Format(dateLayout), m.DaysToPeak)

	b.WriteString(terminal.DrawSeparator(cfg.Width) + "\n")
	b.WriteString(terminal.DrawPercentBar("Viral concentration", m.ViralConcentration,
		m.TotalPosts, termLabelWidth, termBarWidth) + "\n")
	b.WriteString(terminal.DrawPercentBar("Active days", m.ActiveDaysRatio,
		len(rep.Series), termLabelWidth, termBarWidth) + "\n")

	total := 0
	for _, p := range rep.Phases {
		total += p.TotalPosts
	}

	for _, p := range rep.Phases {
		share := 0.0
		if total > 0 {
			share = float64(p.TotalPosts) / float64(total)
		}

		b.WriteString(terminal.DrawPercentBar(string(p.Label)+" phase", share, p.TotalPosts,
			termLabelWidth, termBarWidth) + "\n")
	}

	if fit := rep.CurveFit; fit != nil {
		bar := "[" + terminal.DrawProgressBar(fit.RSquared, termBarWidth) + "]"
		fmt.Fprintf(&b, "%s %s R²=%s, peak day %d, spread %dd\n",
			terminal.PadRight("Gaussian fit", termLabelWidth), bar,
			cfg.Colorize(fmt.Sprintf("%.3f", fit.RSquared), fitLevel(fit.RSquared)), fit.PeakDay, fit.SpreadDays)
	}

	if d := rep.Diagnostics; d.SkippedRecords > 0 {
		b.WriteString(terminal.DrawSeparator(cfg.Width) + "\n")
		fmt.Fprintf(&b, "%s %s\n", terminal.PadRight("Skipped records", termLabelWidth),
			cfg.Colorize(humanize.Comma(int64(d.SkippedRecords)), terminal.LevelWarning))
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write terminal report: %w", err)
	}

	return nil
}

func spreadLevel(pattern string) terminal.Level {
	switch pattern {
	case lifecycle.SpreadSlowBurn:
		return terminal.LevelGood
	case lifecycle.SpreadBalanced:
		return terminal.LevelWarning
	default:
		return terminal.LevelBad
	}
}

func fitLevel(r2 float64) terminal.Level {
	switch {
	case r2 >= goodFitR2:
		return terminal.LevelGood
	case r2 >= weakFitR2:
		return terminal.LevelWarning
	default:
		return terminal.LevelBad
	}
}
