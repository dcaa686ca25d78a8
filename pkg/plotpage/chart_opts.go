package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	dataZoomEndPercent = 100
	markerSymbol       = "none"
	markerLineWidth    = 1.5
)

// ChartOpts derives go-echarts options from a dashboard theme.
type ChartOpts struct {
	theme ThemeConfig
}

// NewChartOpts creates chart options for theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{theme: GetThemeConfig(theme)}
}

// DefaultChartOpts returns chart options for the dark theme.
func DefaultChartOpts() *ChartOpts {
	return NewChartOpts(ThemeDark)
}

// Init sizes the chart and paints the theme background.
func (c *ChartOpts) Init(width, height string) opts.Initialization {
	return opts.Initialization{
		Width:           width,
		Height:          height,
		BackgroundColor: c.theme.ChartBackground,
		Theme:           c.theme.EChartsTheme,
	}
}

// Legend places a scrollable legend above the plot area.
func (c *ChartOpts) Legend() opts.Legend {
	return opts.Legend{
		Show:      opts.Bool(true),
		Type:      "scroll",
		Top:       "2%",
		Left:      "center",
		TextStyle: &opts.TextStyle{Color: c.theme.ChartTextMuted},
	}
}

// XAxis returns the category axis used for day, hour and group labels.
func (c *ChartOpts) XAxis(name string) opts.XAxis {
	return opts.XAxis{
		Name:      name,
		AxisLabel: c.axisLabel(),
		AxisLine:  c.axisLine(),
	}
}

// YAxis returns the value axis with horizontal grid lines.
func (c *ChartOpts) YAxis(name string) opts.YAxis {
	return opts.YAxis{
		Name:      name,
		AxisLabel: c.axisLabel(),
		AxisLine:  c.axisLine(),
		SplitLine: &opts.SplitLine{
			Show:      opts.Bool(true),
			LineStyle: &opts.LineStyle{Color: c.theme.ChartGrid},
		},
	}
}

// DataZoom lets long daily series be narrowed with a slider or the wheel.
func (c *ChartOpts) DataZoom() []opts.DataZoom {
	return []opts.DataZoom{
		{Type: "slider", Start: 0, End: dataZoomEndPercent},
		{Type: "inside"},
	}
}

// Tooltip returns tooltip options for trigger ("axis" or "item").
func (c *ChartOpts) Tooltip(trigger string) opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}
}

// Marker styles a vertical line that flags one category, such as the
// peak day. The label uses the primary text color so it reads over the
// series; the line uses the grid color so it stays behind them.
func (c *ChartOpts) Marker() opts.MarkLineStyle {
	return opts.MarkLineStyle{
		Symbol: []string{markerSymbol, markerSymbol},
		Label:  &opts.Label{Show: opts.Bool(true), Color: c.theme.ChartText},
		LineStyle: &opts.LineStyle{
			Color: c.theme.ChartGrid,
			Width: markerLineWidth,
			Type:  "dashed",
		},
	}
}

func (c *ChartOpts) axisLabel() *opts.AxisLabel {
	return &opts.AxisLabel{Color: c.theme.ChartTextMuted}
}

func (c *ChartOpts) axisLine() *opts.AxisLine {
	return &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}}
}
