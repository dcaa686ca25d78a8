package plotpage

// Theme represents a color theme for visualizations.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ThemeConfig holds the theme-specific styling values used by the page and its charts.
type ThemeConfig struct {
	// Base colors.
	Background string
	Surface    string
	Border     string

	// Text colors.
	TextPrimary   string
	TextSecondary string
	TextMuted     string

	Accent string

	// Chart-specific.
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string

	// ECharts theme name.
	EChartsTheme string
}

// ChartPalette returns a consistent color palette for charts.
type ChartPalette struct {
	Primary  []string // Main series colors.
	Semantic struct {
		Good    string
		Warning string
		Bad     string
	}
}

// ParseTheme maps a theme name to a Theme, falling back to ThemeDark.
func ParseTheme(name string) Theme {
	if Theme(name) == ThemeLight {
		return ThemeLight
	}

	return ThemeDark
}

// GetThemeConfig returns the configuration for a given theme.
func GetThemeConfig(theme Theme) ThemeConfig {
	switch theme {
	case ThemeDark:
		return darkTheme
	case ThemeLight:
		return lightTheme
	default:
		return lightTheme
	}
}

// GetChartPalette returns the chart color palette for a given theme.
func GetChartPalette(theme Theme) ChartPalette {
	switch theme {
	case ThemeDark:
		return darkChartPalette
	case ThemeLight:
		return lightChartPalette
	default:
		return lightChartPalette
	}
}

var lightTheme = ThemeConfig{
	Background: "#fafaf9", // stone-50.
	Surface:    "#ffffff",
	Border:     "#e7e5e4", // stone-200.

	TextPrimary:   "#1c1917", // stone-900.
	TextSecondary: "#44403c", // stone-700.
	TextMuted:     "#78716c", // stone-500.

	Accent: "#c2410c", // orange-700.

	ChartBackground: "transparent",
	ChartGrid:       "#e7e5e4",
	ChartAxis:       "#a8a29e", // stone-400.
	ChartText:       "#44403c",
	ChartTextMuted:  "#78716c",

	EChartsTheme: "",
}

var darkTheme = ThemeConfig{
	Background: "#0c0a09", // stone-950.
	Surface:    "#1c1917", // stone-900.
	Border:     "#44403c", // stone-700.

	TextPrimary:   "#fafaf9",
	TextSecondary: "#d6d3d1", // stone-300.
	TextMuted:     "#a8a29e",

	Accent: "#fb923c", // orange-400.

	ChartBackground: "transparent",
	ChartGrid:       "#292524", // stone-800.
	ChartAxis:       "#57534e", // stone-600.
	ChartText:       "#d6d3d1",
	ChartTextMuted:  "#a8a29e",

	EChartsTheme: "dark",
}

var lightChartPalette = ChartPalette{
	Primary: []string{"#c2410c", "#2563eb", "#16a34a", "#9333ea", "#0891b2", "#ca8a04"},
	Semantic: struct {
		Good    string
		Warning string
		Bad     string
	}{Good: "#16a34a", Warning: "#ca8a04", Bad: "#dc2626"},
}

var darkChartPalette = ChartPalette{
	Primary: []string{"#fb923c", "#60a5fa", "#4ade80", "#c084fc", "#22d3ee", "#facc15"},
	Semantic: struct {
		Good    string
		Warning string
		Bad     string
	}{Good: "#22c55e", Warning: "#eab308", Bad: "#ef4444"},
}
