package terminal

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Progress bar characters.
const (
	ProgressFilled = "█"
	ProgressEmpty  = "░"
)

// percentMultiplier converts a 0–1 fraction to percent.
const percentMultiplier = 100

// DrawProgressBar draws a bar of width cells filled to value, clamped to [0, 1].
// DrawProgressBar(0.7, 10) returns "███████░░░".
func DrawProgressBar(value float64, width int) string {
	value = max(0, min(value, 1))
	filled := int(value * float64(width))

	return strings.Repeat(ProgressFilled, filled) + strings.Repeat(ProgressEmpty, width-filled)
}

// DrawPercentBar draws a labeled percentage bar.
// Example: "Growth       ████████████████░░░░  68%  (106)".
func DrawPercentBar(label string, fraction float64, count, labelWidth, barWidth int) string {
	return fmt.Sprintf("%s %s %3d%%  (%d)",
		PadRight(label, labelWidth), DrawProgressBar(fraction, barWidth), int(fraction*percentMultiplier), count)
}

// Level is a semantic coloring level.
type Level int

// Semantic levels.
const (
	LevelNeutral Level = iota
	LevelGood
	LevelWarning
	LevelBad
)

// Colorize wraps s in the color of level unless cfg disables color.
func (cfg Config) Colorize(s string, level Level) string {
	if cfg.NoColor {
		return s
	}

	var c *color.Color

	switch level {
	case LevelGood:
		c = color.New(color.FgGreen)
	case LevelWarning:
		c = color.New(color.FgYellow)
	case LevelBad:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.Bold)
	}

	c.EnableColor()

	return c.Sprint(s)
}
