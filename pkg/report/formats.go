// Package report projects a lifecycle report into its output formats.
package report

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Output formats.
const (
	FormatText     = "text"
	FormatTerminal = "terminal"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatBinary   = "binary"
	FormatArchive  = "archive"
	FormatPlot     = "plot"

	// FormatBinAlias is a short CLI alias for binary output.
	FormatBinAlias = "bin"
)

// ErrUnsupportedFormat indicates the requested output format is not supported.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Formats returns the canonical output formats.
func Formats() []string {
	return []string{FormatText, FormatTerminal, FormatJSON, FormatYAML, FormatBinary, FormatArchive, FormatPlot}
}

// NormalizeFormat canonicalizes a user-provided output format string.
func NormalizeFormat(format string) string {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == FormatBinAlias {
		return FormatBinary
	}

	return normalized
}

// ValidateFormat returns the canonical form of format or ErrUnsupportedFormat.
func ValidateFormat(format string) (string, error) {
	normalized := NormalizeFormat(format)
	if slices.Contains(Formats(), normalized) {
		return normalized, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// Extension returns the file extension used when format is written to disk.
func Extension(format string) string {
	switch NormalizeFormat(format) {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	case FormatBinary:
		return ".bin"
	case FormatArchive:
		return ".json.lz4"
	case FormatPlot:
		return ".html"
	default:
		return ".txt"
	}
}
