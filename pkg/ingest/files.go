package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// File naming of cleaned collection output:
// processed_reddit_<meme>_<YYYYMMDD>_<HHMMSS>.csv.
const (
	processedPrefix = "processed_reddit_"
	rawPrefix       = "reddit_"
	stampDateLen    = 8
)

// SafeName lowercases meme and replaces spaces with underscores.
func SafeName(meme string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(meme), " ", "_"))
}

// MemeFromFilename extracts the meme name from a collection file name. A
// trailing date and time stamp is dropped; names without one are kept
// whole.
func MemeFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimPrefix(base, processedPrefix)
	base = strings.TrimPrefix(base, rawPrefix)

	parts := strings.Split(base, "_")

	n := len(parts)
	if n > 2 && isDigits(parts[n-1]) && isDigits(parts[n-2]) && len(parts[n-2]) == stampDateLen {
		parts = parts[:n-2]
	}

	return strings.Join(parts, "_")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}

// LatestFile returns the most recently modified processed CSV in dir for
// meme, or for any meme when meme is empty. Equal modification times
// resolve to the lexically greatest name.
func LatestFile(dir, meme string) (string, error) {
	pattern := processedPrefix + "*_*.csv"
	if meme != "" {
		pattern = processedPrefix + SafeName(meme) + "_*.csv"
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", pattern, err)
	}

	var (
		latest     string
		latestInfo os.FileInfo
	)

	for _, m := range matches {
		info, statErr := os.Stat(m)
		if statErr != nil || info.IsDir() {
			continue
		}

		if latestInfo == nil || info.ModTime().After(latestInfo.ModTime()) ||
			(info.ModTime().Equal(latestInfo.ModTime()) && m > latest) {
			latest, latestInfo = m, info
		}
	}

	if latest == "" {
		return "", fmt.Errorf("%w: %s in %s", ErrNoInputFile, pattern, dir)
	}

	return latest, nil
}
