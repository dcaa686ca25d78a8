// Package ingest loads raw post batches from files and databases.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

// Input formats.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

// Sentinel errors.
var (
	ErrUnknownFormat = errors.New("unknown input format")
	ErrMissingColumn = errors.New("missing required column")
	ErrMalformedFile = errors.New("malformed input file")
	ErrNoInputFile   = errors.New("no matching input file")
	ErrInvalidTable  = errors.New("invalid table name")
)

// Source yields the raw posts of one meme.
type Source interface {
	Fetch(ctx context.Context, meme string) ([]lifecycle.RawPost, error)
}

// FileSource reads a single file; the meme name is not used for filtering.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context, _ string) ([]lifecycle.RawPost, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	return ReadFile(s.Path)
}

// DetectFormat infers the input format from a file extension.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".ndjson", ".jsonl":
		return FormatNDJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ReadFile loads the raw posts stored at path.
func ReadFile(path string) ([]lifecycle.RawPost, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	posts, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return posts, nil
}

// Read decodes raw posts in format from r.
func Read(r io.Reader, format string) ([]lifecycle.RawPost, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSON:
		return ReadJSON(r)
	case FormatNDJSON:
		return ReadNDJSON(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
