package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

// CSV column names.
const (
	colID          = "id"
	colAuthor      = "author"
	colCreated     = "created_utc"
	colScore       = "score"
	colNumComments = "num_comments"
	colSubreddit   = "subreddit"
	colTitle       = "title"
	colSelfText    = "selftext"
)

var requiredColumns = []string{colID, colCreated, colScore, colNumComments}

// ReadCSV decodes a headed CSV file. Unknown columns are ignored and
// non-numeric counters decode as missing so that normalization can reject
// the record.
func ReadCSV(r io.Reader) ([]lifecycle.RawPost, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedFile, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}

	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var posts []lifecycle.RawPost

	for {
		row, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedFile, readErr)
		}

		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}

			return row[i]
		}

		posts = append(posts, lifecycle.RawPost{
			ID:          cell(colID),
			Author:      cell(colAuthor),
			CreatedUTC:  lifecycle.Timestamp(cell(colCreated)),
			Score:       parseNumber(cell(colScore)),
			NumComments: parseNumber(cell(colNumComments)),
			SourceGroup: cell(colSubreddit),
			Title:       cell(colTitle),
			SelfText:    cell(colSelfText),
		})
	}

	return posts, nil
}

// parseNumber returns nil for blank, non-numeric or non-finite values.
func parseNumber(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}
