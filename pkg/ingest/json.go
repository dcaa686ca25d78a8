package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

// maxLineBytes bounds a single NDJSON record.
const maxLineBytes = 4 << 20

// looseRecord accepts any JSON type per field so that one bad value rejects
// only its own record.
type looseRecord struct {
	ID          json.RawMessage     `json:"id"`
	Author      json.RawMessage     `json:"author"`
	CreatedUTC  lifecycle.Timestamp `json:"created_utc"`
	Score       json.RawMessage     `json:"score"`
	NumComments json.RawMessage     `json:"num_comments"`
	Subreddit   json.RawMessage     `json:"subreddit"`
	Title       json.RawMessage     `json:"title"`
	SelfText    json.RawMessage     `json:"selftext"`
}

func (l looseRecord) raw() lifecycle.RawPost {
	return lifecycle.RawPost{
		ID:          text(l.ID),
		Author:      text(l.Author),
		CreatedUTC:  l.CreatedUTC,
		Score:       number(l.Score),
		NumComments: number(l.NumComments),
		SourceGroup: text(l.Subreddit),
		Title:       text(l.Title),
		SelfText:    text(l.SelfText),
	}
}

// ReadJSON decodes a JSON array of records.
func ReadJSON(r io.Reader) ([]lifecycle.RawPost, error) {
	var records []looseRecord

	err := json.NewDecoder(r).Decode(&records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}

	posts := make([]lifecycle.RawPost, len(records))
	for i, rec := range records {
		posts[i] = rec.raw()
	}

	return posts, nil
}

// ReadNDJSON decodes one JSON record per line. Blank lines are skipped.
func ReadNDJSON(r io.Reader) ([]lifecycle.RawPost, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)

	var posts []lifecycle.RawPost

	line := 0

	for scanner.Scan() {
		line++

		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		var rec looseRecord

		err := json.Unmarshal(data, &rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedFile, line, err)
		}

		posts = append(posts, rec.raw())
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}

	return posts, nil
}

// text renders a JSON scalar as a string. Strings are unquoted, numbers keep
// their literal form and null or composite values become empty.
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}

		return ""
	case '{', '[', 'n', 't', 'f':
		return ""
	default:
		return string(raw)
	}
}

// number decodes a JSON number or a numeric string.
func number(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	if raw[0] == '"' {
		return parseNumber(text(raw))
	}

	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return nil
	}

	return &v
}
