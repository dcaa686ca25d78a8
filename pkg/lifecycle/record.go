package lifecycle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DeletedAuthor stands in for a missing or removed author handle.
const DeletedAuthor = "[deleted]"

// engagementCommentWeight weights comments against score in engagement.
const engagementCommentWeight = 2

// Skip reasons recorded for rejected records.
const (
	ReasonMissingID        = "missing id"
	ReasonDuplicateID      = "duplicate id"
	ReasonBadTimestamp     = "unparseable created_utc"
	ReasonBadScore         = "non-numeric score"
	ReasonBadCommentsCount = "non-numeric num_comments"
)

// timestampLayouts lists the accepted textual forms of created_utc.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	dateLayout,
}

// Timestamp is the raw created_utc value. It decodes from a JSON string or a
// JSON number of unix seconds.
type Timestamp string

// UnmarshalJSON accepts both quoted and numeric timestamps.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*ts = ""

		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string

		err := json.Unmarshal(data, &s)
		if err != nil {
			return fmt.Errorf("decode created_utc: %w", err)
		}

		*ts = Timestamp(s)

		return nil
	}

	*ts = Timestamp(data)

	return nil
}

// RawPost is one input record as produced by collection and cleaning.
// Numeric fields are pointers so that missing values can be told apart
// from zeros.
type RawPost struct {
	ID          string    `json:"id" yaml:"id"`
	Author      string    `json:"author" yaml:"author"`
	CreatedUTC  Timestamp `json:"created_utc" yaml:"created_utc"`
	Score       *float64  `json:"score" yaml:"score"`
	NumComments *float64  `json:"num_comments" yaml:"num_comments"`
	SourceGroup string    `json:"subreddit" yaml:"subreddit"`
	Title       string    `json:"title,omitempty" yaml:"title,omitempty"`
	SelfText    string    `json:"selftext,omitempty" yaml:"selftext,omitempty"`
}

// PostRecord is a validated, immutable post.
type PostRecord struct {
	ID          string
	Author      string
	CreatedUTC  time.Time
	Date        time.Time
	Score       float64
	NumComments float64
	Engagement  float64
	SourceGroup string
}

// Rejection describes a raw record that was skipped during normalization.
type Rejection struct {
	Index  int    `json:"index" yaml:"index"`
	ID     string `json:"id" yaml:"id"`
	Reason string `json:"reason" yaml:"reason"`
}

// Err returns the rejection as an error wrapping [ErrMalformedInput].
func (r Rejection) Err() error {
	return fmt.Errorf("%w: record %d (%q): %s", ErrMalformedInput, r.Index, r.ID, r.Reason)
}

// Normalize validates raw records and converts the accepted ones into
// [PostRecord] values. Records without an id, with a duplicate id, with an
// unparseable timestamp or with non-numeric counters are rejected; the
// rest of the batch is still processed. Input order is preserved.
func Normalize(raws []RawPost) ([]PostRecord, []Rejection) {
	posts := make([]PostRecord, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))

	var rejected []Rejection

	for i, raw := range raws {
		id := strings.TrimSpace(raw.ID)

		reason := ""

		switch {
		case id == "":
			reason = ReasonMissingID
		case !finitePtr(raw.Score):
			reason = ReasonBadScore
		case !finitePtr(raw.NumComments):
			reason = ReasonBadCommentsCount
		}

		if _, dup := seen[id]; reason == "" && dup {
			reason = ReasonDuplicateID
		}

		var created time.Time

		if reason == "" {
			var err error

			created, err = ParseTimestamp(string(raw.CreatedUTC))
			if err != nil {
				reason = ReasonBadTimestamp
			}
		}

		if reason != "" {
			rejected = append(rejected, Rejection{Index: i, ID: id, Reason: reason})

			continue
		}

		seen[id] = struct{}{}
		posts = append(posts, newPostRecord(id, raw, created))
	}

	return posts, rejected
}

func newPostRecord(id string, raw RawPost, created time.Time) PostRecord {
	author := strings.TrimSpace(raw.Author)
	if author == "" {
		author = DeletedAuthor
	}

	score, comments := *raw.Score, *raw.NumComments

	return PostRecord{
		ID:          id,
		Author:      author,
		CreatedUTC:  created,
		Date:        truncateDay(created),
		Score:       score,
		NumComments: comments,
		Engagement:  score + engagementCommentWeight*comments,
		SourceGroup: strings.TrimSpace(raw.SourceGroup),
	}
}

// Accepted created_utc range. Later values are usually epochs in
// milliseconds and are rejected rather than placed centuries ahead.
var (
	minTimestamp = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxTimestamp = time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// ParseTimestamp parses a created_utc value. It accepts RFC 3339, the
// "2006-01-02 15:04:05" form written by the preprocessing step, a bare
// date and unix seconds. Values without a zone are taken as UTC. Times
// before 1970 or from 2100 on are rejected.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrMalformedInput)
	}

	t, err := parseTimestamp(value)
	if err != nil {
		return time.Time{}, err
	}

	if t.Before(minTimestamp) || !t.Before(maxTimestamp) {
		return time.Time{}, fmt.Errorf("%w: timestamp %q out of range", ErrMalformedInput, value)
	}

	return t, nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
	}

	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrMalformedInput, value)
	}

	if secs < float64(minTimestamp.Unix()) || secs >= float64(maxTimestamp.Unix()) {
		return time.Time{}, fmt.Errorf("%w: timestamp %q out of range", ErrMalformedInput, value)
	}

	whole, frac := math.Modf(secs)

	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC(), nil
}

func finitePtr(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from a to b; both are
// UTC midnights.
func daysBetween(a, b time.Time) int {
	return int(b.Unix()/secondsPerDay - a.Unix()/secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60
