package lifecycle_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "rfc3339", input: "2024-03-05T14:30:00Z", want: want},
		{name: "rfc3339_offset", input: "2024-03-05T16:30:00+02:00", want: want},
		{name: "preprocessed", input: "2024-03-05 14:30:00", want: want},
		{name: "fractional", input: "2024-03-05 14:30:00.000", want: want},
		{name: "postgres_text", input: "2024-03-05 16:30:00+02", want: want},
		{name: "space_offset", input: "2024-03-05 09:30:00-05:00", want: want},
		{name: "no_zone", input: "2024-03-05T14:30:00", want: want},
		{name: "date_only", input: "2024-03-05", want: day(2024, time.March, 5)},
		{name: "unix", input: "1709649000", want: want},
		{name: "unix_float", input: "1709649000.0", want: want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := lifecycle.ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"", "yesterday", "NaN", "2024-13-01",
		"1717329600000", "-86400", "2100-01-01", "1969-12-31 23:59:59",
	} {
		_, err := lifecycle.ParseTimestamp(input)
		require.ErrorIs(t, err, lifecycle.ErrMalformedInput, input)
	}
}

func TestNormalize_MillisecondEpochRejected(t *testing.T) {
	t.Parallel()

	raws := []lifecycle.RawPost{
		{ID: "s", CreatedUTC: "1717243200", Score: ptr(1), NumComments: ptr(0)},
		{ID: "ms", CreatedUTC: "1717329600000", Score: ptr(1), NumComments: ptr(0)},
		{ID: "t", CreatedUTC: "2024-06-03 12:00:00", Score: ptr(1), NumComments: ptr(0)},
	}

	posts, rejected := lifecycle.Normalize(raws)
	require.Len(t, posts, 2)
	require.Len(t, rejected, 1)
	assert.Equal(t, "ms", rejected[0].ID)
	assert.Equal(t, lifecycle.ReasonBadTimestamp, rejected[0].Reason)

	series := lifecycle.Aggregate(posts, lifecycle.DefaultRollingWindow)
	require.Len(t, series, 3)
	assert.Equal(t, day(2024, time.June, 1), series[0].Date)
	assert.Equal(t, day(2024, time.June, 3), series[len(series)-1].Date)
	assert.Equal(t, 2, series[len(series)-1].DaysSinceStart)
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var raws []lifecycle.RawPost

	err := json.Unmarshal([]byte(`[
		{"id":"a","created_utc":"2024-01-01 10:00:00","score":1,"num_comments":0},
		{"id":"b","created_utc":1704103200,"score":1,"num_comments":0},
		{"id":"c","created_utc":null,"score":1,"num_comments":0}
	]`), &raws)
	require.NoError(t, err)
	require.Len(t, raws, 3)

	assert.Equal(t, lifecycle.Timestamp("2024-01-01 10:00:00"), raws[0].CreatedUTC)
	assert.Equal(t, lifecycle.Timestamp("1704103200"), raws[1].CreatedUTC)
	assert.Empty(t, raws[2].CreatedUTC)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	raws := []lifecycle.RawPost{
		{ID: "a", Author: "alice", CreatedUTC: "2024-01-01 23:59:59", Score: ptr(10), NumComments: ptr(3), SourceGroup: "memes"},
		{ID: "", CreatedUTC: "2024-01-01", Score: ptr(1), NumComments: ptr(1)},
		{ID: "b", CreatedUTC: "not a date", Score: ptr(1), NumComments: ptr(1)},
		{ID: "c", CreatedUTC: "2024-01-02", Score: nil, NumComments: ptr(1)},
		{ID: "d", CreatedUTC: "2024-01-02", Score: ptr(1), NumComments: nil},
		{ID: "a", CreatedUTC: "2024-01-03", Score: ptr(1), NumComments: ptr(1)},
		{ID: "e", Author: "  ", CreatedUTC: "2024-01-02T00:00:01Z", Score: ptr(-4), NumComments: ptr(0)},
	}

	posts, rejected := lifecycle.Normalize(raws)
	require.Len(t, posts, 2)
	require.Len(t, rejected, 5)

	first := posts[0]
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, day(2024, time.January, 1), first.Date)
	assert.InDelta(t, 16, first.Engagement, 1e-9)
	assert.Equal(t, "memes", first.SourceGroup)

	assert.Equal(t, lifecycle.DeletedAuthor, posts[1].Author)
	assert.InDelta(t, -4, posts[1].Engagement, 1e-9)

	reasons := make([]string, len(rejected))
	for i, r := range rejected {
		reasons[i] = r.Reason
	}

	assert.Equal(t, []string{
		lifecycle.ReasonMissingID,
		lifecycle.ReasonBadTimestamp,
		lifecycle.ReasonBadScore,
		lifecycle.ReasonBadCommentsCount,
		lifecycle.ReasonDuplicateID,
	}, reasons)

	assert.ErrorIs(t, rejected[0].Err(), lifecycle.ErrMalformedInput)
	assert.Equal(t, 5, rejected[4].Index)
}
