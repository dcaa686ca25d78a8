package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/memefang/pkg/ingest"
	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

const sampleCSV = `id,title,selftext,author,created_utc,score,upvote_ratio,num_comments,subreddit,url
a1,Much wow,,shibe,2024-01-01 12:00:00,120,0.97,14,dogecoin,https://example.com/a1
a2,"Such ""quote"", very comma",,,2024-01-02 08:30:00,n/a,0.5,3,memes,https://example.com/a2
a3,Late,,doge_fan,2024-01-03 23:59:59,7.0,0.8,,memes,https://example.com/a3
`

func TestReadCSV(t *testing.T) {
	t.Parallel()

	posts, err := ingest.ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "a1", posts[0].ID)
	assert.Equal(t, "shibe", posts[0].Author)
	assert.Equal(t, lifecycle.Timestamp("2024-01-01 12:00:00"), posts[0].CreatedUTC)
	require.NotNil(t, posts[0].Score)
	assert.InDelta(t, 120.0, *posts[0].Score, 1e-12)
	assert.Equal(t, "dogecoin", posts[0].SourceGroup)

	assert.Equal(t, `Such "quote", very comma`, posts[1].Title)
	assert.Nil(t, posts[1].Score, "non-numeric score decodes as missing")
	assert.Nil(t, posts[2].NumComments, "blank counter decodes as missing")

	accepted, rejected := lifecycle.Normalize(posts)
	assert.Len(t, accepted, 1)
	require.Len(t, rejected, 2)
	assert.Equal(t, lifecycle.ReasonBadScore, rejected[0].Reason)
	assert.Equal(t, lifecycle.ReasonBadCommentsCount, rejected[1].Reason)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	t.Parallel()

	_, err := ingest.ReadCSV(strings.NewReader("id,created_utc,score\nx,2024-01-01,1\n"))
	require.ErrorIs(t, err, ingest.ErrMissingColumn)
}

func TestReadCSV_Empty(t *testing.T) {
	t.Parallel()

	posts, err := ingest.ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestReadJSON_Lenient(t *testing.T) {
	t.Parallel()

	posts, err := ingest.ReadJSON(strings.NewReader(`[
		{"id": "a", "author": null, "created_utc": 1704110400, "score": 3, "num_comments": 1, "subreddit": "memes"},
		{"id": 42, "created_utc": "2024-01-01T12:00:00Z", "score": "17", "num_comments": 0},
		{"id": "c", "created_utc": "2024-01-01", "score": "lots", "num_comments": 0},
		{"id": "d", "created_utc": "2024-01-01", "score": {"up": 1}, "num_comments": 0}
	]`))
	require.NoError(t, err)
	require.Len(t, posts, 4)

	assert.Empty(t, posts[0].Author)
	assert.Equal(t, lifecycle.Timestamp("1704110400"), posts[0].CreatedUTC)
	assert.Equal(t, "42", posts[1].ID)
	require.NotNil(t, posts[1].Score)
	assert.InDelta(t, 17.0, *posts[1].Score, 1e-12)
	assert.Nil(t, posts[2].Score)
	assert.Nil(t, posts[3].Score)

	accepted, rejected := lifecycle.Normalize(posts)
	assert.Len(t, accepted, 2)
	assert.Len(t, rejected, 2)
	assert.Equal(t, lifecycle.DeletedAuthor, accepted[0].Author)
}

func TestReadJSON_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ingest.ReadJSON(strings.NewReader(`{"id": "not an array"}`))
	require.ErrorIs(t, err, ingest.ErrMalformedFile)
}

func TestReadNDJSON(t *testing.T) {
	t.Parallel()

	posts, err := ingest.ReadNDJSON(strings.NewReader(
		`{"id":"a","created_utc":"2024-01-01","score":1,"num_comments":2}` + "\n\n" +
			`{"id":"b","created_utc":"2024-01-02","score":3,"num_comments":4}` + "\n"))
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "b", posts[1].ID)

	_, err = ingest.ReadNDJSON(strings.NewReader("{\"id\":\"a\"}\n{broken\n"))
	require.ErrorIs(t, err, ingest.ErrMalformedFile)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]string{
		"a.csv":    ingest.FormatCSV,
		"a.JSON":   ingest.FormatJSON,
		"a.ndjson": ingest.FormatNDJSON,
		"a.jsonl":  ingest.FormatNDJSON,
	} {
		got, err := ingest.DetectFormat(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}

	_, err := ingest.DetectFormat("a.parquet")
	require.ErrorIs(t, err, ingest.ErrUnknownFormat)

	_, err = ingest.Read(strings.NewReader(""), "xml")
	require.ErrorIs(t, err, ingest.ErrUnknownFormat)
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "processed_reddit_doge_20240101_120000.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	posts, err := ingest.FileSource{Path: path}.Fetch(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Len(t, posts, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ingest.FileSource{Path: path}.Fetch(ctx, "")
	require.ErrorIs(t, err, context.Canceled)

	_, err = ingest.ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
