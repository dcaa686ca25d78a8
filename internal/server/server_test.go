package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/memefang/internal/server"
	"github.com/Sumatoshi-tech/memefang/pkg/observability"
	"github.com/Sumatoshi-tech/memefang/pkg/persist"
)

// batch renders days of posts as a JSON array, one more post per day up to
// the midpoint and one fewer after it.
func batch(t *testing.T, days int) []byte {
	t.Helper()

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	var records []map[string]any

	for day := range days {
		for i := range 1 + min(day, days-day) {
			records = append(records, map[string]any{
				"id":           fmt.Sprintf("d%d_%d", day, i),
				"author":       fmt.Sprintf("user%d", i%3),
				"created_utc":  start.AddDate(0, 0, day).Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
				"score":        5 + i,
				"num_comments": i,
				"subreddit":    "dankmemes",
			})
		}
	}

	data, err := json.Marshal(records)
	require.NoError(t, err)

	return data
}

func do(t *testing.T, handler http.Handler, method, target string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(server.Deps{Version: "1.2.3"})

	rec := do(t, router, http.MethodGet, "/v1/healthz", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRequestIDPropagated(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(server.Deps{})

	rec := do(t, router, http.MethodGet, "/v1/healthz", nil, map[string]string{"X-Request-Id": "abc-123"})

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestAnalyze_JSON(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(server.Deps{})

	rec := do(t, router, http.MethodPost, "/v1/analyze?meme=Doge%20Coin", batch(t, 15), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "doge_coin", body["meme"])
	assert.Equal(t, "Doge Coin", body["title"])
}

func TestAnalyze_TextFormat(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(server.Deps{})

	rec := do(t, router, http.MethodPost, "/v1/analyze?meme=pepe&format=text", batch(t, 8), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rec.Body.String(), "Meme: Pepe")
}

func TestAnalyze_CSVBody(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(server.Deps{})

	csvBody := "id,author,created_utc,score,num_comments,subreddit\n" +
		"a,u1,2024-01-01 10:00:00,3,1,memes\n" +
		"b,u2,2024-01-02 11:00:00,4,2,memes\n"

	rec := do(t, router, http.MethodPost, "/v1/analyze?meme=pepe", []byte(csvBody),
		map[string]string{"Content-Type": "text/csv"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total_posts": 2`)
}

func TestAnalyze_Cache(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(server.Deps{CacheEntries: 4})
	body := batch(t, 9)

	first := do(t, router, http.MethodPost, "/v1/analyze?meme=pepe", body, nil)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, "miss", first.Header().Get("X-Cache"))

	second := do(t, router, http.MethodPost, "/v1/analyze?meme=pepe&format=yaml", body, nil)
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())
	assert.Equal(t, "hit", second.Header().Get("X-Cache"))
	assert.Contains(t, second.Body.String(), "meme: pepe")

	other := do(t, router, http.MethodPost, "/v1/analyze?meme=wojak", body, nil)
	assert.Equal(t, "miss", other.Header().Get("X-Cache"))
}

func TestAnalyze_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		body   string
		header map[string]string
		status int
	}{
		{"missing_meme", "/v1/analyze", "[]", nil, http.StatusBadRequest},
		{"invalid_meme", "/v1/analyze?meme=../etc", "[]", nil, http.StatusBadRequest},
		{"bad_format", "/v1/analyze?meme=pepe&format=pdf", "[]", nil, http.StatusBadRequest},
		{"bad_content_type", "/v1/analyze?meme=pepe", "[]", map[string]string{"Content-Type": "image/png"}, http.StatusUnsupportedMediaType},
		{"malformed_body", "/v1/analyze?meme=pepe", "{not json", nil, http.StatusBadRequest},
		{"no_valid_records", "/v1/analyze?meme=pepe", `[{"title":"x"}]`, nil, http.StatusUnprocessableEntity},
	}

	router := server.NewRouter(server.Deps{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, router, http.MethodPost, tt.target, []byte(tt.body), tt.header)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.NotEmpty(t, body["request_id"])
		})
	}
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(server.Deps{MaxBodyBytes: 64})

	rec := do(t, router, http.MethodPost, "/v1/analyze?meme=pepe", batch(t, 10), nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestReadBody_ErrorStatus(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(server.Deps{MaxBodyBytes: 64})

	for _, target := range []string{"/v1/analyze?meme=pepe", "/v1/validate"} {
		req := httptest.NewRequest(http.MethodPost, target, iotest.ErrReader(errors.New("connection reset")))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "connection reset", target)

		rec = do(t, router, http.MethodPost, target, batch(t, 10), nil)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, target)
	}
}

func TestReports_StoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := persist.NewReportStore(t.TempDir(), persist.NewJSONCodec())
	router := server.NewRouter(server.Deps{Store: store})

	rec := do(t, router, http.MethodPost, "/v1/analyze?meme=pepe", batch(t, 6), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/v1/reports/pepe?format=yaml", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "meme: pepe")

	rec = do(t, router, http.MethodGet, "/v1/reports/wojak", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReports_NoStore(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(server.Deps{})

	rec := do(t, router, http.MethodGet, "/v1/reports/pepe", nil, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(server.Deps{})

	rec := do(t, router, http.MethodPost, "/v1/validate", batch(t, 2), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Valid      bool `json:"valid"`
		Records    int  `json:"records"`
		Compliance int  `json:"compliance_percent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Valid)
	assert.Equal(t, 3, body.Records)
	assert.Equal(t, 100, body.Compliance)
}

func TestFormats(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(server.Deps{})

	rec := do(t, router, http.MethodGet, "/v1/formats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"plot"`)
	assert.Contains(t, rec.Body.String(), `"ndjson"`)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	prom, err := observability.NewPrometheusProvider()
	require.NoError(t, err)

	red, err := observability.NewREDMetrics(prom.Meter("test"))
	require.NoError(t, err)

	router := server.NewRouter(server.Deps{Metrics: red, MetricsHandler: prom.Handler})

	rec := do(t, router, http.MethodGet, "/v1/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "memefang_requests_total")
}
