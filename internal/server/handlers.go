package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Sumatoshi-tech/memefang/pkg/alg/lru"
	"github.com/Sumatoshi-tech/memefang/pkg/ingest"
	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
	"github.com/Sumatoshi-tech/memefang/pkg/report"
)

// memePattern restricts meme names to what is safe as a file basename.
var memePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

var (
	errMissingMeme = errors.New("meme query parameter is required")
	errInvalidMeme = errors.New("meme must contain only lowercase letters, digits, '_' and '-'")
	errNoStore     = errors.New("report store is not configured")
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// cacheHeader reports whether an analyze response came from the cache.
const cacheHeader = "X-Cache"

// reportKey identifies an analyze request by meme, input format and body.
type reportKey [sha256.Size]byte

type handlers struct {
	logger       *slog.Logger
	analyzer     *lifecycle.Analyzer
	cache        *lru.Cache[reportKey, *lifecycle.Report]
	deps         Deps
	maxBodyBytes int64
}

func newHandlers(deps Deps) *handlers {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	analyzer := deps.Analyzer
	if analyzer == nil {
		analyzer = lifecycle.NewAnalyzer(lifecycle.DefaultOptions(), lifecycle.WithLogger(logger))
	}

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	h := &handlers{logger: logger, analyzer: analyzer, deps: deps, maxBodyBytes: maxBody}

	if deps.CacheEntries > 0 {
		h.cache = lru.New(lru.WithMaxEntries[reportKey, *lifecycle.Report](deps.CacheEntries))
	}

	return h
}

// analyze handles POST /v1/analyze?meme=<name>&format=<fmt>. The body is a
// batch of records as JSON, NDJSON or CSV, chosen by ?input= or the
// Content-Type header.
func (h *handlers) analyze(rw http.ResponseWriter, hr *http.Request) {
	meme, err := memeParam(hr.URL.Query().Get("meme"))
	if err != nil {
		h.fail(rw, hr, http.StatusBadRequest, err)

		return
	}

	format, err := report.ValidateFormat(queryOr(hr, "format", report.FormatJSON))
	if err != nil {
		h.fail(rw, hr, http.StatusBadRequest, err)

		return
	}

	inputFormat, err := inputFormatOf(hr)
	if err != nil {
		h.fail(rw, hr, http.StatusUnsupportedMediaType, err)

		return
	}

	body, ok := h.readBody(rw, hr)
	if !ok {
		return
	}

	key := cacheKey(meme, inputFormat, body)

	if rep, ok := h.cachedReport(key); ok {
		rw.Header().Set(cacheHeader, "hit")
		h.logger.DebugContext(hr.Context(), "report cache hit",
			"meme", meme, "hit_rate", h.cache.Stats().HitRate())
		h.writeReport(rw, hr, format, rep)

		return
	}

	raws, err := ingest.Read(bytes.NewReader(body), inputFormat)
	if err != nil {
		h.fail(rw, hr, http.StatusBadRequest, err)

		return
	}

	rep, err := h.analyzer.Run(hr.Context(), meme, raws)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, lifecycle.ErrInsufficientData) {
			status = http.StatusUnprocessableEntity
		}

		h.fail(rw, hr, status, err)

		return
	}

	if h.deps.Store != nil {
		path, saveErr := h.deps.Store.Save(rep)
		if saveErr != nil {
			h.fail(rw, hr, http.StatusInternalServerError, saveErr)

			return
		}

		h.logger.InfoContext(hr.Context(), "report stored", "meme", meme, "path", path)
	}

	if h.cache != nil {
		h.cache.Put(key, rep)
		rw.Header().Set(cacheHeader, "miss")
	}

	h.writeReport(rw, hr, format, rep)
}

// cachedReport returns a previously analyzed report for key.
func (h *handlers) cachedReport(key reportKey) (*lifecycle.Report, bool) {
	if h.cache == nil {
		return nil, false
	}

	return h.cache.Get(key)
}

// cacheKey digests the inputs that determine an analyze result.
func cacheKey(meme, inputFormat string, body []byte) reportKey {
	hash := sha256.New()
	hash.Write([]byte(meme))
	hash.Write([]byte{0})
	hash.Write([]byte(inputFormat))
	hash.Write([]byte{0})
	hash.Write(body)

	var key reportKey

	copy(key[:], hash.Sum(nil))

	return key
}

// getReport handles GET /v1/reports/{meme}?format=<fmt>.
func (h *handlers) getReport(rw http.ResponseWriter, hr *http.Request) {
	if h.deps.Store == nil {
		h.fail(rw, hr, http.StatusNotFound, errNoStore)

		return
	}

	meme, err := memeParam(chi.URLParam(hr, "meme"))
	if err != nil {
		h.fail(rw, hr, http.StatusBadRequest, err)

		return
	}

	format, err := report.ValidateFormat(queryOr(hr, "format", report.FormatJSON))
	if err != nil {
		h.fail(rw, hr, http.StatusBadRequest, err)

		return
	}

	rep, err := h.deps.Store.Load(meme)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}

		h.fail(rw, hr, status, err)

		return
	}

	h.writeReport(rw, hr, format, rep)
}

// validate handles POST /v1/validate with a JSON array body.
func (h *handlers) validate(rw http.ResponseWriter, hr *http.Request) {
	data, ok := h.readBody(rw, hr)
	if !ok {
		return
	}

	result, err := ingest.Validate(data)
	if err != nil {
		h.fail(rw, hr, http.StatusBadRequest, err)

		return
	}

	h.writeJSON(rw, hr, http.StatusOK, struct {
		*ingest.ValidationResult

		Valid      bool `json:"valid"`
		Compliance int  `json:"compliance_percent"`
	}{result, result.Valid(), result.Compliance()})
}

// formats handles GET /v1/formats.
func (h *handlers) formats(rw http.ResponseWriter, hr *http.Request) {
	h.writeJSON(rw, hr, http.StatusOK, map[string][]string{
		"output": report.Formats(),
		"input":  {ingest.FormatJSON, ingest.FormatNDJSON, ingest.FormatCSV},
	})
}

// readBody reads the request body up to the configured limit. A body over
// the limit fails with 413, any other read error with 400.
func (h *handlers) readBody(rw http.ResponseWriter, hr *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(rw, hr.Body, h.maxBodyBytes))
	if err == nil {
		return body, true
	}

	status := http.StatusBadRequest

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}

	h.fail(rw, hr, status, fmt.Errorf("read body: %w", err))

	return nil, false
}

func (h *handlers) writeReport(rw http.ResponseWriter, hr *http.Request, format string, rep *lifecycle.Report) {
	// Render into a buffer so a failure can still produce an error status.
	var buf bytes.Buffer

	err := report.Write(&buf, format, rep, report.DefaultWriteOptions())
	if err != nil {
		h.fail(rw, hr, http.StatusInternalServerError, err)

		return
	}

	rw.Header().Set("Content-Type", contentType(format))
	rw.WriteHeader(http.StatusOK)

	_, err = buf.WriteTo(rw)
	if err != nil {
		h.logger.WarnContext(hr.Context(), "write response failed", "error", err)
	}
}

func (h *handlers) writeJSON(rw http.ResponseWriter, hr *http.Request, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	err := json.NewEncoder(rw).Encode(value)
	if err != nil {
		h.logger.ErrorContext(hr.Context(), "failed to encode JSON response", "error", err)
	}
}

func (h *handlers) fail(rw http.ResponseWriter, hr *http.Request, status int, err error) {
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	h.logger.Log(hr.Context(), level, "request failed",
		"method", hr.Method, "path", hr.URL.Path, "status", status, "error", err)

	h.writeJSON(rw, hr, status, errorBody{Error: err.Error(), RequestID: middleware.GetReqID(hr.Context())})
}

func memeParam(raw string) (string, error) {
	meme := ingest.SafeName(raw)
	if meme == "" {
		return "", errMissingMeme
	}

	if !memePattern.MatchString(meme) {
		return "", fmt.Errorf("%w: %q", errInvalidMeme, raw)
	}

	return meme, nil
}

func queryOr(hr *http.Request, key, fallback string) string {
	if v := hr.URL.Query().Get(key); v != "" {
		return v
	}

	return fallback
}

// inputFormatOf picks the body format from ?input= or the Content-Type.
func inputFormatOf(hr *http.Request) (string, error) {
	if v := hr.URL.Query().Get("input"); v != "" {
		switch v {
		case ingest.FormatJSON, ingest.FormatNDJSON, ingest.FormatCSV:
			return v, nil
		default:
			return "", fmt.Errorf("%w: %s", ingest.ErrUnknownFormat, v)
		}
	}

	ct := hr.Header.Get("Content-Type")
	if ct == "" {
		return ingest.FormatJSON, nil
	}

	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ingest.ErrUnknownFormat, err)
	}

	switch mediaType {
	case "application/json":
		return ingest.FormatJSON, nil
	case "application/x-ndjson", "application/jsonl":
		return ingest.FormatNDJSON, nil
	case "text/csv":
		return ingest.FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", ingest.ErrUnknownFormat, mediaType)
	}
}

func contentType(format string) string {
	switch format {
	case report.FormatJSON:
		return "application/json"
	case report.FormatYAML:
		return "application/yaml"
	case report.FormatPlot:
		return "text/html; charset=utf-8"
	case report.FormatBinary, report.FormatArchive:
		return "application/octet-stream"
	default:
		return "text/plain; charset=utf-8"
	}
}
