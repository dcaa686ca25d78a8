// Package server exposes lifecycle analysis over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
	"github.com/Sumatoshi-tech/memefang/pkg/observability"
	"github.com/Sumatoshi-tech/memefang/pkg/persist"
)

// Defaults applied to zero-valued [Deps] and [Options] fields.
const (
	defaultMaxBodyBytes = 32 << 20
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 120 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	shutdownTimeout     = 10 * time.Second

	requestIDHeader = "X-Request-Id"
)

// Deps holds injectable dependencies for the HTTP handlers.
// Zero-value fields use production defaults.
type Deps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Tracer creates per-request spans. Nil uses a no-op tracer.
	Tracer trace.Tracer

	// Metrics records RED metrics per route. Nil disables them.
	Metrics *observability.REDMetrics

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler

	// Analyzer runs the lifecycle pipeline. Nil uses default options.
	Analyzer *lifecycle.Analyzer

	// Store persists analyzed reports and serves them back. Nil disables
	// the report routes.
	Store *persist.ReportStore

	// Version is reported by the health endpoint.
	Version string

	// MaxBodyBytes bounds request bodies. Zero uses 32 MiB.
	MaxBodyBytes int64

	// CacheEntries caps the analyzed-report cache keyed by request content.
	// Zero disables caching.
	CacheEntries int
}

// Options configures the listening server.
type Options struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewRouter builds the HTTP routes.
func NewRouter(deps Deps) http.Handler {
	h := newHandlers(deps)

	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	r := chi.NewRouter()
	r.Use(requestID, middleware.RealIP, middleware.Recoverer, observability.HTTPMiddleware(tracer))

	if deps.Metrics != nil {
		r.Use(observability.REDMiddleware(deps.Metrics))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/healthz", observability.HealthHandler(deps.Version))
		r.Post("/analyze", h.analyze)
		r.Post("/validate", h.validate)
		r.Get("/formats", h.formats)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/{meme}", h.getReport)
		})
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}

// requestID propagates X-Request-Id, minting a UUID when the client sent
// none. The id is stored for chi's middleware.GetReqID and for log records.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		id := hr.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		rw.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(hr.Context(), middleware.RequestIDKey, id)
		ctx = observability.WithRequestID(ctx, id)
		next.ServeHTTP(rw, hr.WithContext(ctx))
	})
}

// Run serves handler until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, handler http.Handler, opts Options, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		Handler:      handler,
		ReadTimeout:  orDefault(opts.ReadTimeout, defaultReadTimeout),
		WriteTimeout: orDefault(opts.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:  orDefault(opts.IdleTimeout, defaultIdleTimeout),
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)

	go func() {
		logger.InfoContext(ctx, "http server starting", "addr", srv.Addr)

		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.InfoContext(ctx, "http server shutting down")

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	return nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}

	return d
}
