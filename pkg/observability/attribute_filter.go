package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanNamespaces are the attribute namespaces memefang spans may export,
// keyed by the part of the key before the first dot.
var spanNamespaces = map[string]bool{
	"analysis": true,
	"error":    true,
	"http":     true,
	"mcp":      true,
}

// sensitiveKeys identify posters or carry raw batches and are dropped even
// inside an exported namespace.
var sensitiveKeys = map[string]bool{
	"analysis.author":    true,
	"analysis.post_id":   true,
	"http.request.body":  true,
	"http.response.body": true,
}

// attributeFilter strips span attributes outside spanNamespaces before the
// delegate exports them.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
}

// NewAttributeFilter wraps delegate so that only memefang's own span
// attributes reach the exporter. A non-nil logger receives one warning per
// dropped key.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, logger: logger}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

// OnEnd hands the delegate a view of s with the disallowed attributes
// removed. Spans with nothing to drop pass through unwrapped.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	attrs := s.Attributes()
	kept := make([]attribute.KeyValue, 0, len(attrs))

	for _, kv := range attrs {
		if exportable(kv.Key) {
			kept = append(kept, kv)

			continue
		}

		if f.logger != nil {
			f.logger.Warn("span attribute dropped", "span", s.Name(), "key", string(kv.Key))
		}
	}

	if len(kept) == len(attrs) {
		f.delegate.OnEnd(s)

		return
	}

	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, attrs: kept})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func exportable(key attribute.Key) bool {
	if sensitiveKeys[string(key)] {
		return false
	}

	namespace, _, _ := strings.Cut(string(key), ".")

	return spanNamespaces[namespace]
}

// filteredSpan is a finished span with a reduced attribute set.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	attrs []attribute.KeyValue
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}
