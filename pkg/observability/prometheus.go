package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusProvider is an OTel MeterProvider whose instruments are served
// on a Prometheus scrape endpoint.
type PrometheusProvider struct {
	// MeterProvider creates meters whose instruments are scraped.
	*sdkmetric.MeterProvider

	// Handler serves the /metrics endpoint.
	Handler http.Handler
}

// NewPrometheusProvider creates a Prometheus exporter backed by an OTel
// MeterProvider. Each call creates an independent registry so repeated
// calls do not collide on collector registration.
func NewPrometheusProvider() (*PrometheusProvider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &PrometheusProvider{
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
		Handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}
