// Package metrics exposes OpenTelemetry instruments through a Prometheus
// registry: use case operations, access decisions and HTTP traffic.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Provider ties an OTel meter provider to the Prometheus registry it is
// scraped from.
type Provider struct {
	meters   *sdkmetric.MeterProvider
	registry *prometheus.Registry
}

// NewProvider builds a registry holding the Go runtime and process
// collectors plus the OTel exporter. A non-empty namespace is reported as
// service.name.
func NewProvider(namespace string) (*Provider, error) {
	registry := prometheus.NewRegistry()
	for name, c := range map[string]prometheus.Collector{
		"go":      collectors.NewGoCollector(),
		"process": collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register %s collector: %w", name, err)
		}
	}

	reader, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(reader)}
	if namespace != "" {
		svc := resource.NewSchemaless(attribute.String("service.name", namespace))
		opts = append(opts, sdkmetric.WithResource(svc))
	}

	return &Provider{meters: sdkmetric.NewMeterProvider(opts...), registry: registry}, nil
}

// Handler serves the registry, OpenMetrics when the scraper asks for it.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *Provider) MeterProvider() *sdkmetric.MeterProvider { return p.meters }

// Shutdown flushes pending measurements.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meters == nil {
		return nil
	}
	return p.meters.Shutdown(ctx)
}
