package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpInstruments struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter, namespace string) (*httpInstruments, error) {
	var (
		in  httpInstruments
		err error
	)
	if in.requests, err = meter.Int64Counter(namespace+"_http_requests_total",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if in.latency, err = meter.Float64Histogram(namespace+"_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if in.active, err = meter.Int64UpDownCounter(namespace+"_http_requests_in_flight",
		metric.WithDescription("HTTP requests being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return &in, nil
}

// HTTPMetricsMiddleware counts requests, observes latency and tracks the
// in-flight gauge. The route label is the matched pattern such as
// /v1/resources/*id so resource IDs never become label values. When the
// instruments cannot be registered the middleware records nothing.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	in, err := newHTTPInstruments(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		began := time.Now()
		route := attribute.String("route", routeLabel(c.FullPath()))

		in.active.Add(ctx, 1, metric.WithAttributes(route))
		defer in.active.Add(ctx, -1, metric.WithAttributes(route))

		c.Next()

		done := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			route,
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		in.requests.Add(ctx, 1, done)
		in.latency.Record(ctx, time.Since(began).Seconds(), done)
	}
}

func routeLabel(fullPath string) string {
	if fullPath == "" {
		return "unmatched"
	}
	return fullPath
}
