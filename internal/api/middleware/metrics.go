package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records HTTP server instruments keyed by route pattern.
type Metrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
	size     metric.Int64Histogram
}

// NewMetrics creates the HTTP instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Number of HTTP server requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Number of HTTP requests being served"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	size, err := meter.Int64Histogram("http.server.response.body.size",
		metric.WithDescription("Size of HTTP response bodies"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}

	return &Metrics{duration: duration, requests: requests, inFlight: inFlight, size: size}, nil
}

// Middleware records one observation per request.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			method := metric.WithAttributes(attribute.String("http.request.method", r.Method))

			m.inFlight.Add(r.Context(), 1, method)
			defer m.inFlight.Add(r.Context(), -1, method)

			rec := record(w)
			next.ServeHTTP(rec, r)

			attrs := metric.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", routePattern(r)),
				attribute.String("http.response.status_code", strconv.Itoa(rec.status)),
				attribute.Bool("error", rec.status >= 400),
			)
			m.duration.Record(r.Context(), time.Since(start).Seconds(), attrs)
			m.requests.Add(r.Context(), 1, attrs)
			m.size.Record(r.Context(), rec.written, attrs)
		})
	}
}
