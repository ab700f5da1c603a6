package metrics

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments. It is constructed
// once at startup and handed to the components that record on it.
type AppMetrics struct {
	HTTPRequestsTotal       metric.Int64Counter
	HTTPRequestDuration     metric.Float64Histogram
	AuthRequestsTotal       metric.Int64Counter
	PlaceSearchesTotal      metric.Int64Counter
	GenerationRequestsTotal metric.Int64Counter
}

// NewAppMetrics creates the instruments on the globally configured
// MeterProvider.
func NewAppMetrics() (*AppMetrics, error) {
	meter := otel.GetMeterProvider().Meter("roamly")
	m := &AppMetrics{}
	var err error

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests completed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds: %w", err)
	}

	m.AuthRequestsTotal, err = meter.Int64Counter(
		"auth_requests_total",
		metric.WithDescription("Total number of authentication requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth_requests_total: %w", err)
	}

	m.PlaceSearchesTotal, err = meter.Int64Counter(
		"place_searches_total",
		metric.WithDescription("Total number of place search requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create place_searches_total: %w", err)
	}

	m.GenerationRequestsTotal, err = meter.Int64Counter(
		"generation_requests_total",
		metric.WithDescription("Total number of AI itinerary generation requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation_requests_total: %w", err)
	}

	return m, nil
}
