package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/roamly/internal/app/observability/metrics"
)

// MetricsMiddleware records request counts and latencies, plus per-area
// counters keyed off the route prefix.
func MetricsMiddleware(m *metrics.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.Int("status", c.Writer.Status()),
		)

		ctx := c.Request.Context()
		m.HTTPRequestsTotal.Add(ctx, 1, attrs)
		m.HTTPRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)

		switch {
		case strings.HasPrefix(route, "/auth"):
			m.AuthRequestsTotal.Add(ctx, 1, attrs)
		case strings.HasPrefix(route, "/places"):
			m.PlaceSearchesTotal.Add(ctx, 1, attrs)
		case route == "/itineraries/generate":
			m.GenerationRequestsTotal.Add(ctx, 1, attrs)
		}
	}
}
