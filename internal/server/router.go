package server

import (
	"context"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/roamly/internal/app/observability/metrics"
	database "github.com/FACorreiaa/roamly/internal/db"
	"github.com/FACorreiaa/roamly/internal/pkg/config"
	"github.com/FACorreiaa/roamly/internal/pkg/middleware"
	"github.com/FACorreiaa/roamly/internal/routes"
)

// SetupRouter configures the Gin engine with all middleware and routes.
func SetupRouter(ctx context.Context, mongo *database.Mongo, cfg *config.Config, appMetrics *metrics.AppMetrics, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		Context:    zapContextFunc(),
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware.OTELGinMiddleware("roamly"))
	r.Use(middleware.MetricsMiddleware(appMetrics))
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityMiddleware())

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	r.Use(limiter.Limit())

	if err := routes.Setup(ctx, r, mongo, cfg, logger); err != nil {
		return nil, err
	}

	return r, nil
}

// zapContextFunc enriches request logs with request and trace identifiers.
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.Writer.Header().Get("X-Request-Id"); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}

		return fields
	}
}
