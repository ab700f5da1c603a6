package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/observability/metrics"
	"github.com/FACorreiaa/roamly/internal/app/observability/tracer"
)

// ObservabilityShutdownFunc tears down the telemetry providers.
type ObservabilityShutdownFunc func(context.Context) error

// InitObservability initializes OpenTelemetry and the application metric
// instruments.
func InitObservability(serviceName, metricsAddr string, logger *zap.Logger) (*metrics.AppMetrics, ObservabilityShutdownFunc, error) {
	otelShutdown, err := tracer.InitOtelProviders(serviceName, metricsAddr, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	appMetrics, err := metrics.NewAppMetrics()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	logger.Info("Observability initialized", zap.String("metrics_endpoint", metricsAddr+"/metrics"))

	return appMetrics, otelShutdown, nil
}
