package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/roamly/internal/pkg/config"
	"github.com/FACorreiaa/roamly/internal/server"
	"github.com/FACorreiaa/roamly/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	zapLogger, err := logger.New(zapcore.InfoLevel, zap.String("service", "roamly"))
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	appMetrics, otelShutdown, err := server.InitObservability("roamly", ":9092", zapLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			zapLogger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	ctx := context.Background()
	srv, err := server.New(ctx, cfg, zapLogger)
	if err != nil {
		return err
	}
	defer srv.Close(ctx)

	router, err := server.SetupRouter(ctx, srv.Mongo(), cfg, appMetrics, zapLogger)
	if err != nil {
		return err
	}
	srv.SetRouter(router)

	server.StartPprofServer(":6060", zapLogger)

	httpServer := srv.HTTPServer()

	done := make(chan bool, 1)
	go server.GracefulShutdown(httpServer, zapLogger, done)

	zapLogger.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := httpServer.ListenAndServe(); err != nil {
		zapLogger.Error("Server error", zap.Error(err))
	}

	<-done
	zapLogger.Info("Graceful shutdown complete")

	return nil
}
