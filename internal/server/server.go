package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	database "github.com/FACorreiaa/roamly/internal/db"
	"github.com/FACorreiaa/roamly/internal/pkg/config"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	mongo  *database.Mongo
	router http.Handler
}

// New creates a Server with its database connection established and indexes
// in place.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	mongo, err := s.setupDatabase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	s.mongo = mongo

	return s, nil
}

func (s *Server) setupDatabase(ctx context.Context) (*database.Mongo, error) {
	s.logger.Info("Setting up MongoDB connection")

	mongo, err := database.Init(ctx, s.cfg.Repositories.Mongo, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}

	if !database.WaitForDB(ctx, mongo, s.logger) {
		_ = mongo.Close(ctx)
		return nil, fmt.Errorf("database did not become ready")
	}
	s.logger.Info("Connected to MongoDB",
		zap.String("database", s.cfg.Repositories.Mongo.Database))

	if err := database.EnsureIndexes(ctx, mongo, s.logger); err != nil {
		_ = mongo.Close(ctx)
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	s.logger.Info("Database setup completed successfully")
	return mongo, nil
}

// HTTPServer creates and configures the HTTP server.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// SetRouter sets the HTTP router.
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

// Mongo returns the database handle.
func (s *Server) Mongo() *database.Mongo {
	return s.mongo
}

// Close releases server resources.
func (s *Server) Close(ctx context.Context) {
	if s.mongo != nil {
		if err := s.mongo.Close(ctx); err != nil {
			s.logger.Error("Failed to close MongoDB client", zap.Error(err))
		}
	}
}
