// Package database wraps the Mongo client and collection handles.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/pkg/config"
)

const defaultRetries = 5

// Mongo holds the client and the typed collection handles the repositories
// are built on. Constructed once in the server and injected; there are no
// package-level collection globals.
type Mongo struct {
	Client      *mongo.Client
	Users       *mongo.Collection
	Places      *mongo.Collection
	Itineraries *mongo.Collection
}

// Init connects to Mongo and returns the collection handles.
func Init(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Mongo, error) {
	logger.Info("Initializing Mongo connection", zap.String("database", cfg.Database))

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		logger.Error("Failed to connect to Mongo", zap.Error(err))
		return nil, fmt.Errorf("failed connecting to mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	return &Mongo{
		Client:      client,
		Users:       db.Collection("users"),
		Places:      db.Collection("places"),
		Itineraries: db.Collection("itineraries"),
	}, nil
}

// WaitForDB pings until the deployment answers or retries run out.
func WaitForDB(ctx context.Context, m *Mongo, logger *zap.Logger) bool {
	for attempts := 1; attempts <= defaultRetries; attempts++ {
		err := m.Client.Ping(ctx, nil)
		if err == nil {
			logger.Info("Mongo connection successful")
			return true
		}

		waitDuration := time.Duration(attempts) * 200 * time.Millisecond
		logger.Warn("Mongo ping failed, retrying...",
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", defaultRetries),
			zap.Duration("wait_duration", waitDuration),
			zap.Error(err),
		)
		if attempts < defaultRetries {
			time.Sleep(waitDuration)
		}
	}
	logger.Error("Mongo connection failed after multiple retries")
	return false
}

// EnsureIndexes creates the indexes the queries depend on. Index creation is
// idempotent, so this runs on every boot in place of a migration step.
func EnsureIndexes(ctx context.Context, m *Mongo, logger *zap.Logger) error {
	logger.Info("Ensuring Mongo indexes...")

	placeIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "externalId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
	}
	if _, err := m.Places.Indexes().CreateMany(ctx, placeIndexes); err != nil {
		return fmt.Errorf("failed creating place indexes: %w", err)
	}

	itineraryIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
	if _, err := m.Itineraries.Indexes().CreateMany(ctx, itineraryIndexes); err != nil {
		return fmt.Errorf("failed creating itinerary indexes: %w", err)
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := m.Users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed creating user indexes: %w", err)
	}

	logger.Info("Mongo indexes ensured")
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
