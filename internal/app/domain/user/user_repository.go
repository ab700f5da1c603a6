package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists account documents. Email uniqueness is enforced by a
// unique index; duplicate inserts surface as ErrConflict.
type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, fields bson.M) error
	UpdatePreferences(ctx context.Context, id string, prefs models.UserPreferences) error
	AddFavorite(ctx context.Context, id, externalID string) error
	RemoveFavorite(ctx context.Context, id, externalID string) error
	IncrementPoints(ctx context.Context, id string, delta int) error
}

type RepositoryImpl struct {
	logger     *zap.Logger
	collection *mongo.Collection
}

func NewRepositoryImpl(collection *mongo.Collection, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger:     logger,
		collection: collection,
	}
}

func (r *RepositoryImpl) Create(ctx context.Context, u *models.User) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "Create", trace.WithAttributes(
		attribute.String("user.id", u.ID),
	))
	defer span.End()

	_, err := r.collection.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("email already registered: %w", models.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("failed to create user: %w", err)
	}

	span.SetStatus(codes.Ok, "user created")
	return nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *RepositoryImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *RepositoryImpl) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := r.collection.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &u, nil
}

// UpdateProfile applies a partial $set built by the service layer.
func (r *RepositoryImpl) UpdateProfile(ctx context.Context, id string, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	return r.updateOne(ctx, id, bson.M{"$set": fields})
}

func (r *RepositoryImpl) UpdatePreferences(ctx context.Context, id string, prefs models.UserPreferences) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"preferences": prefs,
		"updatedAt":   time.Now(),
	}})
}

// AddFavorite is idempotent; $addToSet never duplicates an id.
func (r *RepositoryImpl) AddFavorite(ctx context.Context, id, externalID string) error {
	return r.updateOne(ctx, id, bson.M{
		"$addToSet": bson.M{"favorites": externalID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

func (r *RepositoryImpl) RemoveFavorite(ctx context.Context, id, externalID string) error {
	return r.updateOne(ctx, id, bson.M{
		"$pull": bson.M{"favorites": externalID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (r *RepositoryImpl) IncrementPoints(ctx context.Context, id string, delta int) error {
	return r.updateOne(ctx, id, bson.M{
		"$inc": bson.M{"points": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	})
}

func (r *RepositoryImpl) updateOne(ctx context.Context, id string, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
