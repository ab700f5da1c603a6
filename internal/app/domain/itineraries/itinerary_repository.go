package itineraries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

const earthRadiusMeters = 6378100.0

var _ Repository = (*RepositoryImpl)(nil)

// ListFilter narrows an owner listing. Zero values mean "no filter".
type ListFilter struct {
	Type      models.ItineraryType
	Completed *bool
	Limit     int
	Offset    int
}

// Repository persists itinerary documents. The aggregate is stored whole;
// Save replaces the full document so in-memory mutations and persistence
// never drift apart.
type Repository interface {
	Save(ctx context.Context, it *models.Itinerary) error
	FindByID(ctx context.Context, id string) (*models.Itinerary, error)
	FindByOwner(ctx context.Context, userID string, filter ListFilter) ([]models.Itinerary, error)
	Delete(ctx context.Context, id string) error
	FindPopular(ctx context.Context, limit int) ([]models.Itinerary, error)
	FindByLocation(ctx context.Context, point models.GeoPoint, radiusMeters float64, limit int) ([]models.Itinerary, error)
	IncrementShares(ctx context.Context, id string) error
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

// Save writes the whole document, inserting when the id is new.
func (r *RepositoryImpl) Save(ctx context.Context, it *models.Itinerary) error {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "Save", trace.WithAttributes(
		attribute.String("itinerary.id", it.ID),
	))
	defer span.End()

	it.UpdatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": it.ID}, it, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return fmt.Errorf("failed to save itinerary %s: %w", it.ID, err)
	}

	span.SetStatus(codes.Ok, "itinerary saved")
	return nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (*models.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "FindByID", trace.WithAttributes(
		attribute.String("itinerary.id", id),
	))
	defer span.End()

	var it models.Itinerary
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&it)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, fmt.Errorf("failed to fetch itinerary %s: %w", id, err)
	}

	return &it, nil
}

// FindByOwner lists the user's itineraries newest first, optionally filtered
// by type and completion status.
func (r *RepositoryImpl) FindByOwner(ctx context.Context, userID string, filter ListFilter) ([]models.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "FindByOwner", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	query := bson.M{"userId": userID}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Completed != nil {
		query["isCompleted"] = *filter.Completed
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	return r.findItineraries(ctx, span, query, opts)
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("itinerary.id", id),
	))
	defer span.End()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete itinerary %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}

	span.SetStatus(codes.Ok, "itinerary deleted")
	return nil
}

// FindPopular returns public itineraries ranked by like count, then shares.
// Like count is derived with an aggregation stage since likes are embedded.
func (r *RepositoryImpl) FindPopular(ctx context.Context, limit int) ([]models.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "FindPopular", trace.WithAttributes(
		attribute.Int("query.limit", limit),
	))
	defer span.End()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isPublic": true}}},
		{{Key: "$addFields", Value: bson.M{
			"likeCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "likeCount", Value: -1},
			{Key: "shareCount", Value: -1},
			{Key: "createdAt", Value: -1},
		}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate failed")
		return nil, fmt.Errorf("failed to query popular itineraries: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Itinerary
	if err := cursor.All(ctx, &results); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, fmt.Errorf("failed to decode itineraries: %w", err)
	}

	span.SetAttributes(attribute.Int("result.count", len(results)))
	span.SetStatus(codes.Ok, "popular itineraries found")
	return results, nil
}

// FindByLocation returns public itineraries anchored within the radius,
// newest first. $geoWithin keeps the recency sort in our hands.
func (r *RepositoryImpl) FindByLocation(ctx context.Context, point models.GeoPoint, radiusMeters float64, limit int) ([]models.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "FindByLocation", trace.WithAttributes(
		attribute.Float64("query.radius_meters", radiusMeters),
		attribute.Int("query.limit", limit),
	))
	defer span.End()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	return r.findItineraries(ctx, span, publicNearbyFilter(point, radiusMeters), opts)
}

// publicNearbyFilter matches public itineraries whose anchor falls within
// radiusMeters of point. $centerSphere takes the radius in radians.
func publicNearbyFilter(point models.GeoPoint, radiusMeters float64) bson.M {
	return bson.M{
		"isPublic": true,
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{point.Lon(), point.Lat()},
					radiusMeters / earthRadiusMeters,
				},
			},
		},
	}
}

// IncrementShares bumps the share counter atomically.
func (r *RepositoryImpl) IncrementShares(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "IncrementShares", trace.WithAttributes(
		attribute.String("itinerary.id", id),
	))
	defer span.End()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"shareCount": 1},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "increment failed")
		return fmt.Errorf("failed to increment shares for %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}

	span.SetStatus(codes.Ok, "shares incremented")
	return nil
}

func (r *RepositoryImpl) findItineraries(ctx context.Context, span trace.Span, filter bson.M, opts *options.FindOptions) ([]models.Itinerary, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		return nil, fmt.Errorf("failed to query itineraries: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Itinerary
	if err := cursor.All(ctx, &results); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, fmt.Errorf("failed to decode itineraries: %w", err)
	}

	span.SetAttributes(attribute.Int("result.count", len(results)))
	span.SetStatus(codes.Ok, "itineraries found")
	return results, nil
}
