package places

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

// earthRadiusMeters converts a radius in meters to the radians $centerSphere expects.
const earthRadiusMeters = 6378100.0

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the place cache store: a read-through, write-through mirror
// of the external provider. Upserts are best-effort; the search path treats
// a failed cache write as a logged non-event.
type Repository interface {
	Upsert(ctx context.Context, place *models.Place) error
	GetByExternalID(ctx context.Context, externalID string) (*models.Place, error)
	FindNear(ctx context.Context, point models.GeoPoint, maxDistanceMeters float64, limit int) ([]models.Place, error)
	SearchByCategory(ctx context.Context, categorySubstring string, point models.GeoPoint, maxDistanceMeters float64, limit int) ([]models.Place, error)
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

// Upsert inserts or replaces the cached record keyed by externalId. The
// staleness timestamp and popularity score are always refreshed here so no
// caller can persist a stale or provider-supplied score.
func (r *RepositoryImpl) Upsert(ctx context.Context, place *models.Place) error {
	ctx, span := otel.Tracer("PlaceRepo").Start(ctx, "Upsert", trace.WithAttributes(
		attribute.String("db.operation", "replaceOne"),
		attribute.String("place.external_id", place.ExternalID),
	))
	defer span.End()

	place.FetchedAt = time.Now()
	place.IsActive = true
	place.RecomputePopularity()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"externalId": place.ExternalID}, place, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		return fmt.Errorf("failed to upsert place %s: %w", place.ExternalID, err)
	}

	span.SetStatus(codes.Ok, "place upserted")
	return nil
}

func (r *RepositoryImpl) GetByExternalID(ctx context.Context, externalID string) (*models.Place, error) {
	ctx, span := otel.Tracer("PlaceRepo").Start(ctx, "GetByExternalID", trace.WithAttributes(
		attribute.String("place.external_id", externalID),
	))
	defer span.End()

	var place models.Place
	err := r.collection.FindOne(ctx, bson.M{"externalId": externalID}).Decode(&place)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, fmt.Errorf("failed to fetch place %s: %w", externalID, err)
	}

	return &place, nil
}

// FindNear returns active cached places within the radius, most popular
// first. $geoWithin is used instead of $near so the popularity sort applies.
func (r *RepositoryImpl) FindNear(ctx context.Context, point models.GeoPoint, maxDistanceMeters float64, limit int) ([]models.Place, error) {
	ctx, span := otel.Tracer("PlaceRepo").Start(ctx, "FindNear", trace.WithAttributes(
		attribute.Float64("query.radius_meters", maxDistanceMeters),
		attribute.Int("query.limit", limit),
	))
	defer span.End()

	filter := bson.M{
		"isActive": true,
		"location": withinSphere(point, maxDistanceMeters),
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "popularity", Value: -1}, {Key: "rating", Value: -1}}).
		SetLimit(int64(limit))

	return r.findPlaces(ctx, span, filter, opts)
}

// SearchByCategory matches the category label by case-insensitive substring
// within the radius, best rated first.
func (r *RepositoryImpl) SearchByCategory(ctx context.Context, categorySubstring string, point models.GeoPoint, maxDistanceMeters float64, limit int) ([]models.Place, error) {
	ctx, span := otel.Tracer("PlaceRepo").Start(ctx, "SearchByCategory", trace.WithAttributes(
		attribute.String("query.category", categorySubstring),
		attribute.Float64("query.radius_meters", maxDistanceMeters),
	))
	defer span.End()

	filter := bson.M{
		"isActive": true,
		"category": primitive.Regex{Pattern: regexp.QuoteMeta(categorySubstring), Options: "i"},
		"location": withinSphere(point, maxDistanceMeters),
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "popularity", Value: -1}}).
		SetLimit(int64(limit))

	return r.findPlaces(ctx, span, filter, opts)
}

func (r *RepositoryImpl) findPlaces(ctx context.Context, span trace.Span, filter bson.M, opts *options.FindOptions) ([]models.Place, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Place
	if err := cursor.All(ctx, &results); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, fmt.Errorf("failed to decode places: %w", err)
	}

	span.SetAttributes(attribute.Int("result.count", len(results)))
	span.SetStatus(codes.Ok, "places found")
	return results, nil
}

func withinSphere(point models.GeoPoint, radiusMeters float64) bson.M {
	return bson.M{
		"$geoWithin": bson.M{
			"$centerSphere": bson.A{
				bson.A{point.Lon(), point.Lat()},
				radiusMeters / earthRadiusMeters,
			},
		},
	}
}
