package places

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the business layer the place handlers talk to. It owns the
// degrade-to-cache policy: the gateway reports upstream failures, the
// service decides what the caller still gets.
type Service interface {
	SearchPlaces(ctx context.Context, params SearchParams) ([]models.Place, bool, error)
	SearchCategory(ctx context.Context, label string, point models.GeoPoint, radiusMeters, limit int) ([]models.Place, bool, error)
	GetPlaceDetails(ctx context.Context, externalID string) (*models.Place, error)
	GetPhotos(ctx context.Context, externalID string, limit int) ([]models.Photo, error)
	GetTips(ctx context.Context, externalID string, limit int) ([]models.Tip, error)
	GetNearby(ctx context.Context, point models.GeoPoint, radiusMeters float64, limit int) ([]models.Place, error)
	GetTrending(ctx context.Context, point models.GeoPoint, limit int) ([]models.Place, error)
}

type ServiceImpl struct {
	logger  *zap.Logger
	gateway Gateway
	repo    Repository
}

func NewServiceImpl(gateway Gateway, repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		gateway: gateway,
		repo:    repo,
	}
}

// SearchPlaces runs a provider search, degrading to cached nearby results
// when the provider is unavailable and a coordinate is known. The bool
// return reports whether the response is degraded cached data.
func (s *ServiceImpl) SearchPlaces(ctx context.Context, params SearchParams) ([]models.Place, bool, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "SearchPlaces")
	defer span.End()

	results, err := s.gateway.Search(ctx, params)
	if err == nil {
		return results, false, nil
	}
	if !errors.Is(err, models.ErrUpstreamUnavailable) || params.Point == nil {
		return nil, false, err
	}

	s.logger.Warn("provider search unavailable, serving cached places", zap.Error(err))
	span.SetAttributes(attribute.Bool("search.degraded", true))

	cached, cacheErr := s.repo.FindNear(ctx, *params.Point, float64(params.RadiusMeters), params.Limit)
	if cacheErr != nil {
		// cache also down: surface the original upstream failure
		return nil, false, err
	}
	return cached, true, nil
}

// SearchCategory resolves the label through the gateway taxonomy, with the
// same degradation path against the cache store's category index.
func (s *ServiceImpl) SearchCategory(ctx context.Context, label string, point models.GeoPoint, radiusMeters, limit int) ([]models.Place, bool, error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "SearchCategory")
	defer span.End()

	results, err := s.gateway.SearchByCategoryName(ctx, label, point, radiusMeters, limit)
	if err == nil {
		return results, false, nil
	}
	if !errors.Is(err, models.ErrUpstreamUnavailable) {
		return nil, false, err
	}

	s.logger.Warn("provider category search unavailable, serving cached places",
		zap.String("category", label), zap.Error(err))
	span.SetAttributes(attribute.Bool("search.degraded", true))

	cached, cacheErr := s.repo.SearchByCategory(ctx, label, point, float64(radiusMeters), limit)
	if cacheErr != nil {
		return nil, false, err
	}
	return cached, true, nil
}

func (s *ServiceImpl) GetPlaceDetails(ctx context.Context, externalID string) (*models.Place, error) {
	place, err := s.gateway.GetDetails(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("place details %s: %w", externalID, err)
	}
	return place, nil
}

func (s *ServiceImpl) GetPhotos(ctx context.Context, externalID string, limit int) ([]models.Photo, error) {
	return s.gateway.GetPhotos(ctx, externalID, limit)
}

func (s *ServiceImpl) GetTips(ctx context.Context, externalID string, limit int) ([]models.Tip, error) {
	return s.gateway.GetTips(ctx, externalID, limit)
}

// GetNearby reads the cache store only; no provider call.
func (s *ServiceImpl) GetNearby(ctx context.Context, point models.GeoPoint, radiusMeters float64, limit int) ([]models.Place, error) {
	return s.repo.FindNear(ctx, point, radiusMeters, limit)
}

func (s *ServiceImpl) GetTrending(ctx context.Context, point models.GeoPoint, limit int) ([]models.Place, error) {
	return s.gateway.GetTrending(ctx, point, limit)
}
