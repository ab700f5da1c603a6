package user

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// field untouched.
type ProfileUpdate struct {
	Username *string
	City     *string
	Country  *string
	Location *models.GeoPoint
}

// PlaceLookup is the slice of the places domain favorites need to hydrate
// saved ids into full records.
type PlaceLookup interface {
	GetPlaceDetails(ctx context.Context, externalID string) (*models.Place, error)
}

type Service interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error)
	UpdatePreferences(ctx context.Context, id string, prefs models.UserPreferences) error
	AddFavorite(ctx context.Context, id, externalID string) error
	RemoveFavorite(ctx context.Context, id, externalID string) error
	ListFavorites(ctx context.Context, id string) ([]models.Place, error)
	AwardPoints(ctx context.Context, id string, points int) error
	GetLocation(ctx context.Context, id string) (*models.GeoPoint, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
	places PlaceLookup
}

func NewServiceImpl(repo Repository, places PlaceLookup, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		places: places,
	}
}

func (s *ServiceImpl) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ServiceImpl) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	fields := bson.M{}
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.City != nil {
		fields["city"] = *update.City
	}
	if update.Country != nil {
		fields["country"] = *update.Country
	}
	if update.Location != nil {
		fields["location"] = *update.Location
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", models.ErrValidation)
	}

	if err := s.repo.UpdateProfile(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ServiceImpl) UpdatePreferences(ctx context.Context, id string, prefs models.UserPreferences) error {
	return s.repo.UpdatePreferences(ctx, id, prefs)
}

// AddFavorite verifies the place exists before saving its id.
func (s *ServiceImpl) AddFavorite(ctx context.Context, id, externalID string) error {
	if _, err := s.places.GetPlaceDetails(ctx, externalID); err != nil {
		return err
	}
	return s.repo.AddFavorite(ctx, id, externalID)
}

func (s *ServiceImpl) RemoveFavorite(ctx context.Context, id, externalID string) error {
	return s.repo.RemoveFavorite(ctx, id, externalID)
}

// ListFavorites hydrates the saved ids. A favorite that can no longer be
// fetched is skipped rather than failing the whole list.
func (s *ServiceImpl) ListFavorites(ctx context.Context, id string) ([]models.Place, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	results := make([]models.Place, 0, len(u.Favorites))
	for _, externalID := range u.Favorites {
		place, err := s.places.GetPlaceDetails(ctx, externalID)
		if err != nil {
			s.logger.Debug("skipping unavailable favorite",
				zap.String("external_id", externalID), zap.Error(err))
			continue
		}
		results = append(results, *place)
	}
	return results, nil
}

func (s *ServiceImpl) AwardPoints(ctx context.Context, id string, points int) error {
	return s.repo.IncrementPoints(ctx, id, points)
}

// GetLocation returns the stored home location, nil when unset.
func (s *ServiceImpl) GetLocation(ctx context.Context, id string) (*models.GeoPoint, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Location, nil
}
