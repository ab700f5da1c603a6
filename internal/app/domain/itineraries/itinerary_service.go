package itineraries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/domain/places"
	"github.com/FACorreiaa/roamly/internal/app/models"
)

const (
	// Stub resolution searches the cache and provider around the anchor.
	stubSearchRadiusMeters = 5000
	stubSearchLimit        = 5

	// Reputation awarded for generating an itinerary.
	generationPoints = 25

	// Field caps on the persisted document. The model writes whatever copy
	// it likes; anything over the cap is cut before the aggregate is built.
	maxTitleLength       = 100
	maxDescriptionLength = 500
)

var _ Service = (*ServiceImpl)(nil)

// SkeletonGenerator is the slice of the recommendation domain the
// orchestrator needs.
type SkeletonGenerator interface {
	GenerateItinerarySkeleton(ctx context.Context, freeTextPrompt string, prefs models.UserPreferences, locationHint string) (*models.ItinerarySkeleton, error)
}

// UserStore covers the user domain operations itineraries touch.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	AwardPoints(ctx context.Context, id string, points int) error
}

// GenerateParams carries the generation request after handler validation.
// Preferences, when set, override the user's stored preferences for this one
// generation.
type GenerateParams struct {
	UserID      string
	Prompt      string
	Point       *models.GeoPoint
	Type        models.ItineraryType
	Public      bool
	Preferences *models.UserPreferences
}

// PlaceUpdate carries the mutable stop fields for AddStop.
type PlaceUpdate struct {
	ExternalID        string
	EstimatedDuration int
	Notes             string
}

// MetaUpdate carries the mutable itinerary fields for Update. Nil pointers
// and nil slices leave the field untouched. A non-nil Places replaces the
// whole stop list.
type MetaUpdate struct {
	Title       *string
	Description *string
	IsPublic    *bool
	Tags        []string
	Places      []models.ItineraryPlace
}

type Service interface {
	Generate(ctx context.Context, params GenerateParams) (*models.Itinerary, error)
	ListMine(ctx context.Context, userID string, filter ListFilter) ([]models.Itinerary, error)
	Get(ctx context.Context, id, requesterID string) (*models.Itinerary, error)
	Update(ctx context.Context, id, requesterID string, update MetaUpdate) (*models.Itinerary, error)
	Delete(ctx context.Context, id, requesterID string) error
	AddStop(ctx context.Context, id, requesterID string, update PlaceUpdate) (*models.Itinerary, error)
	RemoveStop(ctx context.Context, id, requesterID string, ref models.PlaceRef) (*models.Itinerary, error)
	MarkStopVisited(ctx context.Context, id, requesterID string, ref models.PlaceRef, rating *int) (*models.Itinerary, error)
	ToggleLike(ctx context.Context, id, requesterID string) (liked bool, count int, err error)
	Share(ctx context.Context, id, requesterID string) (*models.Itinerary, error)
	Popular(ctx context.Context, limit int) ([]models.Itinerary, error)
	ByLocation(ctx context.Context, point models.GeoPoint, radiusMeters float64, limit int) ([]models.Itinerary, error)
}

type ServiceImpl struct {
	logger      *zap.Logger
	repo        Repository
	placeSvc    places.Service
	recommender SkeletonGenerator
	users       UserStore
}

func NewServiceImpl(repo Repository, placeSvc places.Service, recommender SkeletonGenerator, users UserStore, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		placeSvc:    placeSvc,
		recommender: recommender,
		users:       users,
	}
}

// Generate builds an itinerary from a free-text prompt. The skeleton call is
// fatal; stub resolution and the reputation award are best-effort. An
// itinerary is persisted only after the skeleton parses, so a failed
// generation leaves no partial document behind.
func (s *ServiceImpl) Generate(ctx context.Context, params GenerateParams) (*models.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("user.id", params.UserID),
	))
	defer span.End()

	user, err := s.users.GetByID(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	point := params.Point
	if point == nil {
		point = user.Location
	}
	if point == nil {
		return nil, fmt.Errorf("no location in request or profile: %w", models.ErrMissingLocation)
	}

	locationHint := user.City
	if locationHint == "" {
		locationHint = fmt.Sprintf("%f,%f", point.Lat(), point.Lon())
	}

	prefs := user.Preferences
	if params.Preferences != nil {
		prefs = *params.Preferences
	}

	skeleton, err := s.recommender.GenerateItinerarySkeleton(ctx, params.Prompt, prefs, locationHint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "skeleton generation failed")
		return nil, err
	}

	now := time.Now()
	it := &models.Itinerary{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		Title:         truncate(skeleton.Title, maxTitleLength),
		Description:   truncate(skeleton.Description, maxDescriptionLength),
		Type:          skeleton.Type,
		Mood:          skeleton.Mood,
		Purpose:       skeleton.Purpose,
		Location:      *point,
		City:          user.City,
		Country:       user.Country,
		IsPublic:      params.Public,
		AIGenerated:   true,
		Prompt:        params.Prompt,
		EstimatedCost: skeleton.EstimatedCost,
		Tags:          skeleton.Tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if params.Type != "" {
		it.Type = params.Type
	}

	for i, stub := range skeleton.Places {
		it.Places = append(it.Places, s.resolveStub(ctx, stub, *point, i))
	}
	for i := range it.Places {
		it.Places[i].Order = i + 1
	}
	UpdateTotals(it)

	if err := s.repo.Save(ctx, it); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return nil, err
	}

	if err := s.users.AwardPoints(ctx, user.ID, generationPoints); err != nil {
		s.logger.Warn("failed to award generation points",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	span.SetAttributes(attribute.Int("itinerary.places", len(it.Places)))
	span.SetStatus(codes.Ok, "itinerary generated")
	return it, nil
}

// resolveStub matches an AI-suggested place against the real catalog. The
// first candidate whose name or category contains the suggestion (case
// insensitive) wins; a miss keeps the stop as an unresolved placeholder the
// user can swap later.
func (s *ServiceImpl) resolveStub(ctx context.Context, stub models.SkeletonPlace, point models.GeoPoint, localIndex int) models.ItineraryPlace {
	stop := models.ItineraryPlace{
		Ref:               models.UnresolvedRef(localIndex),
		Name:              stub.Name,
		Category:          stub.Category,
		EstimatedDuration: stub.EstimatedDuration,
		Notes:             stub.Notes,
	}
	if stop.EstimatedDuration <= 0 {
		stop.EstimatedDuration = models.DefaultVisitDuration
	}

	candidates, _, err := s.placeSvc.SearchPlaces(ctx, places.SearchParams{
		Query:        stub.Name,
		Point:        &point,
		RadiusMeters: stubSearchRadiusMeters,
		Limit:        stubSearchLimit,
	})
	if err != nil {
		s.logger.Debug("stub resolution search failed",
			zap.String("stub", stub.Name), zap.Error(err))
		return stop
	}

	wantName := strings.ToLower(stub.Name)
	wantCategory := strings.ToLower(stub.Category)
	for _, candidate := range candidates {
		name := strings.ToLower(candidate.Name)
		category := strings.ToLower(candidate.Category)
		if strings.Contains(name, wantName) ||
			(wantCategory != "" && strings.Contains(category, wantCategory)) {
			stop.Ref = models.ResolvedRef(candidate.ExternalID)
			stop.Name = candidate.Name
			stop.Category = candidate.Category
			return stop
		}
	}
	return stop
}

func (s *ServiceImpl) ListMine(ctx context.Context, userID string, filter ListFilter) ([]models.Itinerary, error) {
	return s.repo.FindByOwner(ctx, userID, filter)
}

// Get returns the itinerary with cached place details attached to resolved
// stops. Private itineraries are visible to their owner only.
func (s *ServiceImpl) Get(ctx context.Context, id, requesterID string) (*models.Itinerary, error) {
	it, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !it.IsPublic && it.UserID != requesterID {
		return nil, fmt.Errorf("itinerary %s is private: %w", id, models.ErrForbidden)
	}

	for i := range it.Places {
		ref := it.Places[i].Ref
		if !ref.Resolved {
			continue
		}
		details, err := s.placeSvc.GetPlaceDetails(ctx, ref.ExternalID)
		if err != nil {
			s.logger.Debug("place details unavailable for itinerary view",
				zap.String("external_id", ref.ExternalID), zap.Error(err))
			continue
		}
		it.Places[i].Details = details
	}
	return it, nil
}

func (s *ServiceImpl) Update(ctx context.Context, id, requesterID string, update MetaUpdate) (*models.Itinerary, error) {
	it, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		it.Title = *update.Title
	}
	if update.Description != nil {
		it.Description = *update.Description
	}
	if update.IsPublic != nil {
		it.IsPublic = *update.IsPublic
	}
	if update.Tags != nil {
		it.Tags = update.Tags
	}
	if update.Places != nil {
		it.Places = update.Places
		for i := range it.Places {
			it.Places[i].Order = i + 1
		}
		UpdateTotals(it)
	}

	if err := s.repo.Save(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id, requesterID string) error {
	if _, err := s.loadOwned(ctx, id, requesterID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddStop appends a catalog place to the itinerary. The place must exist;
// details come from the cache store or provider.
func (s *ServiceImpl) AddStop(ctx context.Context, id, requesterID string, update PlaceUpdate) (*models.Itinerary, error) {
	it, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	place, err := s.placeSvc.GetPlaceDetails(ctx, update.ExternalID)
	if err != nil {
		return nil, err
	}

	AddPlace(it, models.ItineraryPlace{
		Ref:               models.ResolvedRef(place.ExternalID),
		Name:              place.Name,
		Category:          place.Category,
		EstimatedDuration: update.EstimatedDuration,
		Notes:             update.Notes,
	})

	if err := s.repo.Save(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *ServiceImpl) RemoveStop(ctx context.Context, id, requesterID string, ref models.PlaceRef) (*models.Itinerary, error) {
	it, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	RemovePlace(it, ref)

	if err := s.repo.Save(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *ServiceImpl) MarkStopVisited(ctx context.Context, id, requesterID string, ref models.PlaceRef, rating *int) (*models.Itinerary, error) {
	it, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	if err := MarkVisited(it, ref, rating, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// ToggleLike flips the requester's like on a visible itinerary.
func (s *ServiceImpl) ToggleLike(ctx context.Context, id, requesterID string) (bool, int, error) {
	it, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, 0, err
	}
	if !it.IsPublic && it.UserID != requesterID {
		return false, 0, fmt.Errorf("itinerary %s is private: %w", id, models.ErrForbidden)
	}

	liked := ToggleLike(it, requesterID, time.Now())
	if err := s.repo.Save(ctx, it); err != nil {
		return false, 0, err
	}
	return liked, it.LikeCount(), nil
}

// Share bumps the share counter on a visible itinerary and returns the
// refreshed document.
func (s *ServiceImpl) Share(ctx context.Context, id, requesterID string) (*models.Itinerary, error) {
	it, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !it.IsPublic && it.UserID != requesterID {
		return nil, fmt.Errorf("itinerary %s is private: %w", id, models.ErrForbidden)
	}

	if err := s.repo.IncrementShares(ctx, id); err != nil {
		return nil, err
	}
	it.ShareCount++
	return it, nil
}

func (s *ServiceImpl) Popular(ctx context.Context, limit int) ([]models.Itinerary, error) {
	return s.repo.FindPopular(ctx, limit)
}

func (s *ServiceImpl) ByLocation(ctx context.Context, point models.GeoPoint, radiusMeters float64, limit int) ([]models.Itinerary, error) {
	return s.repo.FindByLocation(ctx, point, radiusMeters, limit)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func (s *ServiceImpl) loadOwned(ctx context.Context, id, requesterID string) (*models.Itinerary, error) {
	it, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.UserID != requesterID {
		return nil, fmt.Errorf("itinerary %s belongs to another user: %w", id, models.ErrForbidden)
	}
	return it, nil
}
