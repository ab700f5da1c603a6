package itineraries

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/roamly/internal/app/domain/places"
	"github.com/FACorreiaa/roamly/internal/app/models"
)

type MockItineraryRepo struct {
	mock.Mock
}

func (m *MockItineraryRepo) Save(ctx context.Context, it *models.Itinerary) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockItineraryRepo) FindByID(ctx context.Context, id string) (*models.Itinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Itinerary), args.Error(1)
}

func (m *MockItineraryRepo) FindByOwner(ctx context.Context, userID string, filter ListFilter) ([]models.Itinerary, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Itinerary), args.Error(1)
}

func (m *MockItineraryRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItineraryRepo) FindPopular(ctx context.Context, limit int) ([]models.Itinerary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Itinerary), args.Error(1)
}

func (m *MockItineraryRepo) FindByLocation(ctx context.Context, point models.GeoPoint, radiusMeters float64, limit int) ([]models.Itinerary, error) {
	args := m.Called(ctx, point, radiusMeters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Itinerary), args.Error(1)
}

func (m *MockItineraryRepo) IncrementShares(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPlaceService struct {
	mock.Mock
}

func (m *MockPlaceService) SearchPlaces(ctx context.Context, params places.SearchParams) ([]models.Place, bool, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.Place), args.Bool(1), args.Error(2)
}

func (m *MockPlaceService) SearchCategory(ctx context.Context, label string, point models.GeoPoint, radiusMeters, limit int) ([]models.Place, bool, error) {
	args := m.Called(ctx, label, point, radiusMeters, limit)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.Place), args.Bool(1), args.Error(2)
}

func (m *MockPlaceService) GetPlaceDetails(ctx context.Context, externalID string) (*models.Place, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Place), args.Error(1)
}

func (m *MockPlaceService) GetPhotos(ctx context.Context, externalID string, limit int) ([]models.Photo, error) {
	args := m.Called(ctx, externalID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Photo), args.Error(1)
}

func (m *MockPlaceService) GetTips(ctx context.Context, externalID string, limit int) ([]models.Tip, error) {
	args := m.Called(ctx, externalID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tip), args.Error(1)
}

func (m *MockPlaceService) GetNearby(ctx context.Context, point models.GeoPoint, radiusMeters float64, limit int) ([]models.Place, error) {
	args := m.Called(ctx, point, radiusMeters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Place), args.Error(1)
}

func (m *MockPlaceService) GetTrending(ctx context.Context, point models.GeoPoint, limit int) ([]models.Place, error) {
	args := m.Called(ctx, point, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Place), args.Error(1)
}

type MockSkeletonGenerator struct {
	mock.Mock
}

func (m *MockSkeletonGenerator) GenerateItinerarySkeleton(ctx context.Context, prompt string, prefs models.UserPreferences, locationHint string) (*models.ItinerarySkeleton, error) {
	args := m.Called(ctx, prompt, prefs, locationHint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItinerarySkeleton), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) AwardPoints(ctx context.Context, id string, points int) error {
	args := m.Called(ctx, id, points)
	return args.Error(0)
}

func newTestService(repo *MockItineraryRepo, placeSvc *MockPlaceService, gen *MockSkeletonGenerator, users *MockUserStore) *ServiceImpl {
	return NewServiceImpl(repo, placeSvc, gen, users, zap.NewNop())
}

func lisbonPoint() models.GeoPoint {
	return models.NewGeoPoint(-9.1393, 38.7223)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	point := lisbonPoint()
	testUser := &models.User{ID: "user-1", City: "Lisbon"}

	t.Run("resolves stubs and awards points", func(t *testing.T) {
		repo := new(MockItineraryRepo)
		placeSvc := new(MockPlaceService)
		gen := new(MockSkeletonGenerator)
		users := new(MockUserStore)

		users.On("GetByID", mock.Anything, "user-1").Return(testUser, nil)
		gen.On("GenerateItinerarySkeleton", mock.Anything, "a cozy evening", testUser.Preferences, "Lisbon").
			Return(&models.ItinerarySkeleton{
				Title: "Cozy Lisbon Evening",
				Type:  models.TypeEvening,
				Places: []models.SkeletonPlace{
					{Name: "Fabrica Coffee", Category: "coffee", EstimatedDuration: 45},
					{Name: "Some Imaginary Bar", Category: "wine bar"},
				},
			}, nil)

		// First stub matches a real place, second finds nothing.
		placeSvc.On("SearchPlaces", mock.Anything, mock.MatchedBy(func(p places.SearchParams) bool {
			return p.Query == "Fabrica Coffee"
		})).Return([]models.Place{
			{ExternalID: "ext-1", Name: "Fabrica Coffee Roasters", Category: "Coffee Shop"},
		}, false, nil)
		placeSvc.On("SearchPlaces", mock.Anything, mock.MatchedBy(func(p places.SearchParams) bool {
			return p.Query == "Some Imaginary Bar"
		})).Return([]models.Place{}, false, nil)

		repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Itinerary")).Return(nil)
		users.On("AwardPoints", mock.Anything, "user-1", generationPoints).Return(nil)

		it, err := newTestService(repo, placeSvc, gen, users).Generate(ctx, GenerateParams{
			UserID: "user-1",
			Prompt: "a cozy evening",
			Point:  &point,
		})

		require.NoError(t, err)
		require.Len(t, it.Places, 2)

		assert.True(t, it.Places[0].Ref.Resolved)
		assert.Equal(t, "ext-1", it.Places[0].Ref.ExternalID)
		assert.Equal(t, "Fabrica Coffee Roasters", it.Places[0].Name)

		assert.False(t, it.Places[1].Ref.Resolved)
		assert.Equal(t, 1, it.Places[1].Ref.LocalIndex)
		assert.Equal(t, "Some Imaginary Bar", it.Places[1].Name)
		assert.Equal(t, models.DefaultVisitDuration, it.Places[1].EstimatedDuration)

		assert.Equal(t, []int{1, 2}, []int{it.Places[0].Order, it.Places[1].Order})
		assert.Equal(t, 45+models.DefaultVisitDuration, it.TotalDuration)
		assert.True(t, it.AIGenerated)

		repo.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("caps over-long model copy before saving", func(t *testing.T) {
		repo := new(MockItineraryRepo)
		placeSvc := new(MockPlaceService)
		gen := new(MockSkeletonGenerator)
		users := new(MockUserStore)

		users.On("GetByID", mock.Anything, "user-1").Return(testUser, nil)
		gen.On("GenerateItinerarySkeleton", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&models.ItinerarySkeleton{
				Title:       strings.Repeat("t", maxTitleLength+40),
				Description: strings.Repeat("d", maxDescriptionLength+300),
				Places:      []models.SkeletonPlace{{Name: "Park"}},
			}, nil)
		placeSvc.On("SearchPlaces", mock.Anything, mock.Anything).Return([]models.Place{}, false, nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		users.On("AwardPoints", mock.Anything, "user-1", generationPoints).Return(nil)

		it, err := newTestService(repo, placeSvc, gen, users).Generate(ctx, GenerateParams{
			UserID: "user-1",
			Prompt: "rambling model output",
			Point:  &point,
		})

		require.NoError(t, err)
		assert.Len(t, it.Title, maxTitleLength)
		assert.Len(t, it.Description, maxDescriptionLength)
	})

	t.Run("skeleton failure persists nothing", func(t *testing.T) {
		repo := new(MockItineraryRepo)
		placeSvc := new(MockPlaceService)
		gen := new(MockSkeletonGenerator)
		users := new(MockUserStore)

		users.On("GetByID", mock.Anything, "user-1").Return(testUser, nil)
		gen.On("GenerateItinerarySkeleton", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, models.ErrGenerationFailed)

		_, err := newTestService(repo, placeSvc, gen, users).Generate(ctx, GenerateParams{
			UserID: "user-1",
			Prompt: "generate me something",
			Point:  &point,
		})

		assert.ErrorIs(t, err, models.ErrGenerationFailed)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "AwardPoints", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no location anywhere fails", func(t *testing.T) {
		repo := new(MockItineraryRepo)
		placeSvc := new(MockPlaceService)
		gen := new(MockSkeletonGenerator)
		users := new(MockUserStore)

		users.On("GetByID", mock.Anything, "user-2").Return(&models.User{ID: "user-2"}, nil)

		_, err := newTestService(repo, placeSvc, gen, users).Generate(ctx, GenerateParams{
			UserID: "user-2",
			Prompt: "anything at all works",
		})

		assert.ErrorIs(t, err, models.ErrMissingLocation)
		gen.AssertNotCalled(t, "GenerateItinerarySkeleton", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("profile location fills in for missing request point", func(t *testing.T) {
		repo := new(MockItineraryRepo)
		placeSvc := new(MockPlaceService)
		gen := new(MockSkeletonGenerator)
		users := new(MockUserStore)

		home := lisbonPoint()
		users.On("GetByID", mock.Anything, "user-3").Return(&models.User{ID: "user-3", Location: &home, City: "Lisbon"}, nil)
		gen.On("GenerateItinerarySkeleton", mock.Anything, mock.Anything, mock.Anything, "Lisbon").
			Return(&models.ItinerarySkeleton{Title: "Day Out", Places: []models.SkeletonPlace{{Name: "Park"}}}, nil)
		placeSvc.On("SearchPlaces", mock.Anything, mock.Anything).Return([]models.Place{}, false, nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		users.On("AwardPoints", mock.Anything, "user-3", generationPoints).Return(nil)

		it, err := newTestService(repo, placeSvc, gen, users).Generate(ctx, GenerateParams{
			UserID: "user-3",
			Prompt: "somewhere green please",
		})

		require.NoError(t, err)
		assert.Equal(t, home, it.Location)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("private itinerary hidden from others", func(t *testing.T) {
		repo := new(MockItineraryRepo)
		placeSvc := new(MockPlaceService)

		repo.On("FindByID", mock.Anything, "it-1").Return(&models.Itinerary{
			ID: "it-1", UserID: "owner", IsPublic: false,
		}, nil)

		_, err := newTestService(repo, placeSvc, new(MockSkeletonGenerator), new(MockUserStore)).
			Get(ctx, "it-1", "someone-else")

		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("attaches cached details to resolved stops", func(t *testing.T) {
		repo := new(MockItineraryRepo)
		placeSvc := new(MockPlaceService)

		repo.On("FindByID", mock.Anything, "it-1").Return(&models.Itinerary{
			ID: "it-1", UserID: "owner", IsPublic: true,
			Places: []models.ItineraryPlace{
				{Ref: models.ResolvedRef("ext-1"), Name: "Cafe", Order: 1},
				{Ref: models.UnresolvedRef(1), Name: "Mystery Spot", Order: 2},
			},
		}, nil)
		placeSvc.On("GetPlaceDetails", mock.Anything, "ext-1").Return(&models.Place{ExternalID: "ext-1", Name: "Cafe"}, nil)

		it, err := newTestService(repo, placeSvc, new(MockSkeletonGenerator), new(MockUserStore)).
			Get(ctx, "it-1", "anyone")

		require.NoError(t, err)
		require.NotNil(t, it.Places[0].Details)
		assert.Nil(t, it.Places[1].Details)
		placeSvc.AssertNumberOfCalls(t, "GetPlaceDetails", 1)
	})
}

func TestToggleLikeService(t *testing.T) {
	ctx := context.Background()

	t.Run("likes a public itinerary and persists", func(t *testing.T) {
		repo := new(MockItineraryRepo)
		repo.On("FindByID", mock.Anything, "it-1").Return(&models.Itinerary{
			ID: "it-1", UserID: "owner", IsPublic: true,
		}, nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		liked, count, err := newTestService(repo, new(MockPlaceService), new(MockSkeletonGenerator), new(MockUserStore)).
			ToggleLike(ctx, "it-1", "user-9")

		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, 1, count)
	})

	t.Run("private itinerary rejects strangers", func(t *testing.T) {
		repo := new(MockItineraryRepo)
		repo.On("FindByID", mock.Anything, "it-1").Return(&models.Itinerary{
			ID: "it-1", UserID: "owner", IsPublic: false,
		}, nil)

		_, _, err := newTestService(repo, new(MockPlaceService), new(MockSkeletonGenerator), new(MockUserStore)).
			ToggleLike(ctx, "it-1", "user-9")

		assert.ErrorIs(t, err, models.ErrForbidden)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestByLocation(t *testing.T) {
	ctx := context.Background()
	point := lisbonPoint()

	repo := new(MockItineraryRepo)
	repo.On("FindByLocation", mock.Anything, point, 5000.0, 10).Return([]models.Itinerary{
		{ID: "it-new", IsPublic: true},
		{ID: "it-old", IsPublic: true},
	}, nil)

	results, err := newTestService(repo, new(MockPlaceService), new(MockSkeletonGenerator), new(MockUserStore)).
		ByLocation(ctx, point, 5000, 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "it-new", results[0].ID)
	repo.AssertExpectations(t)
}

func TestMutationsRequireOwnership(t *testing.T) {
	ctx := context.Background()

	repo := new(MockItineraryRepo)
	repo.On("FindByID", mock.Anything, "it-1").Return(&models.Itinerary{
		ID: "it-1", UserID: "owner", IsPublic: true,
	}, nil)

	svc := newTestService(repo, new(MockPlaceService), new(MockSkeletonGenerator), new(MockUserStore))

	_, err := svc.Update(ctx, "it-1", "intruder", MetaUpdate{})
	assert.ErrorIs(t, err, models.ErrForbidden)

	err = svc.Delete(ctx, "it-1", "intruder")
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.RemoveStop(ctx, "it-1", "intruder", models.ResolvedRef("ext-1"))
	assert.ErrorIs(t, err, models.ErrForbidden)

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
