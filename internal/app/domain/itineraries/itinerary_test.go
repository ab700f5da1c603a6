package itineraries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

func buildItinerary(durations ...int) *models.Itinerary {
	it := &models.Itinerary{ID: "it-1", UserID: "user-1"}
	for i, d := range durations {
		it.Places = append(it.Places, models.ItineraryPlace{
			Ref:               models.ResolvedRef("place-" + string(rune('a'+i))),
			Name:              "Place " + string(rune('A'+i)),
			Order:             i + 1,
			EstimatedDuration: d,
		})
	}
	UpdateTotals(it)
	return it
}

func TestAddPlace(t *testing.T) {
	t.Run("assigns next order and updates total", func(t *testing.T) {
		it := buildItinerary(30, 45)

		AddPlace(it, models.ItineraryPlace{
			Ref:               models.ResolvedRef("place-x"),
			Name:              "New Stop",
			EstimatedDuration: 90,
		})

		require.Len(t, it.Places, 3)
		assert.Equal(t, 3, it.Places[2].Order)
		assert.Equal(t, 30+45+90, it.TotalDuration)
	})

	t.Run("defaults duration when missing", func(t *testing.T) {
		it := buildItinerary()

		AddPlace(it, models.ItineraryPlace{Ref: models.ResolvedRef("place-x"), Name: "New Stop"})

		assert.Equal(t, models.DefaultVisitDuration, it.Places[0].EstimatedDuration)
		assert.Equal(t, models.DefaultVisitDuration, it.TotalDuration)
	})

	t.Run("order continues past gaps left by removals", func(t *testing.T) {
		it := buildItinerary(30, 30, 30)
		RemovePlace(it, it.Places[2].Ref)

		AddPlace(it, models.ItineraryPlace{Ref: models.ResolvedRef("place-y"), EstimatedDuration: 20})

		assert.Equal(t, 3, it.Places[2].Order)
	})
}

func TestRemovePlace(t *testing.T) {
	t.Run("renumbers remaining stops contiguously", func(t *testing.T) {
		it := buildItinerary(30, 45, 60)

		RemovePlace(it, models.ResolvedRef("place-b"))

		require.Len(t, it.Places, 2)
		for i, p := range it.Places {
			assert.Equal(t, i+1, p.Order)
		}
		assert.Equal(t, 30+60, it.TotalDuration)
	})

	t.Run("absent ref is a no-op", func(t *testing.T) {
		it := buildItinerary(30, 45)

		RemovePlace(it, models.ResolvedRef("never-added"))

		require.Len(t, it.Places, 2)
		assert.Equal(t, 1, it.Places[0].Order)
		assert.Equal(t, 2, it.Places[1].Order)
		assert.Equal(t, 30+45, it.TotalDuration)
	})

	t.Run("removes every entry matching the ref", func(t *testing.T) {
		it := buildItinerary(30)
		AddPlace(it, models.ItineraryPlace{Ref: models.ResolvedRef("place-a"), Name: "Again", EstimatedDuration: 20})

		RemovePlace(it, models.ResolvedRef("place-a"))

		assert.Empty(t, it.Places)
		assert.Equal(t, 0, it.TotalDuration)
	})

	t.Run("removes unresolved placeholder by local index", func(t *testing.T) {
		it := buildItinerary(30)
		AddPlace(it, models.ItineraryPlace{Ref: models.UnresolvedRef(1), Name: "Mystery", EstimatedDuration: 20})

		RemovePlace(it, models.UnresolvedRef(1))

		assert.Len(t, it.Places, 1)
		assert.Equal(t, 30, it.TotalDuration)
	})
}

func TestMarkVisited(t *testing.T) {
	now := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)

	t.Run("completes when every stop is visited", func(t *testing.T) {
		it := buildItinerary(30, 45)

		require.NoError(t, MarkVisited(it, it.Places[0].Ref, nil, now))
		assert.False(t, it.IsCompleted)
		assert.Nil(t, it.CompletedAt)

		rating := 4
		require.NoError(t, MarkVisited(it, it.Places[1].Ref, &rating, now))
		assert.True(t, it.IsCompleted)
		require.NotNil(t, it.CompletedAt)
		assert.Equal(t, now, *it.CompletedAt)
		require.NotNil(t, it.Places[1].Rating)
		assert.Equal(t, 4, *it.Places[1].Rating)
	})

	t.Run("completion never reverts", func(t *testing.T) {
		it := buildItinerary(30)
		require.NoError(t, MarkVisited(it, it.Places[0].Ref, nil, now))
		require.True(t, it.IsCompleted)
		completedAt := *it.CompletedAt

		AddPlace(it, models.ItineraryPlace{Ref: models.ResolvedRef("place-z"), EstimatedDuration: 20})

		assert.True(t, it.IsCompleted)
		assert.Equal(t, completedAt, *it.CompletedAt)

		later := now.Add(time.Hour)
		require.NoError(t, MarkVisited(it, models.ResolvedRef("place-z"), nil, later))
		assert.Equal(t, completedAt, *it.CompletedAt, "completion timestamp must not move")
	})

	t.Run("absent ref is nothing to do", func(t *testing.T) {
		it := buildItinerary(30)

		rating := 5
		require.NoError(t, MarkVisited(it, models.ResolvedRef("never-added"), &rating, now))

		assert.False(t, it.Places[0].Visited)
		assert.False(t, it.IsCompleted)
	})

	t.Run("rejects out of range rating", func(t *testing.T) {
		it := buildItinerary(30)

		for _, bad := range []int{0, 6, -1} {
			rating := bad
			err := MarkVisited(it, it.Places[0].Ref, &rating, now)
			assert.ErrorIs(t, err, models.ErrValidation)
		}
		assert.False(t, it.Places[0].Visited)
	})

	t.Run("empty itinerary never completes", func(t *testing.T) {
		it := buildItinerary()
		assert.False(t, allVisited(it))
	})
}

func TestToggleLike(t *testing.T) {
	now := time.Now()

	t.Run("double toggle is a no-op", func(t *testing.T) {
		it := buildItinerary(30)

		liked := ToggleLike(it, "user-2", now)
		assert.True(t, liked)
		assert.Equal(t, 1, it.LikeCount())

		liked = ToggleLike(it, "user-2", now)
		assert.False(t, liked)
		assert.Equal(t, 0, it.LikeCount())
	})

	t.Run("likes from different users accumulate", func(t *testing.T) {
		it := buildItinerary(30)

		ToggleLike(it, "user-2", now)
		ToggleLike(it, "user-3", now)

		assert.Equal(t, 2, it.LikeCount())

		ToggleLike(it, "user-2", now)
		assert.Equal(t, 1, it.LikeCount())
		assert.Equal(t, "user-3", it.Likes[0].UserID)
	})
}

func TestUpdateTotals(t *testing.T) {
	it := buildItinerary(30, 45, 15)
	assert.Equal(t, 90, it.TotalDuration)

	it.TotalDistance = 12.5
	it.Places[0].EstimatedDuration = 60
	UpdateTotals(it)

	assert.Equal(t, 120, it.TotalDuration)
	assert.Equal(t, 12.5, it.TotalDistance, "distance is not recomputed here")
}
