package itineraries

import (
	"fmt"
	"time"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

// Aggregate operations on an itinerary. These mutate the struct in memory
// only; persistence is the service's job. Order indices stay contiguous
// 1..N and totals stay in sync after every mutation.

// AddPlace appends a stop at the end of the sequence. Order is assigned as
// one past the current maximum, never reusing freed indices mid-edit.
func AddPlace(it *models.Itinerary, place models.ItineraryPlace) {
	maxOrder := 0
	for _, p := range it.Places {
		if p.Order > maxOrder {
			maxOrder = p.Order
		}
	}
	place.Order = maxOrder + 1
	if place.EstimatedDuration <= 0 {
		place.EstimatedDuration = models.DefaultVisitDuration
	}
	it.Places = append(it.Places, place)
	UpdateTotals(it)
}

// RemovePlace drops every stop matching ref and renumbers the remainder so
// indices are contiguous from 1 again. A ref that matches nothing leaves the
// itinerary untouched; absence is not an error.
func RemovePlace(it *models.Itinerary, ref models.PlaceRef) {
	key := ref.Key()
	kept := it.Places[:0]
	for _, p := range it.Places {
		if p.Ref.Key() != key {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(it.Places) {
		return
	}

	it.Places = kept
	for i := range it.Places {
		it.Places[i].Order = i + 1
	}
	UpdateTotals(it)
}

// MarkVisited flags a stop as seen, optionally recording a 1 to 5 rating.
// Once every stop is visited the itinerary completes; completion is a
// one-way transition and later un-visits never clear it. A ref that matches
// nothing means there is nothing to do, not an error.
func MarkVisited(it *models.Itinerary, ref models.PlaceRef, rating *int, now time.Time) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return fmt.Errorf("rating must be between 1 and 5: %w", models.ErrValidation)
	}

	idx := indexOfPlace(it, ref)
	if idx < 0 {
		return nil
	}

	it.Places[idx].Visited = true
	if rating != nil {
		it.Places[idx].Rating = rating
	}

	if !it.IsCompleted && allVisited(it) {
		it.IsCompleted = true
		completedAt := now
		it.CompletedAt = &completedAt
	}
	return nil
}

// ToggleLike adds the user's like if absent and removes it if present.
// Applying it twice with the same user is a no-op. Returns true when the
// user likes the itinerary after the toggle.
func ToggleLike(it *models.Itinerary, userID string, now time.Time) bool {
	for i, like := range it.Likes {
		if like.UserID == userID {
			it.Likes = append(it.Likes[:i], it.Likes[i+1:]...)
			return false
		}
	}
	it.Likes = append(it.Likes, models.Like{UserID: userID, LikedAt: now})
	return true
}

// UpdateTotals recomputes the duration sum from the stops. Distance is an
// estimate owned by generation and is left untouched here.
func UpdateTotals(it *models.Itinerary) {
	total := 0
	for _, p := range it.Places {
		total += p.EstimatedDuration
	}
	it.TotalDuration = total
}

func indexOfPlace(it *models.Itinerary, ref models.PlaceRef) int {
	key := ref.Key()
	for i, p := range it.Places {
		if p.Ref.Key() == key {
			return i
		}
	}
	return -1
}

func allVisited(it *models.Itinerary) bool {
	if len(it.Places) == 0 {
		return false
	}
	for _, p := range it.Places {
		if !p.Visited {
			return false
		}
	}
	return true
}
