package models

import (
	"strconv"
	"strings"
	"time"
)

// Itinerary tag vocabularies.
type ItineraryType string

const (
	TypeMorning   ItineraryType = "morning"
	TypeAfternoon ItineraryType = "afternoon"
	TypeEvening   ItineraryType = "evening"
	TypeNight     ItineraryType = "night"
	TypeFullDay   ItineraryType = "full-day"
	TypeCustom    ItineraryType = "custom"
)

type ItineraryMood string

const (
	MoodRelaxed     ItineraryMood = "relaxed"
	MoodEnergetic   ItineraryMood = "energetic"
	MoodRomantic    ItineraryMood = "romantic"
	MoodAdventurous ItineraryMood = "adventurous"
	MoodSocial      ItineraryMood = "social"
	MoodProductive  ItineraryMood = "productive"
	MoodCultural    ItineraryMood = "cultural"
)

type ItineraryPurpose string

const (
	PurposeWork      ItineraryPurpose = "work"
	PurposeRelax     ItineraryPurpose = "relax"
	PurposeExplore   ItineraryPurpose = "explore"
	PurposeDine      ItineraryPurpose = "dine"
	PurposeNightlife ItineraryPurpose = "nightlife"
	PurposeCulture   ItineraryPurpose = "culture"
	PurposeShopping  ItineraryPurpose = "shopping"
	PurposeOutdoor   ItineraryPurpose = "outdoor"
)

// ValidItineraryType reports whether t is one of the known type tags.
func ValidItineraryType(t ItineraryType) bool {
	switch t {
	case TypeMorning, TypeAfternoon, TypeEvening, TypeNight, TypeFullDay, TypeCustom:
		return true
	}
	return false
}

// PlaceRef points at either a real provider place or a locally synthesized
// placeholder for an AI-suggested place that could not be resolved. The two
// cases are distinguished structurally so downstream code cannot mistake a
// placeholder for a provider id.
type PlaceRef struct {
	Resolved   bool   `bson:"resolved" json:"resolved"`
	ExternalID string `bson:"externalId,omitempty" json:"external_id,omitempty"`
	LocalIndex int    `bson:"localIndex,omitempty" json:"local_index,omitempty"`
}

// ResolvedRef references a provider place.
func ResolvedRef(externalID string) PlaceRef {
	return PlaceRef{Resolved: true, ExternalID: externalID}
}

// UnresolvedRef marks the stub at the given skeleton index as unmatched.
func UnresolvedRef(localIndex int) PlaceRef {
	return PlaceRef{Resolved: false, LocalIndex: localIndex}
}

// Key returns the identity used to address this entry in mutation operations.
func (r PlaceRef) Key() string {
	if r.Resolved {
		return r.ExternalID
	}
	return placeholderKey(r.LocalIndex)
}

func placeholderKey(idx int) string {
	// stable addressing for unresolved entries only; never a provider id
	return "unresolved:" + strconv.Itoa(idx)
}

// ParsePlaceRefKey is the inverse of Key, used when a ref arrives in a URL.
func ParsePlaceRefKey(key string) PlaceRef {
	if rest, ok := strings.CutPrefix(key, "unresolved:"); ok {
		if idx, err := strconv.Atoi(rest); err == nil {
			return UnresolvedRef(idx)
		}
	}
	return ResolvedRef(key)
}

// DefaultVisitDuration is assumed when a place entry carries no estimate.
const DefaultVisitDuration = 60

// ItineraryPlace is one ordered entry in an itinerary. It has no lifecycle of
// its own; it lives and dies with the parent document.
type ItineraryPlace struct {
	Ref               PlaceRef `bson:"ref" json:"ref"`
	Name              string   `bson:"name" json:"name"`
	Category          string   `bson:"category,omitempty" json:"category,omitempty"`
	Order             int      `bson:"order" json:"order"`
	EstimatedDuration int      `bson:"estimatedDuration" json:"estimated_duration"`
	Notes             string   `bson:"notes,omitempty" json:"notes,omitempty"`
	Visited           bool     `bson:"visited" json:"visited"`
	Rating            *int     `bson:"rating,omitempty" json:"rating,omitempty"`

	// Details is populated on reads from the place cache/gateway; it is
	// never persisted with the itinerary.
	Details *Place `bson:"-" json:"details,omitempty"`
}

// Like records one user's like. A user appears at most once per itinerary.
type Like struct {
	UserID  string    `bson:"userId" json:"user_id"`
	LikedAt time.Time `bson:"likedAt" json:"liked_at"`
}

// WeatherSnapshot is a write-only denormalized convenience field.
type WeatherSnapshot struct {
	Condition   string  `bson:"condition,omitempty" json:"condition,omitempty"`
	Temperature float64 `bson:"temperature,omitempty" json:"temperature,omitempty"`
	Humidity    float64 `bson:"humidity,omitempty" json:"humidity,omitempty"`
	Forecast    string  `bson:"forecast,omitempty" json:"forecast,omitempty"`
}

// Itinerary is the ordered-list-of-places aggregate. Structural mutations go
// through the methods in the itineraries domain package, which maintain the
// order/duration/completion invariants before the document is persisted.
type Itinerary struct {
	ID          string           `bson:"_id" json:"id"`
	UserID      string           `bson:"userId" json:"user_id"`
	Title       string           `bson:"title" json:"title"`
	Description string           `bson:"description,omitempty" json:"description,omitempty"`
	Type        ItineraryType    `bson:"type" json:"type"`
	Mood        ItineraryMood    `bson:"mood,omitempty" json:"mood,omitempty"`
	Purpose     ItineraryPurpose `bson:"purpose,omitempty" json:"purpose,omitempty"`

	Location GeoPoint `bson:"location" json:"location"`
	City     string   `bson:"city,omitempty" json:"city,omitempty"`
	Country  string   `bson:"country,omitempty" json:"country,omitempty"`

	Places []ItineraryPlace `bson:"places" json:"places"`
	Likes  []Like           `bson:"likes" json:"likes"`

	IsPublic    bool       `bson:"isPublic" json:"is_public"`
	IsCompleted bool       `bson:"isCompleted" json:"is_completed"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completed_at,omitempty"`

	AIGenerated bool   `bson:"aiGenerated" json:"ai_generated"`
	Prompt      string `bson:"prompt,omitempty" json:"prompt,omitempty"`

	TotalDuration int      `bson:"totalDuration" json:"total_duration"`
	TotalDistance float64  `bson:"totalDistance,omitempty" json:"total_distance,omitempty"`
	EstimatedCost string   `bson:"estimatedCost,omitempty" json:"estimated_cost,omitempty"`
	Tags          []string `bson:"tags,omitempty" json:"tags,omitempty"`
	ShareCount    int      `bson:"shareCount" json:"share_count"`

	Weather *WeatherSnapshot `bson:"weather,omitempty" json:"weather,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// LikeCount is the number of likes currently on the itinerary.
func (it *Itinerary) LikeCount() int { return len(it.Likes) }
