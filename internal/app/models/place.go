package models

import (
	"time"
)

// PlaceStaleAfter is how long a cached place is trusted before a detail
// read goes back to the provider.
const PlaceStaleAfter = 24 * time.Hour

// GeoPoint is a GeoJSON point. Coordinates are longitude first, matching
// the 2dsphere index convention.
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from longitude and latitude.
func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

// Lon returns the longitude component.
func (g GeoPoint) Lon() float64 { return g.Coordinates[0] }

// Lat returns the latitude component.
func (g GeoPoint) Lat() float64 { return g.Coordinates[1] }

// PlaceStats holds the provider's aggregate counters for a place.
type PlaceStats struct {
	CheckinCount int `bson:"checkinCount" json:"checkin_count"`
	TipCount     int `bson:"tipCount" json:"tip_count"`
	PhotoCount   int `bson:"photoCount" json:"photo_count"`
}

// Place is a cached projection of a provider-owned place. The provider is
// authoritative; this record is disposable and refreshed on every search or
// detail call that returns its external id.
type Place struct {
	ExternalID   string     `bson:"externalId" json:"external_id"`
	Name         string     `bson:"name" json:"name"`
	Category     string     `bson:"category" json:"category"`
	CategoryTags []string   `bson:"categoryTags,omitempty" json:"category_tags,omitempty"`
	Location     GeoPoint   `bson:"location" json:"location"`
	Address      string     `bson:"address,omitempty" json:"address,omitempty"`
	City         string     `bson:"city,omitempty" json:"city,omitempty"`
	Country      string     `bson:"country,omitempty" json:"country,omitempty"`
	Phone        string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Website      string     `bson:"website,omitempty" json:"website,omitempty"`
	Email        string     `bson:"email,omitempty" json:"email,omitempty"`
	PriceTier    *int       `bson:"priceTier,omitempty" json:"price_tier,omitempty"`
	Rating       *float64   `bson:"rating,omitempty" json:"rating,omitempty"`
	OpenNow      *bool      `bson:"openNow,omitempty" json:"open_now,omitempty"`
	Stats        PlaceStats `bson:"stats" json:"stats"`
	Popularity   float64    `bson:"popularity" json:"popularity"`
	IsActive     bool       `bson:"isActive" json:"is_active"`
	FetchedAt    time.Time  `bson:"fetchedAt" json:"fetched_at"`
}

// RecomputePopularity derives the popularity score from the aggregate stats.
// The provider's own score is never trusted.
func (p *Place) RecomputePopularity() {
	rating := 0.0
	if p.Rating != nil {
		rating = *p.Rating
	}
	p.Popularity = 0.4*float64(p.Stats.CheckinCount) +
		0.3*float64(p.Stats.TipCount) +
		0.2*float64(p.Stats.PhotoCount) +
		0.1*rating
}

// IsStale reports whether the cached record is older than the staleness window.
func (p *Place) IsStale(now time.Time) bool {
	return now.Sub(p.FetchedAt) > PlaceStaleAfter
}

// Photo is an optional enrichment attached to a place.
type Photo struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Tip is a short user-authored note about a place, also an optional enrichment.
type Tip struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
