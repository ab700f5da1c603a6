package models

import (
	"time"
)

// UserPreferences is the stored taste profile fed into LLM prompts and
// updated by the heuristic conversation analyzer.
type UserPreferences struct {
	Cuisines    []string `bson:"cuisines,omitempty" json:"cuisines,omitempty"`
	Atmospheres []string `bson:"atmospheres,omitempty" json:"atmospheres,omitempty"`
	PriceRange  string   `bson:"priceRange,omitempty" json:"price_range,omitempty"`
	Interests   []string `bson:"interests,omitempty" json:"interests,omitempty"`
}

// User is an account document.
type User struct {
	ID           string          `bson:"_id" json:"id"`
	Email        string          `bson:"email" json:"email"`
	Username     string          `bson:"username" json:"username"`
	PasswordHash string          `bson:"passwordHash" json:"-"`
	Location     *GeoPoint       `bson:"location,omitempty" json:"location,omitempty"`
	City         string          `bson:"city,omitempty" json:"city,omitempty"`
	Country      string          `bson:"country,omitempty" json:"country,omitempty"`
	Preferences  UserPreferences `bson:"preferences" json:"preferences"`
	Favorites    []string        `bson:"favorites,omitempty" json:"favorites,omitempty"`
	Points       int             `bson:"points" json:"points"`
	CreatedAt    time.Time       `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updated_at"`
}
