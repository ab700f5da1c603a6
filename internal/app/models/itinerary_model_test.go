package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceRefKey(t *testing.T) {
	resolved := ResolvedRef("4b0588aef964a520f6a422e3")
	assert.Equal(t, "4b0588aef964a520f6a422e3", resolved.Key())

	placeholder := UnresolvedRef(2)
	assert.Equal(t, "unresolved:2", placeholder.Key())
}

func TestParsePlaceRefKey(t *testing.T) {
	assert.Equal(t, ResolvedRef("ext-1"), ParsePlaceRefKey("ext-1"))
	assert.Equal(t, UnresolvedRef(3), ParsePlaceRefKey("unresolved:3"))

	// A malformed placeholder suffix is treated as an opaque provider id.
	weird := ParsePlaceRefKey("unresolved:abc")
	assert.True(t, weird.Resolved)
	assert.Equal(t, "unresolved:abc", weird.ExternalID)
}

func TestValidItineraryType(t *testing.T) {
	for _, valid := range []ItineraryType{TypeMorning, TypeAfternoon, TypeEvening, TypeNight, TypeFullDay, TypeCustom} {
		assert.True(t, ValidItineraryType(valid))
	}
	assert.False(t, ValidItineraryType("weekend"))
	assert.False(t, ValidItineraryType(""))
}
