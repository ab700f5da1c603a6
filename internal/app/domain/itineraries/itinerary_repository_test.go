package itineraries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

func TestPublicNearbyFilter(t *testing.T) {
	point := models.NewGeoPoint(-9.1393, 38.7223)
	filter := publicNearbyFilter(point, 5000)

	assert.Equal(t, true, filter["isPublic"])

	location, ok := filter["location"].(bson.M)
	require.True(t, ok)
	geoWithin, ok := location["$geoWithin"].(bson.M)
	require.True(t, ok)
	sphere, ok := geoWithin["$centerSphere"].(bson.A)
	require.True(t, ok)
	require.Len(t, sphere, 2)

	center, ok := sphere[0].(bson.A)
	require.True(t, ok)
	assert.Equal(t, bson.A{-9.1393, 38.7223}, center)

	// Mongo wants the radius in radians, not meters.
	assert.InDelta(t, 5000/earthRadiusMeters, sphere[1], 1e-12)
}
