package search

import (
	"testing"
	"time"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceDocument_RoundTripsThroughSearchHit(t *testing.T) {
	lat, lon := 39.2986, 16.2540
	place := &entities.FavoritePlace{
		ID:        "5f1c",
		UserID:    "user-1",
		Address:   "Corso Mazzini 1, Cosenza",
		Type:      entities.PlaceTypeHome,
		IsDefault: true,
		Lat:       &lat,
		Lon:       &lon,
		CreatedAt: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
	}

	doc := placeDocument(place)
	assert.Equal(t, []float64{lat, lon}, doc["location"])

	// Typesense hits come back JSON decoded.
	hit := map[string]interface{}{
		"id":         doc["id"],
		"user_id":    doc["user_id"],
		"address":    doc["address"],
		"type":       doc["type"],
		"is_default": doc["is_default"],
		"created_at": float64(doc["created_at"].(int64)),
		"location":   []interface{}{lat, lon},
	}

	got := placeFromDocument(hit)
	require.NotNil(t, got)
	assert.Equal(t, place.Address, got.Address)
	assert.True(t, got.IsDefault)
	assert.True(t, place.CreatedAt.Equal(got.CreatedAt))
	require.True(t, got.HasLocation())
	assert.InDelta(t, lon, *got.Lon, 1e-9)
}

func TestPlaceDocument_WithoutLocation(t *testing.T) {
	doc := placeDocument(&entities.FavoritePlace{ID: "p", UserID: "u", Address: "Unical"})
	_, hasLocation := doc["location"]
	assert.False(t, hasLocation)
}

func TestPlaceFromDocument_SkipsMissingID(t *testing.T) {
	assert.Nil(t, placeFromDocument(map[string]interface{}{"address": "x"}))
}

func TestOwnerFilter(t *testing.T) {
	assert.Equal(t, "user_id:=`user-1`", ownerFilter("user-1"))
	assert.Equal(t, "user_id:=`abc`", ownerFilter("a`b`c"))
}
