package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/clients/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

// PlaceSearchAdapter implements PlaceSearchRepository on Typesense
type PlaceSearchAdapter struct {
	client *typesense.Client
}

// NewPlaceSearchAdapter creates a new Typesense-backed place search
func NewPlaceSearchAdapter(client *typesense.Client) repositories.PlaceSearchRepository {
	return &PlaceSearchAdapter{client: client}
}

// Index upserts a favorite place document
func (a *PlaceSearchAdapter) Index(ctx context.Context, place *entities.FavoritePlace) error {
	_, err := a.client.Client().Collection(typesense.PlacesCollection).Documents().Upsert(ctx, placeDocument(place))
	if err != nil {
		return fmt.Errorf("failed to index favorite place: %w", err)
	}
	return nil
}

// Delete removes a favorite place from the index
func (a *PlaceSearchAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(typesense.PlacesCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete favorite place from index: %w", err)
	}
	return nil
}

// Search runs a full-text query over the user's own places
func (a *PlaceSearchAdapter) Search(ctx context.Context, userID, query string, limit int) ([]*entities.FavoritePlace, error) {
	if limit <= 0 {
		limit = 10
	}

	q := strings.TrimSpace(query)
	if q == "" {
		q = "*"
	}

	result, err := a.client.Client().Collection(typesense.PlacesCollection).Documents().Search(ctx, &api.SearchCollectionParams{
		Q:        pointer.String(q),
		QueryBy:  pointer.String("address,type"),
		FilterBy: pointer.String(ownerFilter(userID)),
		SortBy:   pointer.String("_text_match:desc,created_at:desc"),
		PerPage:  pointer.Int(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search favorite places: %w", err)
	}

	places := []*entities.FavoritePlace{}
	if result.Hits == nil {
		return places, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if place := placeFromDocument(*hit.Document); place != nil {
			places = append(places, place)
		}
	}
	return places, nil
}

func ownerFilter(userID string) string {
	return "user_id:=`" + strings.ReplaceAll(userID, "`", "") + "`"
}

func placeDocument(place *entities.FavoritePlace) map[string]interface{} {
	doc := map[string]interface{}{
		"id":         place.ID,
		"user_id":    place.UserID,
		"address":    place.Address,
		"type":       place.Type,
		"is_default": place.IsDefault,
		"created_at": place.CreatedAt.Unix(),
	}
	if place.HasLocation() {
		doc["location"] = []float64{*place.Lat, *place.Lon}
	}
	return doc
}

// placeFromDocument rebuilds a place from a search hit; documents missing
// their id are skipped.
func placeFromDocument(doc map[string]interface{}) *entities.FavoritePlace {
	id, _ := doc["id"].(string)
	if id == "" {
		return nil
	}

	place := &entities.FavoritePlace{ID: id}
	place.UserID, _ = doc["user_id"].(string)
	place.Address, _ = doc["address"].(string)
	place.Type, _ = doc["type"].(string)
	place.IsDefault, _ = doc["is_default"].(bool)

	if created, ok := doc["created_at"].(float64); ok {
		place.CreatedAt = time.Unix(int64(created), 0).UTC()
	}
	if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
		lat, latOK := loc[0].(float64)
		lon, lonOK := loc[1].(float64)
		if latOK && lonOK {
			place.Lat, place.Lon = &lat, &lon
		}
	}
	return place
}
