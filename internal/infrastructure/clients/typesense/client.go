package typesense

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/somos/attraction/backend/pkg/config"
	"github.com/somos/attraction/backend/pkg/retry"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

const (
	PlacesCollection = "favorite_places"
)

// Client wraps the Typesense client used for favorite place search.
type Client struct {
	client *typesense.Client
}

// NewClient waits for the Typesense health endpoint before returning.
func NewClient(ctx context.Context, cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.Connect(ctx, retry.StartupPolicy(), "typesense", func(ctx context.Context) error {
		healthy, err := client.Health(ctx, 2*time.Second)
		if err != nil {
			return err
		}
		if !healthy {
			return errors.New("typesense reports unhealthy")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", cfg.URL).Msg("connected to Typesense")
	return &Client{client: client}, nil
}

func (c *Client) Client() *typesense.Client {
	return c.client
}

// PlacesSchema is the collection schema for favorite places. user_id is a
// facet so every search can be filtered to the owner.
func PlacesSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: PlacesCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "user_id", Type: "string", Facet: pointer.True()},
			{Name: "address", Type: "string"},
			{Name: "type", Type: "string", Facet: pointer.True()},
			{Name: "is_default", Type: "bool"},
			{Name: "location", Type: "geopoint", Optional: pointer.True()},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}
}

// InitSchema creates the favorite places collection unless it exists.
func (c *Client) InitSchema(ctx context.Context) error {
	_, err := c.client.Collection(PlacesCollection).Retrieve(ctx)
	if err == nil {
		return nil
	}

	var httpErr *typesense.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusNotFound {
		return fmt.Errorf("failed to look up collection %s: %w", PlacesCollection, err)
	}

	if _, err := c.client.Collections().Create(ctx, PlacesSchema()); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", PlacesCollection, err)
	}
	log.Info().Str("collection", PlacesCollection).Msg("created Typesense collection")
	return nil
}

// ResetSchema drops and recreates the favorite places collection
func (c *Client) ResetSchema(ctx context.Context) error {
	if _, err := c.client.Collection(PlacesCollection).Delete(ctx); err != nil {
		log.Warn().Err(err).Str("collection", PlacesCollection).Msg("drop collection failed, recreating anyway")
	}
	return c.InitSchema(ctx)
}
