package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/urfave/cli/v2"

	"github.com/somos/attraction/backend/internal/adapters/database"
	"github.com/somos/attraction/backend/internal/adapters/search"
	"github.com/somos/attraction/backend/internal/application/services"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/clients/postgres"
	"github.com/somos/attraction/backend/internal/infrastructure/clients/typesense"
	"github.com/somos/attraction/backend/internal/infrastructure/observability"
	"github.com/somos/attraction/backend/pkg/config"
)

const pageSize = 500

func main() {
	app := &cli.App{
		Name:  "indexer",
		Usage: "Maintains the favorite place search index",
		Commands: []*cli.Command{
			{
				Name:  "reindex-places",
				Usage: "push every favorite place into Typesense",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "reset",
						Usage:   "drop the places collection before reindexing",
						EnvVars: []string{"RESET_TYPESENSE"},
					},
					&cli.DurationFlag{
						Name:    "interval",
						Usage:   "repeat the reindex on this interval (e.g. 6h, 30m)",
						EnvVars: []string{"REINDEX_INTERVAL"},
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "number of concurrent index requests",
						Value: 8,
					},
				},
				Action: reindexPlaces,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func reindexPlaces(c *cli.Context) error {
	interval := c.Duration("interval")
	if interval < 0 {
		return fmt.Errorf("interval must not be negative, got %s", interval)
	}
	workers := c.Int("workers")
	if workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", workers)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	observability.InitLogger("attraction-indexer", cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return err
	}

	places := database.NewFavoritePlaceAdapter(pgClient)
	service := services.NewFavoritePlaceService(places, search.NewPlaceSearchAdapter(tsClient))

	reset := c.Bool("reset")
	for {
		if reset {
			log.Info().Str("collection", typesense.PlacesCollection).Msg("resetting collection")
			err = tsClient.ResetSchema(ctx)
		} else {
			err = tsClient.InitSchema(ctx)
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to prepare the places collection")
		} else if err := indexOnce(ctx, places, service, workers); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval == 0 {
			return nil
		}
		reset = false
		log.Info().Dur("interval", interval).Msg("reindex complete, waiting for next run")

		select {
		case <-ctx.Done():
			log.Info().Msg("indexer shutting down")
			return nil
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, places repositories.FavoritePlaceRepository, service *services.FavoritePlaceService, workers int) error {
	start := time.Now()
	var indexed, failed atomic.Int64

	p := pool.New().WithContext(ctx).WithMaxGoroutines(workers)
	for offset := 0; ; offset += pageSize {
		page, err := places.ListAll(ctx, pageSize, offset)
		if err != nil {
			_ = p.Wait()
			return err
		}

		for _, place := range page {
			p.Go(func(ctx context.Context) error {
				if err := service.Reindex(ctx, place); err != nil {
					failed.Add(1)
					log.Warn().Err(err).Str("place_id", place.ID).Msg("failed to index place")
					return nil
				}
				indexed.Add(1)
				return nil
			})
		}

		if len(page) < pageSize {
			break
		}
	}

	if err := p.Wait(); err != nil {
		return err
	}

	log.Info().
		Int64("indexed", indexed.Load()).
		Int64("failed", failed.Load()).
		Dur("took", time.Since(start)).
		Msg("places indexed")
	return nil
}
