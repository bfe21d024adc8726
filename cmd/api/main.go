package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/somos/attraction/backend/internal/adapters/cache"
	"github.com/somos/attraction/backend/internal/adapters/database"
	"github.com/somos/attraction/backend/internal/adapters/events"
	"github.com/somos/attraction/backend/internal/adapters/providers/emissions"
	"github.com/somos/attraction/backend/internal/adapters/search"
	"github.com/somos/attraction/backend/internal/api/handlers"
	"github.com/somos/attraction/backend/internal/api/middleware"
	"github.com/somos/attraction/backend/internal/api/routes"
	"github.com/somos/attraction/backend/internal/application/services"
	"github.com/somos/attraction/backend/internal/domain/providers"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/clients/otp"
	"github.com/somos/attraction/backend/internal/infrastructure/clients/postgres"
	"github.com/somos/attraction/backend/internal/infrastructure/clients/redis"
	"github.com/somos/attraction/backend/internal/infrastructure/clients/typesense"
	"github.com/somos/attraction/backend/internal/infrastructure/observability"
	"github.com/somos/attraction/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	location, err := time.LoadLocation(cfg.Planner.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Planner.Timezone).Msg("unknown planner timezone")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	if err := pgClient.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}
	log.Info().Msg("PostgreSQL client initialized")

	// Redis backs the feedback limits and the event bus. Both degrade
	// gracefully when it is missing.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; feedback limits are per process and event streams are disabled")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("Redis client initialized")
	}

	var placeSearch repositories.PlaceSearchRepository
	typesenseClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("Typesense unavailable; place search is disabled")
	} else {
		if err := typesenseClient.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to init Typesense schema")
		}
		placeSearch = search.NewPlaceSearchAdapter(typesenseClient)
		log.Info().Msg("Typesense client initialized")
	}

	planner, err := otp.NewClient(cfg.Planner.GraphQLURL, time.Duration(cfg.Planner.TimeoutSeconds)*time.Second, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize planner client")
	}

	authenticator, err := middleware.NewAuthenticator(cfg.Auth, cfg.Session)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize authenticator")
	}

	// Adapters
	searchAdapter := database.NewSearchAdapter(pgClient)
	placeAdapter := database.NewFavoritePlaceAdapter(pgClient)
	bookingAdapter := database.NewBookingAdapter(pgClient)
	feedbackAdapter := database.NewFeedbackAdapter(pgClient)

	// Services
	tripService := services.NewTripPlanningService(planner, searchAdapter, eventBus, metrics, location)
	stopService := services.NewStopService(planner, cfg.StopAreas, location)
	sessionService := services.NewSessionLinkService(searchAdapter, eventBus)
	historyService := services.NewSearchHistoryService(searchAdapter, eventBus, metrics)
	placeService := services.NewFavoritePlaceService(placeAdapter, placeSearch)
	bookingService := services.NewBookingService(bookingAdapter, emissions.NewFactorCalculator(nil))
	feedbackService := services.NewFeedbackService(feedbackAdapter, cacheProvider)

	h := routes.Handlers{
		Trip:     handlers.NewTripHandler(tripService, authenticator),
		Stop:     handlers.NewStopHandler(stopService),
		Session:  handlers.NewSessionHandler(sessionService),
		Search:   handlers.NewSearchHandler(historyService),
		Place:    handlers.NewPlaceHandler(placeService),
		Booking:  handlers.NewBookingHandler(bookingService),
		Feedback: handlers.NewFeedbackHandler(feedbackService),
	}
	if eventBus != nil {
		h.SSE = handlers.NewSSEHandler(eventBus, cfg.Auth.AdminUserIDs)
	}

	router := routes.NewRouter(h, authenticator, planner, metrics, cfg.Server.AllowedOrigins)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No write timeout: event streams stay open and plan requests are
		// bounded by the planner timeout.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Closing the bus first ends open event streams so Shutdown can finish.
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
