package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/shelterbeds/matcheckin/internal/adapters/cache"
	"github.com/shelterbeds/matcheckin/internal/adapters/database"
	"github.com/shelterbeds/matcheckin/internal/adapters/events"
	"github.com/shelterbeds/matcheckin/internal/api/handlers"
	"github.com/shelterbeds/matcheckin/internal/api/middleware"
	"github.com/shelterbeds/matcheckin/internal/api/routes"
	"github.com/shelterbeds/matcheckin/internal/application/services"
	"github.com/shelterbeds/matcheckin/internal/domain/providers"
	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/clients/postgres"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/clients/redis"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/observability"
	"github.com/shelterbeds/matcheckin/pkg/config"
	"github.com/shelterbeds/matcheckin/pkg/secrets"
)

func main() {
	// .env is optional; variables already set win
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("loaded .env")
	}

	vaultCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	if _, err := secrets.ApplyVaultSecrets(vaultCtx, secrets.LoadVaultConfigFromEnv()); err != nil {
		log.Warn().Err(err).Msg("failed to load secrets from Vault")
	}
	cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTEL.Enabled {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
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

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	if err := pgClient.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}

	// Redis is optional: without it facility scopes are read from Postgres
	// on every request and no checkin events are published.
	var (
		redisClient   *redis.Client
		cacheProvider providers.CacheProvider
		eventBus      providers.EventBus
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("continuing without Redis")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient, cfg.OTEL.ServiceName)
			eventBus = events.NewRedisEventBus(redisClient)
			defer eventBus.Close()
		}
	}

	var facilityAdapter repositories.FacilityRepository = database.NewFacilityAdapter(pgClient)
	if cacheProvider != nil {
		facilityAdapter = database.NewCachedFacilityAdapter(facilityAdapter, cacheProvider, cfg.Redis.ScopeTTL)
		log.Info().Int("ttl_seconds", cfg.Redis.ScopeTTL).Msg("facility lookups cached in Redis")
	}
	templateAdapter := database.NewTemplateAdapter(pgClient)
	guestAdapter := database.NewGuestAdapter(pgClient)
	banAdapter := database.NewBanAdapter(pgClient)
	checkinAdapter := database.NewCheckinAdapter(pgClient)
	txManager := database.NewTxManager(pgClient)

	checkinService := services.NewCheckinService(facilityAdapter, templateAdapter, guestAdapter, banAdapter, checkinAdapter, txManager)
	checkinService.SetMetrics(metrics)
	mergeService := services.NewGuestMergeService(facilityAdapter, guestAdapter, checkinAdapter, txManager)
	mergeService.SetMetrics(metrics)
	if eventBus != nil {
		checkinService.SetEventBus(eventBus)
		mergeService.SetEventBus(eventBus)
	}

	deps := map[string]handlers.Pinger{"postgres": pgClient}
	if redisClient != nil {
		deps["redis"] = redisClient
	}

	router := routes.NewRouter(
		handlers.NewCheckinHandler(checkinService),
		handlers.NewGuestHandler(mergeService),
		handlers.NewHealthHandler(deps),
		middleware.NewScopeAuthorizer(database.NewFacilityScopeResolver(facilityAdapter)),
		metrics,
		cfg.Server.AllowedOrigins,
	)

	if cfg.Server.RateLimitRPS > 0 {
		router.SetRateLimiter(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      http.TimeoutHandler(router.SetupRoutes(), cfg.Server.RequestTimeout, `{"error":"request timed out"}`),
		ReadTimeout:  cfg.Server.RequestTimeout,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	log.Info().Msg("server stopped")
}
