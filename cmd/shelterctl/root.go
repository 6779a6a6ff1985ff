package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shelterbeds/matcheckin/internal/adapters/database"
	"github.com/shelterbeds/matcheckin/internal/adapters/events"
	"github.com/shelterbeds/matcheckin/internal/application/services"
	"github.com/shelterbeds/matcheckin/internal/domain/providers"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/clients/postgres"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/clients/redis"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/observability"
	"github.com/shelterbeds/matcheckin/pkg/config"
	"github.com/shelterbeds/matcheckin/pkg/secrets"
)

var (
	outputJSON bool
	logLevel   string
	envFile    string
)

// app holds the clients opened for a single command invocation
type app struct {
	cfg   *config.Config
	pg    *postgres.Client
	redis *redis.Client
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "shelterctl",
		Short:        "Administer shelter mat checkins",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before configuration, if present")

	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(seedCmd())
	cmd.AddCommand(generateCmd())
	cmd.AddCommand(mergeGuestsCmd())
	cmd.AddCommand(watchCmd())
	return cmd
}

// openApp loads configuration and connects to Postgres. Redis is only
// dialled when withRedis is set and a host is configured.
func openApp(ctx context.Context, withRedis bool) (*app, error) {
	_ = godotenv.Load(envFile)
	if _, err := secrets.ApplyVaultSecrets(ctx, secrets.LoadVaultConfigFromEnv()); err != nil {
		return nil, fmt.Errorf("load Vault secrets: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	observability.InitLogger("shelterctl", cfg.Env, level)

	pg, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, pg: pg}

	if withRedis && cfg.Redis.Enabled() {
		a.redis, err = redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			pg.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close Redis client")
		}
	}
	if err := a.pg.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close PostgreSQL client")
	}
}

// eventBus returns a Redis-backed bus, or nil when Redis is not configured
func (a *app) eventBus() providers.EventBus {
	if a.redis == nil {
		return nil
	}
	return events.NewRedisEventBus(a.redis)
}

func (a *app) checkinService(bus providers.EventBus) *services.CheckinService {
	svc := services.NewCheckinService(
		database.NewFacilityAdapter(a.pg),
		database.NewTemplateAdapter(a.pg),
		database.NewGuestAdapter(a.pg),
		database.NewBanAdapter(a.pg),
		database.NewCheckinAdapter(a.pg),
		database.NewTxManager(a.pg),
	)
	if bus != nil {
		svc.SetEventBus(bus)
	}
	return svc
}

func (a *app) mergeService(bus providers.EventBus) *services.GuestMergeService {
	svc := services.NewGuestMergeService(
		database.NewFacilityAdapter(a.pg),
		database.NewGuestAdapter(a.pg),
		database.NewCheckinAdapter(a.pg),
		database.NewTxManager(a.pg),
	)
	if bus != nil {
		svc.SetEventBus(bus)
	}
	return svc
}
