package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flag-quiz-service/internal/app"
	"flag-quiz-service/internal/config"
	"flag-quiz-service/internal/domain"
	"flag-quiz-service/internal/infra/memory"
	pgloader "flag-quiz-service/internal/infra/postgres"
	redisstore "flag-quiz-service/internal/infra/redis"
	transport "flag-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, *port)
		},
	}
}

func runServer(ctx context.Context, cfg config.Config, portFlag string) error {
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(domain.DefaultCatalog())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgloader.NewCatalogLoader(pool)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	var store app.SessionRepository
	if redisClient != nil {
		catalogs = redisstore.NewCatalogRepository(redisClient, loader, catalogTTL)
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
		store = memory.NewSessionStore()
	}

	opts := []app.Option{app.WithQuestionsPerGame(cfg.Game.QuestionsPerGame)}
	if cfg.Game.Seed != 0 {
		opts = append(opts, app.WithSeed(cfg.Game.Seed))
	}
	service := app.NewGameService(store, catalogs, opts...)

	// Fail fast on a bad catalog instead of on the first player's join.
	if _, err := catalogs.GetCatalog(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(service),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Bool("redis", redisClient != nil).Bool("postgres", cfg.Postgres.URL != "").Msg("starting flag quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
