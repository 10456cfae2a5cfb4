package cli

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"classctf-service/internal/app"
	"classctf-service/internal/config"
	"classctf-service/internal/infra/memory"
	pgstore "classctf-service/internal/infra/postgres"
	redisinfra "classctf-service/internal/infra/redis"
	"classctf-service/internal/infra/storage"
	transport "classctf-service/internal/transport/http"
)

// Submission attempt quota per team.
const (
	submissionLimit  = 10
	submissionWindow = time.Minute
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&logrus.JSONFormatter{})

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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

	// Persistence: postgres when configured, in-memory otherwise.
	var (
		games       app.GameStore
		challenges  app.ChallengeStore
		teams       app.TeamStore
		submissions app.SubmissionStore
		reflections app.ReflectionStore
		library     app.LibraryStore
		profiles    app.ProfileStore
		stats       app.StatsReader
		loader      memory.ChallengeLoader
	)
	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		store := pgstore.NewStore(db)
		games, challenges, teams = store, store, store
		submissions, reflections = store, store
		library, profiles = store, store
		loader = store

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		stats = pgstore.NewStatsReader(pool)
	} else {
		store := memory.NewStore()
		games, challenges, teams = store, store, store
		submissions, reflections = store, store
		library, profiles = store, store
		stats = store
		loader = store
		log.Warn("postgres url not set, running with in-memory storage")
	}

	var limiter app.RateLimiter
	if redisClient != nil {
		limiter = redisinfra.NewRateLimiter(redisClient, submissionLimit, submissionWindow)
	} else {
		limiter = memory.NewRateLimiter(submissionLimit, submissionWindow)
	}

	var feed app.Feed
	if redisClient != nil {
		feed = redisinfra.NewLeaderboardFeed(redisClient, log)
	}
	broadcaster := app.NewBroadcaster(feed, log)

	cacheTTL := config.TTLDuration(cfg.Cache.ChallengeTTL, 5*time.Minute)
	cache := memory.NewChallengeCache(loader, cacheTTL)

	images, err := storage.NewLocalImageStore(cfg.Uploads.Dir, cfg.Uploads.BaseURL)
	if err != nil {
		return err
	}

	playSvc := app.NewPlayService(games, challenges, teams, submissions, reflections, limiter, cache, broadcaster, log)
	gameSvc := app.NewGameService(games, challenges, cache)
	librarySvc := app.NewLibraryService(library, games, challenges, profiles, log)
	adminSvc := app.NewAdminService(profiles, stats)

	api := transport.NewAPI(transport.Deps{
		Play:        playSvc,
		Games:       gameSvc,
		Library:     librarySvc,
		Admin:       adminSvc,
		Reflections: reflections,
		Profiles:    profiles,
		Images:      images,
		JWTSecret:   cfg.Auth.JWTSecret,
		Log:         log,
	})

	mux := http.NewServeMux()
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(images.Dir()))))
	mux.Handle("/", api.Handler())

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting classctf service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
