package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"vlogapp/api/internal/cache"
	"vlogapp/api/internal/config"
	"vlogapp/api/internal/database"
	"vlogapp/api/internal/handlers"
	"vlogapp/api/internal/ids"
	"vlogapp/api/internal/jobs"
	"vlogapp/api/internal/log"
	"vlogapp/api/internal/memstore"
	"vlogapp/api/internal/models"
	"vlogapp/api/internal/repository"
	"vlogapp/api/internal/server"
	"vlogapp/api/internal/service"
	"vlogapp/api/internal/storage"
	"vlogapp/api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	if redisClient == nil {
		logger.Info().Msg("redis not configured, cache disabled")
	}

	blobs, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	handlerSet := handlers.NewHandlerSet(logger, db, redisClient, blobs, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	resetService := service.NewResetService(db.Users(), db.ResetTokens(), redisClient, cfg, logger)
	scheduler := jobs.NewScheduler(resetService, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, db, redisClient)
}

// openStore picks the backend once at startup: Postgres when a DSN is
// configured, the in-memory demo store otherwise.
func openStore(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) (store.Store, error) {
	if cfg.DemoMode() {
		logger.Warn().Msg("no postgres dsn configured, running in-memory demo store")
		mem := memstore.New()
		categories := make([]models.Category, 0, len(repository.DefaultCategories))
		for _, name := range repository.DefaultCategories {
			categories = append(categories, models.Category{ID: ids.New(), Name: name})
		}
		mem.SeedCategories(categories)
		return mem, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if err := repository.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return repository.New(pool), nil
}

func openBlobStore(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) (service.BlobStore, error) {
	if cfg.Storage.Endpoint == "" {
		logger.Warn().Msg("no storage endpoint configured, uploads will be discarded")
		return storage.NewDiscardStore(cfg.HTTP.PublicURL), nil
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	if err := objectStore.EnsureBuckets(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure buckets failed")
	}
	return objectStore, nil
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db store.Store, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()
	db.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
