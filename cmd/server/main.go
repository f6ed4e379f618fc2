// @title                       vidtube API
// @version                     1.0
// @description                 Video sharing backend: accounts, sessions, videos, comments, playlists, tweets, likes and subscriptions.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidtube/backend/internal/api"
	"github.com/vidtube/backend/internal/api/handler"
	"github.com/vidtube/backend/internal/api/middleware"
	"github.com/vidtube/backend/internal/core/service"
	mongodb "github.com/vidtube/backend/internal/infrastructure/db/mongo"
	redisdb "github.com/vidtube/backend/internal/infrastructure/db/redis"
	"github.com/vidtube/backend/internal/infrastructure/media"
	"github.com/vidtube/backend/internal/infrastructure/queue"
	"github.com/vidtube/backend/internal/pkg/config"
	"github.com/vidtube/backend/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "vidtube",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "vidtube",
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	store, err := media.NewS3Store(ctx, media.Config{
		Bucket:        cfg.Media.Bucket,
		Region:        cfg.Media.Region,
		Endpoint:      cfg.Media.Endpoint,
		PublicBaseURL: cfg.Media.PublicBaseURL,
	})
	if err != nil {
		return err
	}

	// The janitor outlives the signal context so it can drain after the
	// HTTP server stops accepting requests.
	janitor := queue.NewJanitor(cfg.Media.CleanupWorkers, store, log)
	janitor.Start(context.Background())
	defer janitor.Stop()

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	videos := mongodb.NewVideoRepository(db)
	comments := mongodb.NewCommentRepository(db)
	playlists := mongodb.NewPlaylistRepository(db)
	tweets := mongodb.NewTweetRepository(db)
	likes := mongodb.NewLikeRepository(db)
	subs := mongodb.NewSubscriptionRepository(db)

	// --- Services ---
	tokens := service.NewTokenService(users, service.TokenConfig{
		AccessSecret:  cfg.Auth.AccessTokenSecret,
		AccessTTL:     cfg.Auth.AccessTokenTTL,
		RefreshSecret: cfg.Auth.RefreshTokenSecret,
		RefreshTTL:    cfg.Auth.RefreshTokenTTL,
	}, log)

	e := api.NewRouter(api.Deps{
		Services: api.Services{
			Users:         service.NewUserService(users, videos, tokens, store, janitor, log),
			Videos:        service.NewVideoService(videos, comments, store, janitor, log),
			Comments:      service.NewCommentService(comments, videos, log),
			Playlists:     service.NewPlaylistService(playlists, videos, log),
			Tweets:        service.NewTweetService(tweets, log),
			Likes:         service.NewLikeService(likes, videos, comments, tweets, log),
			Subscriptions: service.NewSubscriptionService(subs, users, log),
		},
		Tokens:        tokens,
		UserLoader:    users,
		LoginThrottle: redisdb.NewLoginThrottle(rdb, cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow),
		Limiter:       middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute),
		Checks: []handler.DependencyCheck{
			{Name: "mongodb", Check: func(ctx context.Context) error { return client.Ping(ctx, nil) }},
			{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
		Cookies:     handler.CookiePolicy{Secure: cfg.Auth.CookieSecure},
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Log:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}
