package integration_test

import (
	"log/slog"
	"os"

	"github.com/metinatakli/movie-search/internal/app"
	"github.com/metinatakli/movie-search/internal/cache"
	"github.com/metinatakli/movie-search/internal/config"
	"github.com/metinatakli/movie-search/internal/tmdb"
	appvalidator "github.com/metinatakli/movie-search/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App   *app.Application
	Redis *redis.Client
}

func newTestApp(cfg config.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient, cfg.Session.IdleTimeout)

	client := tmdb.NewClient(cfg.TMDB.Token, cfg.TMDB.Timeout, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
	fetcher := cache.NewRedisFetcher(client, redisClient, cfg.Redis.CacheTTL, logger)

	application, err := app.NewApp(
		cfg,
		logger,
		redisClient,
		validator,
		sessionManager,
		fetcher,
	)
	if err != nil {
		redisClient.Close()
		return nil, err
	}

	return &TestApp{
		App:   application,
		Redis: redisClient,
	}, nil
}

func (a *TestApp) Close() {
	a.App.Close()
	a.Redis.Close()
}
