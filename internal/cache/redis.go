// Package cache provides a Redis read-through layer in front of a movie fetcher.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/metinatakli/movie-search/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 10 * time.Minute

var (
	hitAttr  = metric.WithAttributes(attribute.String("result", "hit"))
	missAttr = metric.WithAttributes(attribute.String("result", "miss"))
)

// RedisFetcher serves search results from Redis and falls through to the
// wrapped fetcher on a miss. Failed fetches are never cached. Concurrent
// misses for the same key share one upstream call.
type RedisFetcher struct {
	next    domain.MovieFetcher
	redis   redis.UniversalClient
	ttl     time.Duration
	logger  *slog.Logger
	group   singleflight.Group
	lookups metric.Int64Counter
}

func NewRedisFetcher(next domain.MovieFetcher, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisFetcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	lookups, err := otel.Meter("github.com/metinatakli/movie-search/internal/cache").Int64Counter(
		"movie_search.cache.lookups",
		metric.WithDescription("Search result cache lookups by outcome"),
	)
	if err != nil {
		logger.Warn("failed to create cache lookup counter", "error", err)
	}

	return &RedisFetcher{
		next:    next,
		redis:   client,
		ttl:     ttl,
		logger:  logger,
		lookups: lookups,
	}
}

func (f *RedisFetcher) SearchMovies(ctx context.Context, query string, page int) (*domain.SearchResult, error) {
	key := domain.NewSearchKey(query, page).String()

	cached, err := f.get(ctx, key)
	if err != nil {
		f.logger.Warn("failed to read search result from redis", "key", key, "error", err)
	}
	if cached != nil {
		f.count(ctx, hitAttr)
		return cached, nil
	}

	f.count(ctx, missAttr)

	// the shared call outlives the caller that started it; each caller only
	// stops waiting on its own context
	ch := f.group.DoChan(key, func() (any, error) {
		flightCtx := context.WithoutCancel(ctx)

		result, err := f.next.SearchMovies(flightCtx, query, page)
		if err != nil {
			return nil, err
		}

		f.set(flightCtx, key, result)

		return result, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.SearchResult), nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

func (f *RedisFetcher) get(ctx context.Context, key string) (*domain.SearchResult, error) {
	data, err := f.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var result domain.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (f *RedisFetcher) set(ctx context.Context, key string, result *domain.SearchResult) {
	data, err := json.Marshal(result)
	if err != nil {
		f.logger.Error("failed to marshal search result", "key", key, "error", err)
		return
	}

	if err := f.redis.Set(ctx, key, data, f.ttl).Err(); err != nil {
		f.logger.Warn("failed to write search result to redis", "key", key, "error", err)
	}
}

func (f *RedisFetcher) count(ctx context.Context, attrs metric.AddOption) {
	if f.lookups != nil {
		f.lookups.Add(ctx, 1, attrs)
	}
}
