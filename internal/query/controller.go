// Package query keeps the search state of one user: the active (query, page)
// key, the fetch status for it and a small key-indexed cache of results.
package query

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/metinatakli/movie-search/internal/domain"
)

const (
	DefaultStaleTime = time.Minute
	DefaultCacheTime = 5 * time.Minute
	DefaultCacheSize = 64
)

type entry struct {
	result    *domain.SearchResult
	fetchedAt time.Time
}

type Option func(*Controller)

// WithStaleTime sets how long a cached result is served without a refetch.
func WithStaleTime(d time.Duration) Option {
	return func(c *Controller) {
		c.staleTime = d
	}
}

// WithCache bounds the number of cached keys and how long they are kept.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Controller) {
		c.cacheSize = size
		c.cacheTime = ttl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller drives fetches for a changing key. Each key transition starts a
// new generation; a response is only displayed when its generation is still
// current, so the last key always wins.
type Controller struct {
	fetcher   domain.MovieFetcher
	logger    *slog.Logger
	staleTime time.Duration
	cacheTime time.Duration
	cacheSize int
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelCauseFunc
	cache  *expirable.LRU[domain.SearchKey, entry]

	mu         sync.Mutex
	state      State
	generation uint64
	settled    chan struct{}
	subs       map[int]func(State)
	nextSub    int
	closed     bool
}

func NewController(fetcher domain.MovieFetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:   fetcher,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		staleTime: DefaultStaleTime,
		cacheTime: DefaultCacheTime,
		cacheSize: DefaultCacheSize,
		now:       time.Now,
		subs:      make(map[int]func(State)),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.ctx, c.cancel = context.WithCancelCause(context.Background())
	c.cache = expirable.NewLRU[domain.SearchKey, entry](c.cacheSize, nil, c.cacheTime)
	c.state = State{Status: StatusIdle, UpdatedAt: c.now()}
	c.settled = make(chan struct{})
	close(c.settled)

	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// SetKey moves the controller to key. Moving to the key that is already
// current does nothing unless the last fetch for it failed, in which case it is
// retried. The fetch runs in the background and outlives ctx's cancellation;
// ctx only carries request-scoped values such as the trace.
func (c *Controller) SetKey(ctx context.Context, key domain.SearchKey) State {
	c.mu.Lock()

	if c.closed {
		defer c.mu.Unlock()
		return c.state
	}

	if c.generation > 0 && key == c.state.Key && c.state.Status != StatusError {
		defer c.mu.Unlock()
		return c.state
	}

	c.generation++
	gen := c.generation
	prev := c.state
	now := c.now()

	if prev.IsFetching() {
		// the abandoned generation never settles, release its waiters
		close(c.settled)
	}
	c.settled = make(chan struct{})

	if !key.Enabled() {
		c.state = State{Key: key, Status: StatusIdle, Generation: gen, UpdatedAt: now}
		return c.settleLocked()
	}

	cached, ok := c.cache.Get(key)
	switch {
	case ok && now.Sub(cached.fetchedAt) < c.staleTime:
		c.state = State{Key: key, Status: StatusSuccess, Data: cached.result, Generation: gen, UpdatedAt: now}
		return c.settleLocked()
	case ok:
		c.state = State{Key: key, Status: StatusFetching, Data: cached.result, Generation: gen, UpdatedAt: now}
	case prev.Data != nil:
		c.state = State{Key: key, Status: StatusFetching, Data: prev.Data, IsPlaceholder: true, Generation: gen, UpdatedAt: now}
	default:
		c.state = State{Key: key, Status: StatusLoading, Generation: gen, UpdatedAt: now}
	}

	st := c.state
	c.mu.Unlock()

	c.logger.Debug("fetching movies", "query", key.Query, "page", key.Page, "generation", gen, "status", st.Status)

	fetchCtx, cancel := context.WithCancelCause(context.WithoutCancel(ctx))
	stop := context.AfterFunc(c.ctx, func() {
		cancel(context.Cause(c.ctx))
	})

	go func() {
		defer cancel(nil)
		defer stop()

		result, err := c.fetcher.SearchMovies(fetchCtx, key.Query, key.Page)
		c.complete(gen, key, result, err)
	}()

	return st
}

func (c *Controller) complete(gen uint64, key domain.SearchKey, result *domain.SearchResult, err error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return
	}

	if err == nil {
		c.cache.Add(key, entry{result: result, fetchedAt: c.now()})
	}

	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("discarding stale response", "query", key.Query, "page", key.Page, "generation", gen)
		return
	}

	if err != nil {
		c.logger.Warn("movie search failed", "query", key.Query, "page", key.Page, "error", err)
		c.state = State{Key: key, Status: StatusError, Err: err, Generation: gen, UpdatedAt: c.now()}
	} else {
		c.state = State{Key: key, Status: StatusSuccess, Data: result, Generation: gen, UpdatedAt: c.now()}
	}

	c.settleLocked()
}

// settleLocked releases the lock, notifies subscribers outside of it and then
// wakes the waiters of the current generation, so a waiter always observes the
// effects of the subscribers.
func (c *Controller) settleLocked() State {
	st := c.state
	settled := c.settled

	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
	close(settled)

	return st
}

// Await blocks until the current generation settles or ctx is done and
// returns the state at that point.
func (c *Controller) Await(ctx context.Context) State {
	c.mu.Lock()
	settled := c.settled
	c.mu.Unlock()

	select {
	case <-settled:
	case <-ctx.Done():
	}

	return c.State()
}

// Subscribe registers fn to be called every time the current generation
// settles. The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close cancels in-flight fetches and drops all subscribers. Later calls to
// SetKey are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.cancel(domain.ErrSessionClosed)
	clear(c.subs)

	if c.state.IsFetching() {
		close(c.settled)
	}
}
