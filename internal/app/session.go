package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/metinatakli/movie-search/internal/domain"
	"github.com/metinatakli/movie-search/internal/notify"
	"github.com/metinatakli/movie-search/internal/query"
)

type sessionKey string

const (
	SessionKeyGuest    = sessionKey("guest")
	SessionKeyQuery    = sessionKey("query")
	SessionKeyPage     = sessionKey("page")
	SessionKeySelected = sessionKey("selectedMovieId")
)

func (s sessionKey) String() string {
	return string(s)
}

const (
	MsgEmptyQuery    = "Please enter a search term!"
	MsgNoMoviesFound = "No movies found for your request."
)

// searchSession is the live search state of one browser session.
type searchSession struct {
	controller  *query.Controller
	notifier    *notify.Center
	emptyEdge   query.EmptyResultEdge
	unsubscribe func()
}

func (app *Application) newSearchSession() *searchSession {
	s := &searchSession{
		controller: query.NewController(app.fetcher,
			query.WithStaleTime(app.config.Query.StaleTime),
			query.WithCache(app.config.Query.CacheSize, app.config.Query.CacheTime),
			query.WithLogger(app.logger),
		),
		notifier: notify.NewCenter(app.config.Notify.TTL, app.config.Notify.Capacity),
	}

	s.unsubscribe = s.controller.Subscribe(s.settled)

	return s
}

func (s *searchSession) settled(st query.State) {
	// a key change may land between the settle and this call
	if st.Generation < s.controller.State().Generation {
		return
	}

	if s.emptyEdge.Observe(st) {
		s.notifier.Info(MsgNoMoviesFound)
	}
}

func (s *searchSession) Close() {
	s.unsubscribe()
	s.controller.Close()
}

// sessionRegistry maps session tokens to live search sessions. Entries expire
// after idleTimeout without access and are closed on eviction.
type sessionRegistry struct {
	mu         sync.Mutex
	sessions   *expirable.LRU[string, *searchSession]
	newSession func() *searchSession
}

func newSessionRegistry(capacity int, idleTimeout time.Duration, newSession func() *searchSession) *sessionRegistry {
	onEvict := func(_ string, s *searchSession) {
		s.Close()
	}

	return &sessionRegistry{
		sessions:   expirable.NewLRU(capacity, onEvict, idleTimeout),
		newSession: newSession,
	}
}

// Get returns the session for token, creating it when missing. created reports
// whether the session is new and has to be restored from the session store.
func (r *sessionRegistry) Get(token string) (s *searchSession, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions.Get(token)
	if !ok {
		s = r.newSession()
		created = true
	}

	// re-adding refreshes the idle deadline
	r.sessions.Add(token, s)

	return s, created
}

func (r *sessionRegistry) Len() int {
	return r.sessions.Len()
}

func (r *sessionRegistry) Purge() {
	r.sessions.Purge()
}

// searchSession returns the live session of the request. A session that was
// evicted from memory is rebuilt from the query, page and selection kept in the
// session store.
func (app *Application) searchSession(r *http.Request) *searchSession {
	token := app.sessionManager.Token(r.Context())

	s, created := app.sessions.Get(token)
	if created {
		key := app.sessionSearchKey(r.Context())
		if key.Enabled() {
			app.contextGetLogger(r).Debug("restoring search session", "query", key.Query, "page", key.Page)
			s.controller.SetKey(r.Context(), key)
		}
	}

	return s
}

func (app *Application) sessionSearchKey(ctx context.Context) domain.SearchKey {
	return domain.NewSearchKey(
		app.sessionManager.GetString(ctx, SessionKeyQuery.String()),
		app.sessionManager.GetInt(ctx, SessionKeyPage.String()),
	)
}

// search stores key in the session and moves the controller to it. The
// selection is dropped when the query changes.
func (app *Application) search(r *http.Request, s *searchSession, key domain.SearchKey) query.State {
	ctx := r.Context()

	if app.sessionManager.GetString(ctx, SessionKeyQuery.String()) != key.Query {
		app.sessionManager.Remove(ctx, SessionKeySelected.String())
	}

	app.sessionManager.Put(ctx, SessionKeyQuery.String(), key.Query)
	app.sessionManager.Put(ctx, SessionKeyPage.String(), key.Page)

	return s.controller.SetKey(ctx, key)
}

// settledState waits up to the configured render wait for a pending fetch.
func (app *Application) settledState(r *http.Request, s *searchSession) query.State {
	st := s.controller.State()
	if !st.IsFetching() {
		return st
	}

	ctx, cancel := context.WithTimeout(r.Context(), app.config.Query.RenderWait)
	defer cancel()

	return s.controller.Await(ctx)
}

// selectedMovie resolves the stored selection against the displayed results.
func (app *Application) selectedMovie(ctx context.Context, st query.State) (domain.Movie, bool) {
	id := app.sessionManager.GetInt(ctx, SessionKeySelected.String())
	if id == 0 {
		return domain.Movie{}, false
	}

	return st.Data.FindMovie(id)
}
