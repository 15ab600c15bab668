package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/movie-search/api"
	"github.com/metinatakli/movie-search/internal/cache"
	"github.com/metinatakli/movie-search/internal/config"
	"github.com/metinatakli/movie-search/internal/domain"
	"github.com/metinatakli/movie-search/internal/tmdb"
	appvalidator "github.com/metinatakli/movie-search/internal/validator"
	"github.com/metinatakli/movie-search/internal/vcs"
	"github.com/metinatakli/movie-search/ui"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "movie-search-web"

var (
	version = vcs.Version()
)

type Application struct {
	config         config.Config
	logger         *slog.Logger
	redis          redis.UniversalClient
	validator      *validator.Validate
	sessionManager *scs.SessionManager
	templateCache  map[string]*template.Template
	apiRouter      routers.Router

	fetcher  domain.MovieFetcher
	sessions *sessionRegistry
}

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flag.IntVar(&cfg.Port, "port", cfg.Port, "server port")
	flag.StringVar(&cfg.Env, "env", cfg.Env, "Environment (dev|staging|prod)")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	app := &Application{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	logger := app.logger
	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(logger.Handler(), otelslog.NewHandler(serviceName)))
	}

	if cfg.TMDB.Token == "" {
		logger.Warn("TMDB_TOKEN is not set, searches will be rejected by the provider")
	}

	var fetcher domain.MovieFetcher = tmdb.NewClient(cfg.TMDB.Token, cfg.TMDB.Timeout, tmdb.WithBaseURL(cfg.TMDB.BaseURL))

	var (
		redisClient    *redis.Client
		sessionManager *scs.SessionManager
	)

	if cfg.Redis.URL != "" {
		redisClient, err = NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		fetcher = cache.NewRedisFetcher(fetcher, redisClient, cfg.Redis.CacheTTL, logger)
		sessionManager = NewSessionManager(redisClient, cfg.Session.IdleTimeout)
	} else {
		logger.Info("REDIS_URL not set, using in-memory sessions without a shared result cache")
		sessionManager = NewSessionManager(nil, cfg.Session.IdleTimeout)
	}

	app, err = NewApp(cfg, logger, redisClient, appvalidator.NewValidator(), sessionManager, fetcher)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.run()
}

// NewApp wires an Application. redisClient may be nil when sessions are kept in
// memory.
func NewApp(
	cfg config.Config,
	logger *slog.Logger,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	sessionManager *scs.SessionManager,
	fetcher domain.MovieFetcher,
) (*Application, error) {
	templateCache, err := newTemplateCache()
	if err != nil {
		return nil, err
	}

	apiRouter, err := newAPIRouter()
	if err != nil {
		return nil, err
	}

	app := &Application{
		config:         cfg,
		logger:         logger,
		validator:      validator,
		sessionManager: sessionManager,
		templateCache:  templateCache,
		apiRouter:      apiRouter,
		fetcher:        fetcher,
	}

	// a typed nil client must not end up in the interface
	if redisClient != nil {
		app.redis = redisClient
	}

	app.sessions = newSessionRegistry(cfg.Session.Capacity, cfg.Session.IdleTimeout, app.newSearchSession)

	err = app.registerSessionGauge()
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Close releases every live search session.
func (app *Application) Close() {
	app.sessions.Purge()
}

func NewSessionManager(client *redis.Client, idleTimeout time.Duration) *scs.SessionManager {
	sessionManager := scs.New()

	if client != nil {
		sessionManager.Store = goredisstore.New(client)
	}
	sessionManager.IdleTimeout = idleTimeout
	sessionManager.Cookie.Name = "session_id"
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	return sessionManager
}

func NewRedisClient(cfg config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb)); err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func newAPIRouter() (routers.Router, error) {
	doc, err := api.GetSwagger()
	if err != nil {
		return nil, err
	}

	return legacy.NewRouter(doc)
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(app.logRequest)
	r.Use(app.recoverPanic)

	r.Get("/healthz", app.GetHealth)
	r.Handle("/static/*", http.FileServerFS(ui.Files))

	r.With(app.validateAPIRequest).Get("/api/v1/movies", app.SearchMoviesHandler)

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)
		r.Use(app.ensureSearchSession)

		r.Get("/", app.home)
		r.Post("/search", app.submitSearch)
		r.Post("/page", app.changePage)
		r.Post("/movies/{movieId}/select", app.selectMovie)
		r.Post("/movies/selection/delete", app.clearSelection)

		r.With(app.validateAPIRequest).Route("/api/v1/state", func(r chi.Router) {
			r.Get("/", app.GetStateHandler)
			r.Post("/search", app.SubmitSearchHandler)
			r.Post("/page", app.ChangePageHandler)
			r.Put("/selection", app.SelectMovieHandler)
			r.Delete("/selection", app.ClearSelectionHandler)
		})
	})

	return r
}
