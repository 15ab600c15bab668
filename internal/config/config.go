package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port             int           `yaml:"port" env:"PORT" env-default:"3000"`
	Env              string        `yaml:"env" env:"APP_ENV" env-default:"dev"`
	OtelCollectorUrl string        `yaml:"otel_collector_url" env:"OTEL_COLLECTOR_URL"`
	TMDB             TMDBConfig    `yaml:"tmdb"`
	Redis            RedisConfig   `yaml:"redis"`
	Query            QueryConfig   `yaml:"query"`
	Session          SessionConfig `yaml:"session"`
	Notify           NotifyConfig  `yaml:"notify"`
}

type TMDBConfig struct {
	Token   string        `yaml:"token" env:"TMDB_TOKEN"`
	BaseURL string        `yaml:"base_url" env:"TMDB_BASE_URL" env-default:"https://api.themoviedb.org/3"`
	Timeout time.Duration `yaml:"timeout" env:"TMDB_TIMEOUT" env-default:"10s"`
}

// RedisConfig is optional; without a URL sessions stay in memory and search
// results are not shared between sessions.
type RedisConfig struct {
	URL          string        `yaml:"url" env:"REDIS_URL"`
	MaxOpenConns int           `yaml:"max_open_conns" env:"REDIS_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns int           `yaml:"max_idle_conns" env:"REDIS_MAX_IDLE_CONNS" env-default:"10"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time" env:"REDIS_MAX_IDLE_TIME" env-default:"2m"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" env-default:"10m"`
}

type QueryConfig struct {
	StaleTime  time.Duration `yaml:"stale_time" env:"QUERY_STALE_TIME" env-default:"1m"`
	CacheTime  time.Duration `yaml:"cache_time" env:"QUERY_CACHE_TIME" env-default:"5m"`
	CacheSize  int           `yaml:"cache_size" env:"QUERY_CACHE_SIZE" env-default:"64"`
	RenderWait time.Duration `yaml:"render_wait" env:"RENDER_WAIT" env-default:"1500ms"`
}

type SessionConfig struct {
	Capacity    int           `yaml:"capacity" env:"SESSION_CAPACITY" env-default:"10000"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"SESSION_IDLE_TIMEOUT" env-default:"20m"`
}

type NotifyConfig struct {
	TTL      time.Duration `yaml:"ttl" env:"NOTIFY_TTL" env-default:"5s"`
	Capacity int           `yaml:"capacity" env:"NOTIFY_CAPACITY" env-default:"16"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults. The file is only read when CONFIG_PATH is set.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}

	return cfg, nil
}

var validEnvs = map[string]bool{
	"dev":     true,
	"staging": true,
	"prod":    true,
	"test":    true,
}

func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", c.Port))
	}
	if !validEnvs[c.Env] {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Env))
	}
	if c.TMDB.BaseURL == "" {
		errs = append(errs, errors.New("tmdb base url is required"))
	}
	if c.TMDB.Timeout <= 0 {
		errs = append(errs, errors.New("tmdb timeout must be positive"))
	}
	if c.Query.CacheSize < 1 {
		errs = append(errs, errors.New("query cache size must be at least 1"))
	}
	if c.Session.Capacity < 1 {
		errs = append(errs, errors.New("session capacity must be at least 1"))
	}
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, errors.New("session idle timeout must be positive"))
	}

	return errors.Join(errs...)
}
