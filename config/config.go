// Package config loads runtime settings from the environment (and an optional
// .env file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

const (
	DefaultPort              = 3000
	DefaultDatabasePath      = "./data/cinelist.db"
	DefaultProviderBaseURL   = "http://www.omdbapi.com"
	DefaultProviderTimeout   = 5 * time.Second
	DefaultRetryAttempts     = 3
	DefaultRetryDelay        = time.Second
	DefaultCacheTTL          = 5 * time.Minute
	DefaultTokenTTL          = 24 * time.Hour
	DefaultAuthRatePerMinute = 10

	DefaultRecommendationWorkers = 4
)

// ProviderConfig configures the metadata provider client.
type ProviderConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	CacheTTL          time.Duration
}

// AuthConfig configures token issuance and login throttling.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	RatePerMinute int
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Config is the full runtime configuration.
type Config struct {
	Env                    string
	Port                   int
	DatabasePath           string
	Provider               ProviderConfig
	Auth                   AuthConfig
	Log                    LogConfig
	CORSAllowedOrigins     []string
	StaticDir              string
	PersistRecommendations bool
	RecommendationWorkers  int
}

// IsDevelopment reports whether detailed error messages may be exposed.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	return FromLookup(os.LookupEnv)
}

// LoadDotEnv copies variables from a .env file in the working directory into
// the environment. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// FromLookup builds a Config from a variable lookup function and validates it.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg, err := Parse(lookup)
	if err = multierr.Append(err, cfg.Validate()); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse builds a Config from a variable lookup function. It reports malformed
// values only; callers pick the validation they need.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	r := reader{lookup: lookup}

	cfg := Config{
		Env:          r.str("APP_ENV", "production"),
		Port:         r.integer("PORT", DefaultPort),
		DatabasePath: r.str("DATABASE_PATH", DefaultDatabasePath),
		Provider: ProviderConfig{
			BaseURL:           strings.TrimRight(r.str("OMDB_BASE_URL", DefaultProviderBaseURL), "/"),
			APIKey:            r.str("OMDB_API_KEY", ""),
			Timeout:           r.duration("OMDB_TIMEOUT", DefaultProviderTimeout),
			RetryAttempts:     r.integer("OMDB_RETRY_ATTEMPTS", DefaultRetryAttempts),
			RetryDelay:        r.duration("OMDB_RETRY_DELAY", DefaultRetryDelay),
			RequestsPerSecond: r.float("OMDB_REQUESTS_PER_SECOND", 0),
			CacheTTL:          r.duration("CACHE_TTL", DefaultCacheTTL),
		},
		Auth: AuthConfig{
			JWTSecret:     r.str("JWT_SECRET", ""),
			TokenTTL:      r.duration("JWT_EXPIRES_IN", DefaultTokenTTL),
			RatePerMinute: r.integer("AUTH_RATE_PER_MINUTE", DefaultAuthRatePerMinute),
		},
		Log: LogConfig{
			Level:      r.str("LOG_LEVEL", "info"),
			Format:     r.str("LOG_FORMAT", "text"),
			File:       r.str("LOG_FILE", ""),
			MaxSizeMB:  r.integer("LOG_MAX_SIZE_MB", 50),
			MaxBackups: r.integer("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: r.integer("LOG_MAX_AGE_DAYS", 28),
		},
		CORSAllowedOrigins:     r.list("CORS_ALLOWED_ORIGINS"),
		StaticDir:              r.str("STATIC_DIR", ""),
		PersistRecommendations: r.boolean("RECOMMENDATIONS_PERSIST", false),
		RecommendationWorkers:  r.integer("RECOMMENDATIONS_MAX_WORKERS", DefaultRecommendationWorkers),
	}
	return cfg, r.err
}

// Validate reports every missing or out-of-range setting the server needs.
func (c Config) Validate() error {
	err := c.ValidateProvider()
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		err = multierr.Append(err, errors.New("JWT_SECRET is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.Auth.TokenTTL <= 0 {
		err = multierr.Append(err, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if c.RecommendationWorkers < 1 {
		err = multierr.Append(err, errors.New("RECOMMENDATIONS_MAX_WORKERS must be at least 1"))
	}
	return err
}

// ValidateProvider checks only the metadata provider settings, for tools that
// talk to the provider without serving HTTP.
func (c Config) ValidateProvider() error {
	var err error
	if strings.TrimSpace(c.Provider.APIKey) == "" {
		err = multierr.Append(err, errors.New("OMDB_API_KEY is required"))
	}
	if c.Provider.RetryAttempts < 0 {
		err = multierr.Append(err, errors.New("OMDB_RETRY_ATTEMPTS must not be negative"))
	}
	if c.Provider.Timeout <= 0 {
		err = multierr.Append(err, errors.New("OMDB_TIMEOUT must be positive"))
	}
	return err
}

type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *reader) str(key, def string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return def
}

func (r *reader) integer(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return f
}

func (r *reader) boolean(key string, def bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

// duration accepts Go durations ("1500ms", "24h") or a bare number of milliseconds.
func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (r *reader) list(key string) []string {
	v, ok := r.raw(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
