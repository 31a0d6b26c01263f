// Package config provides configuration loading and validation for the tour guide server.
// It uses koanf to merge environment variables with optional YAML file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the tour guide server.
type Config struct {
	// Server settings
	Port         int    `koanf:"port"`
	Env          string `koanf:"env"`
	LogLevel     string `koanf:"log_level"`
	DatabasePath string `koanf:"database_path"`

	// Tracker
	TrackingInterval   time.Duration `koanf:"tracking_interval"`
	TrackerEnabled     bool          `koanf:"tracker_enabled"`
	TrackerConcurrency int           `koanf:"tracker_concurrency"`

	// Rewards
	RewardConcurrency    int           `koanf:"reward_concurrency"`
	ProximityBufferMiles float64       `koanf:"proximity_buffer_miles"`
	PointsCacheTTL       time.Duration `koanf:"points_cache_ttl"`

	// Simulated upstreams
	InternalUserCount int    `koanf:"internal_user_count"`
	SimulateLatency   bool   `koanf:"simulate_latency"`
	TripPricerAPIKey  string `koanf:"trip_pricer_api_key"`

	// Tracing
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	OTLPEndpoint        string  `koanf:"otlp_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
}

// Configuration validation errors.
var (
	ErrInvalidPort               = errors.New("TOURGUIDE_PORT must be between 1 and 65535")
	ErrMissingDatabasePath       = errors.New("TOURGUIDE_DB is required")
	ErrInvalidTrackingInterval   = errors.New("TOURGUIDE_TRACKING_INTERVAL must be greater than 0")
	ErrInvalidTrackerConcurrency = errors.New("TOURGUIDE_TRACKER_CONCURRENCY must be greater than 0")
	ErrInvalidRewardConcurrency  = errors.New("TOURGUIDE_REWARD_CONCURRENCY must be greater than 0")
	ErrInvalidProximityBuffer    = errors.New("TOURGUIDE_PROXIMITY_BUFFER must be greater than 0")
	ErrInvalidPointsCacheTTL     = errors.New("TOURGUIDE_POINTS_CACHE_TTL must not be negative")
	ErrInvalidInternalUserCount  = errors.New("TOURGUIDE_INTERNAL_USERS must not be negative")
	ErrMissingTripPricerAPIKey   = errors.New("TOURGUIDE_TRIP_PRICER_API_KEY is required")
	ErrInvalidSamplingRate       = errors.New("TOURGUIDE_TRACING_SAMPLING_RATE must be between 0 and 1")
	ErrMissingOTLPEndpoint       = errors.New("TOURGUIDE_OTLP_ENDPOINT is required when tracing is enabled")
	ErrInvalidLogLevel           = errors.New("TOURGUIDE_LOG_LEVEL must be one of debug, info, warn, error")
)

// Default values.
const (
	DefaultPort                 = 8080
	DefaultEnv                  = "development"
	DefaultLogLevel             = "info"
	DefaultDatabasePath         = "tourguide.db"
	DefaultTrackingInterval     = 5 * time.Minute
	DefaultTrackerEnabled       = true
	DefaultTrackerConcurrency   = 256
	DefaultRewardConcurrency    = 32
	DefaultProximityBufferMiles = 10.0
	DefaultPointsCacheTTL       = 10 * time.Minute
	DefaultInternalUserCount    = 100
	DefaultSimulateLatency      = true
	DefaultTripPricerAPIKey     = "test-server-api-key"
	DefaultOTLPEndpoint         = "localhost:4318"
	DefaultTracingSamplingRate  = 1.0
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	l := &loader{k: k}
	cfg := &Config{
		Port:         l.int("TOURGUIDE_PORT", "port", DefaultPort),
		Env:          l.string("TOURGUIDE_ENV", "env", DefaultEnv),
		LogLevel:     strings.ToLower(l.string("TOURGUIDE_LOG_LEVEL", "log_level", DefaultLogLevel)),
		DatabasePath: l.string("TOURGUIDE_DB", "database_path", DefaultDatabasePath),

		TrackingInterval:   l.duration("TOURGUIDE_TRACKING_INTERVAL", "tracking_interval", DefaultTrackingInterval),
		TrackerEnabled:     l.bool("TOURGUIDE_TRACKER_ENABLED", "tracker_enabled", DefaultTrackerEnabled),
		TrackerConcurrency: l.int("TOURGUIDE_TRACKER_CONCURRENCY", "tracker_concurrency", DefaultTrackerConcurrency),

		RewardConcurrency:    l.int("TOURGUIDE_REWARD_CONCURRENCY", "reward_concurrency", DefaultRewardConcurrency),
		ProximityBufferMiles: l.float("TOURGUIDE_PROXIMITY_BUFFER", "proximity_buffer_miles", DefaultProximityBufferMiles),
		PointsCacheTTL:       l.duration("TOURGUIDE_POINTS_CACHE_TTL", "points_cache_ttl", DefaultPointsCacheTTL),

		InternalUserCount: l.int("TOURGUIDE_INTERNAL_USERS", "internal_user_count", DefaultInternalUserCount),
		SimulateLatency:   l.bool("TOURGUIDE_SIMULATE_LATENCY", "simulate_latency", DefaultSimulateLatency),
		TripPricerAPIKey:  l.string("TOURGUIDE_TRIP_PRICER_API_KEY", "trip_pricer_api_key", DefaultTripPricerAPIKey),

		TracingEnabled:      l.bool("TOURGUIDE_TRACING_ENABLED", "tracing_enabled", false),
		OTLPEndpoint:        l.string("TOURGUIDE_OTLP_ENDPOINT", "otlp_endpoint", DefaultOTLPEndpoint),
		TracingSamplingRate: l.float("TOURGUIDE_TRACING_SAMPLING_RATE", "tracing_sampling_rate", DefaultTracingSamplingRate),
	}

	// Validate and collect errors
	errs := append(l.errs, cfg.Validate()...)
	return cfg, errs
}

// Validate checks ranges and required values.
func (c *Config) Validate() []error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, ErrInvalidPort)
	}
	if c.DatabasePath == "" {
		errs = append(errs, ErrMissingDatabasePath)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ErrInvalidLogLevel)
	}
	if c.TrackingInterval <= 0 {
		errs = append(errs, ErrInvalidTrackingInterval)
	}
	if c.TrackerConcurrency <= 0 {
		errs = append(errs, ErrInvalidTrackerConcurrency)
	}
	if c.RewardConcurrency <= 0 {
		errs = append(errs, ErrInvalidRewardConcurrency)
	}
	if c.ProximityBufferMiles <= 0 {
		errs = append(errs, ErrInvalidProximityBuffer)
	}
	if c.PointsCacheTTL < 0 {
		errs = append(errs, ErrInvalidPointsCacheTTL)
	}
	if c.InternalUserCount < 0 {
		errs = append(errs, ErrInvalidInternalUserCount)
	}
	if c.TripPricerAPIKey == "" {
		errs = append(errs, ErrMissingTripPricerAPIKey)
	}
	if c.TracingSamplingRate < 0 || c.TracingSamplingRate > 1 {
		errs = append(errs, ErrInvalidSamplingRate)
	}
	if c.TracingEnabled && c.OTLPEndpoint == "" {
		errs = append(errs, ErrMissingOTLPEndpoint)
	}

	return errs
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// =============================================================================
// ENV > FILE > DEFAULT LOOKUP
// =============================================================================

// loader resolves each key from the environment, then the file, then the
// default, collecting parse errors along the way.
type loader struct {
	k    *koanf.Koanf
	errs []error
}

func (l *loader) string(envKey, key, def string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if val := l.k.String(key); val != "" {
		return val
	}
	return def
}

func (l *loader) int(envKey, key string, def int) int {
	if val := os.Getenv(envKey); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			l.errs = append(l.errs, fmt.Errorf("%s must be a valid integer: %w", envKey, err))
			return def
		}
		return n
	}
	if l.k.Exists(key) {
		return l.k.Int(key)
	}
	return def
}

func (l *loader) float(envKey, key string, def float64) float64 {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			l.errs = append(l.errs, fmt.Errorf("%s must be a valid number: %w", envKey, err))
			return def
		}
		return f
	}
	if l.k.Exists(key) {
		return l.k.Float64(key)
	}
	return def
}

func (l *loader) bool(envKey, key string, def bool) bool {
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		default:
			l.errs = append(l.errs, fmt.Errorf("%s must be a boolean, got %q", envKey, val))
			return def
		}
	}
	if l.k.Exists(key) {
		return l.k.Bool(key)
	}
	return def
}

func (l *loader) duration(envKey, key string, def time.Duration) time.Duration {
	if val := os.Getenv(envKey); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			l.errs = append(l.errs, fmt.Errorf("%s must be a duration: %w", envKey, err))
			return def
		}
		return d
	}
	if l.k.Exists(key) {
		return l.k.Duration(key)
	}
	return def
}
