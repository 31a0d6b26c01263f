package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TOURGUIDE_PORT", "TOURGUIDE_ENV", "TOURGUIDE_LOG_LEVEL", "TOURGUIDE_DB",
	"TOURGUIDE_TRACKING_INTERVAL", "TOURGUIDE_TRACKER_ENABLED", "TOURGUIDE_TRACKER_CONCURRENCY",
	"TOURGUIDE_REWARD_CONCURRENCY", "TOURGUIDE_PROXIMITY_BUFFER", "TOURGUIDE_POINTS_CACHE_TTL",
	"TOURGUIDE_INTERNAL_USERS", "TOURGUIDE_SIMULATE_LATENCY", "TOURGUIDE_TRIP_PRICER_API_KEY",
	"TOURGUIDE_TRACING_ENABLED", "TOURGUIDE_OTLP_ENDPOINT", "TOURGUIDE_TRACING_SAMPLING_RATE",
}

// clearEnv blanks every variable Load reads; an empty value counts as unset.
func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, errs := Load("")
	require.Empty(t, errs)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultDatabasePath, cfg.DatabasePath)
	assert.Equal(t, 5*time.Minute, cfg.TrackingInterval)
	assert.True(t, cfg.TrackerEnabled)
	assert.Equal(t, 256, cfg.TrackerConcurrency)
	assert.Equal(t, 32, cfg.RewardConcurrency)
	assert.Equal(t, 10.0, cfg.ProximityBufferMiles)
	assert.Equal(t, 10*time.Minute, cfg.PointsCacheTTL)
	assert.Equal(t, 100, cfg.InternalUserCount)
	assert.True(t, cfg.SimulateLatency)
	assert.Equal(t, "test-server-api-key", cfg.TripPricerAPIKey)
	assert.False(t, cfg.TracingEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	// GIVEN: A YAML file and an environment override for one of its keys
	// WHEN: Configuration is loaded
	// THEN: File values apply and the environment wins where both are set

	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9090
database_path: ":memory:"
tracking_interval: 30s
tracker_enabled: false
proximity_buffer_miles: 25.5
internal_user_count: 5
`), 0o600))
	t.Setenv("TOURGUIDE_PORT", "7070")
	t.Setenv("TOURGUIDE_SIMULATE_LATENCY", "off")

	cfg, errs := Load(path)
	require.Empty(t, errs)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DatabasePath)
	assert.Equal(t, 30*time.Second, cfg.TrackingInterval)
	assert.False(t, cfg.TrackerEnabled)
	assert.Equal(t, 25.5, cfg.ProximityBufferMiles)
	assert.Equal(t, 5, cfg.InternalUserCount)
	assert.False(t, cfg.SimulateLatency)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	cfg, errs := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Nil(t, cfg)
	require.Len(t, errs, 1)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{"zero interval", map[string]string{"TOURGUIDE_TRACKING_INTERVAL": "0s"}, ErrInvalidTrackingInterval},
		{"zero buffer", map[string]string{"TOURGUIDE_PROXIMITY_BUFFER": "0"}, ErrInvalidProximityBuffer},
		{"negative buffer", map[string]string{"TOURGUIDE_PROXIMITY_BUFFER": "-3"}, ErrInvalidProximityBuffer},
		{"port out of range", map[string]string{"TOURGUIDE_PORT": "70000"}, ErrInvalidPort},
		{"zero tracker concurrency", map[string]string{"TOURGUIDE_TRACKER_CONCURRENCY": "0"}, ErrInvalidTrackerConcurrency},
		{"negative internal users", map[string]string{"TOURGUIDE_INTERNAL_USERS": "-1"}, ErrInvalidInternalUserCount},
		{"bad log level", map[string]string{"TOURGUIDE_LOG_LEVEL": "loud"}, ErrInvalidLogLevel},
		{"bad sampling rate", map[string]string{"TOURGUIDE_TRACING_SAMPLING_RATE": "1.5"}, ErrInvalidSamplingRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, errs := Load("")
			assert.Contains(t, errs, tt.wantErr)
		})
	}
}

func TestLoad_ParseErrorsAreCollected(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOURGUIDE_PORT", "eighty")
	t.Setenv("TOURGUIDE_TRACKING_INTERVAL", "soon")
	t.Setenv("TOURGUIDE_TRACKER_ENABLED", "maybe")

	cfg, errs := Load("")
	require.NotNil(t, cfg)
	assert.Len(t, errs, 3)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultTrackingInterval, cfg.TrackingInterval)
}
