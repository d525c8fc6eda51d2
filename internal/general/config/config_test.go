package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
database:
  user: fleet
  password: fleet
  database: fleet_dispatch
rabbitmq:
  user: guest
  password: guest
`

func TestLoadFromFile(t *testing.T) {
	t.Run("defaults fill the gaps", func(t *testing.T) {
		cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
		require.NoError(t, err)

		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 3000, cfg.Services.DispatchServicePort)
		assert.Equal(t, 5, cfg.Dispatch.BookingThreshold)
		assert.Equal(t, 5*time.Minute, cfg.ConfirmationTTL())
		assert.Equal(t, time.Minute, cfg.TickInterval())
		assert.Equal(t, 2*time.Hour, cfg.TripDuration())
		assert.Equal(t, 10*time.Second, cfg.ClassifierTimeout())
		assert.NotEmpty(t, cfg.JWT.SecretKey, "a random secret is generated when none is set")
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`
dispatch:
  booking_threshold: 12
  confirmation_ttl_seconds: 60
updater:
  tick_interval_seconds: 5
  trip_duration_minutes: 45
`))
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.Dispatch.BookingThreshold)
		assert.Equal(t, time.Minute, cfg.ConfirmationTTL())
		assert.Equal(t, 5*time.Second, cfg.TickInterval())
		assert.Equal(t, 45*time.Minute, cfg.TripDuration())
	})

	t.Run("missing credentials fail validation", func(t *testing.T) {
		_, err := LoadFromFile(writeConfig(t, `
database:
  user: fleet
rabbitmq:
  user: guest
  password: guest
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required")
	})

	t.Run("bad yaml fails to parse", func(t *testing.T) {
		_, err := LoadFromFile(writeConfig(t, "database: [not: a: mapping"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
