package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAX_PLACES", "")
	t.Setenv("WAIT_TIMEOUT_MS", "")
	t.Setenv("REVIEW_FORMAT", "")

	cfg := Load()
	assert.Equal(t, 10, cfg.MaxPlaces)
	assert.Equal(t, 100, cfg.ReviewCap)
	assert.Equal(t, 15*time.Second, cfg.WaitTimeout)
	assert.Equal(t, "ko", cfg.Language)
	assert.Equal(t, "csv", cfg.ReviewFormat)
	assert.False(t, cfg.PostgresEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_PLACES", "3")
	t.Setenv("POLL_INTERVAL_MS", "50")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("HEADLESS", "not-a-bool")

	cfg := Load()
	assert.Equal(t, 3, cfg.MaxPlaces)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
	assert.True(t, cfg.PostgresEnabled)
	assert.True(t, cfg.Headless, "unparseable bools fall back to the default")
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "places", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=places sslmode=disable", cfg.DSN())
}
