package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`database:
  host: localhost
`))
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "https://esi.evetech.net/latest", cfg.API.BaseURL)
	assert.Equal(t, 4, cfg.Sync.Workers)
	assert.Equal(t, time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 3, cfg.Sync.Retry.MaxAttempts)
	assert.Equal(t, 0.6, cfg.API.Breaker.FailureRatio)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("SYNC_DB_PASSWORD", "s3cret")

	cfg, err := Parse([]byte(`database:
  password: ${SYNC_DB_PASSWORD}
`))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Contains(t, cfg.Database.DSN(), "password=s3cret")
}

func TestParse_EndpointsAndAccounts(t *testing.T) {
	cfg, err := Parse([]byte(`
sync:
  interval: 30s
  error_backoff: 2m
endpoints:
  assets:
    enabled: false
  wallet:
    default_interval: 5m
    per_account: true
accounts:
  - id: 90000001
    name: Pilot
    credential_ref: PILOT_TOKEN
  - id: 90000002
    active: false
`))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Sync.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Sync.ErrorBackoff)

	assert.False(t, cfg.Endpoints["assets"].IsEnabled())
	assert.True(t, cfg.Endpoints["wallet"].IsEnabled())
	assert.Equal(t, 5*time.Minute, cfg.Endpoints["wallet"].DefaultInterval)
	require.NotNil(t, cfg.Endpoints["wallet"].PerAccount)
	assert.True(t, *cfg.Endpoints["wallet"].PerAccount)

	require.Len(t, cfg.Accounts, 2)
	assert.True(t, cfg.Accounts[0].IsActive())
	assert.Equal(t, "PILOT_TOKEN", cfg.Accounts[0].CredentialRef)
	assert.False(t, cfg.Accounts[1].IsActive())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative workers", "sync:\n  workers: -1\n"},
		{"backoff bounds", "sync:\n  retry:\n    initial_backoff: 1m\n    max_backoff: 1s\n"},
		{"failure ratio", "api:\n  breaker:\n    failure_ratio: 1.5\n"},
		{"duplicate account", "accounts:\n  - id: 1\n  - id: 1\n"},
		{"invalid account id", "accounts:\n  - id: 0\n"},
		{"bad yaml", "sync: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
