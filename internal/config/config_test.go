package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("CYBERSOURCE_MERCHANT_ID", "edforge")
	t.Setenv("CYBERSOURCE_PROFILE_ID", "profile-1")
	t.Setenv("CYBERSOURCE_ACCESS_KEY", "access-1")
}

func TestLoadFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "coursepay", cfg.Database.Database)
	assert.Equal(t, "sandbox", cfg.CyberSource.Environment)
	assert.Equal(t, "local", cfg.Secrets.Backend)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadFromEnvMissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{name: "db password", unset: "DB_PASSWORD"},
		{name: "merchant id", unset: "CYBERSOURCE_MERCHANT_ID"},
		{name: "profile id", unset: "CYBERSOURCE_PROFILE_ID"},
		{name: "access key", unset: "CYBERSOURCE_ACCESS_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadFromEnvVaultBackendNeedsAddress(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SECRETS_BACKEND", "vault")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAULT_ADDR")

	t.Setenv("VAULT_ADDR", "https://vault.internal:8200")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "vault", cfg.Secrets.Backend)
}

func TestLoadFromEnvUnknownBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SECRETS_BACKEND", "etcd")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "pw",
		Database: "coursepay",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=pw dbname=coursepay sslmode=disable",
		db.ConnectionString())
}
