package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A signing key that satisfies the 32-character minimum.
const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_MissingSecretFails(t *testing.T) {
	// No SECRET_KEY in the environment: the loader must refuse to produce
	// a config rather than fall back to an unsigned mode.
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")
}

func TestLoad_ShortSecretFails(t *testing.T) {
	t.Setenv("SECRET_KEY", "too-short")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "cropsense", cfg.Database.Name)
}

func TestLoad_TokenTTLOverride(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("TOKEN_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
}

func TestDSN_AppendsDefaultPort(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "cropsense"}
	assert.Contains(t, d.DSN(), "tcp(db:3306)")
}

func TestDSN_OverrideWins(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("DATABASE_URL", "user:pass@tcp(somewhere:3307)/other?parseTime=true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "user:pass@tcp(somewhere:3307)/other?parseTime=true", cfg.Database.DSN())
}
