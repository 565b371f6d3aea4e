package config

import (
	"testing"
	"time"

	"github.com/securepulses/gatekeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EMAIL_FROM_ADDRESS", "noreply@example.com")
	t.Setenv("EMAIL_ADMIN_ADDRESS", "admin@example.com")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)

	assert.Equal(t, 3*time.Second, cfg.Gate.MinFillTime)
	assert.Equal(t, 30*time.Minute, cfg.Gate.MaxFillTime)
	assert.Equal(t, 3, cfg.Gate.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Gate.Window)
	assert.Equal(t, 60*time.Second, cfg.Gate.MinAttemptGap)
	assert.Equal(t, int64(10*1024), cfg.Gate.MaxBodyBytes)

	assert.True(t, cfg.Email.SendConfirmation)
	assert.Equal(t, 10*time.Second, cfg.Email.DispatchTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GATE_MIN_FILL_TIME", "5s")
	t.Setenv("GATE_MAX_ATTEMPTS", "10")
	t.Setenv("GATE_WINDOW", "1h")
	t.Setenv("EMAIL_SEND_CONFIRMATION", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Gate.MinFillTime)
	assert.Equal(t, 10, cfg.Gate.MaxAttempts)
	assert.Equal(t, time.Hour, cfg.Gate.Window)
	assert.False(t, cfg.Email.SendConfirmation)
}

func TestLoad_RequiresSenderAddresses(t *testing.T) {
	t.Setenv("EMAIL_FROM_ADDRESS", "")
	t.Setenv("EMAIL_ADMIN_ADDRESS", "admin@example.com")
	_, err := Load()
	assert.ErrorIs(t, err, models.ErrConfiguration)

	t.Setenv("EMAIL_FROM_ADDRESS", "noreply@example.com")
	t.Setenv("EMAIL_ADMIN_ADDRESS", "")
	_, err = Load()
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestLoad_RejectsInvalidThresholds(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("GATE_MAX_ATTEMPTS", "0")
	_, err := Load()
	assert.ErrorIs(t, err, models.ErrConfiguration)

	t.Setenv("GATE_MAX_ATTEMPTS", "3")
	t.Setenv("GATE_MIN_FILL_TIME", "1h")
	t.Setenv("GATE_MAX_FILL_TIME", "30m")
	_, err = Load()
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestLoad_MalformedValuesFallBackToDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GATE_MAX_ATTEMPTS", "lots")
	t.Setenv("GATE_WINDOW", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Gate.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Gate.Window)
}

func TestLoad_ProductionOriginsFailClosed(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestLoad_ProductionOriginsFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://example.com, https://www.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com", "https://www.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoad_DevelopmentOriginsIncludeLocalhost(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:3000")
}
