package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "json", cfg.App.LogFormat)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.InDelta(t, 0.3, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.StartTLS)
	assert.Equal(t, "127.0.0.1:8085", cfg.Server.Address())
	assert.Equal(t, 24, cfg.Scan.LookbackHours)
	assert.False(t, cfg.Azure.Configured())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  log_level: debug
azure:
  tenant_id: t
  client_id: c
  client_secret: s
  subscription_id: sub
  resource_group: rg
  factory_name: df
smtp:
  host: smtp.internal
  to:
    - oncall@example.com
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "json", cfg.App.LogFormat) // default retained
	assert.True(t, cfg.Azure.Configured())
	assert.Equal(t, "smtp.internal", cfg.SMTP.Host)
	assert.Equal(t, []string{"oncall@example.com"}, cfg.SMTP.To)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("smtp:\n  host: from-file\n"), 0o600))

	t.Setenv("PIPETRIAGE_SMTP_HOST", "from-env")
	t.Setenv("PIPETRIAGE_SCAN_LOOKBACK_HOURS", "48")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.SMTP.Host)
	assert.Equal(t, 48, cfg.Scan.LookbackHours)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  log_level: loud\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [not a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 8085
	cfg.Scan.LookbackHours = -1
	assert.Error(t, cfg.Validate())

	cfg.Scan.LookbackHours = 24
	cfg.AI.Temperature = 3.0
	assert.Error(t, cfg.Validate())
}
