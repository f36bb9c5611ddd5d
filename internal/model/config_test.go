package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/model"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
	assert.Equal(t, 6, cfg.Recent.Capacity)
}

func TestLoadConfig_ReadsFileAndAppliesFloors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://plants.example.com/
recent:
  capacity: 0
display:
  poll_interval_sec: 1
reminders:
  schedule: "30 7 * * *"
  smtp:
    host: smtp.example.com
`), 0o600))

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://plants.example.com", cfg.API.BaseURL)
	assert.Equal(t, 6, cfg.Recent.Capacity)
	assert.Equal(t, 10, cfg.Display.PollIntervalSec)
	assert.Equal(t, "30 7 * * *", cfg.Reminders.Schedule)
	assert.Equal(t, "smtp.example.com", cfg.Reminders.SMTP.Host)
	assert.Equal(t, 587, cfg.Reminders.SMTP.Port)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o600))

	_, err := model.LoadConfig(path)
	assert.ErrorContains(t, err, "reading config")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := model.DefaultConfig()
	cfg.Recent.Capacity = 9
	cfg.Auth.APIKey = "key"

	require.NoError(t, model.SaveConfig(path, cfg))

	got, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Recent.Capacity)
	assert.Equal(t, "key", got.Auth.APIKey)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("PLANTCARE_RECENT_CAPACITY", "3")
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Recent.Capacity)
}
