package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "data/products.csv", cfg.RawPath)
	require.Equal(t, "data/transformed_products.csv", cfg.CleanedPath)
	require.Equal(t, "data/archive", cfg.ArchiveDir)
	require.Equal(t, "products", cfg.ArchivePrefix)
	require.Equal(t, MissingInputSkip, cfg.MissingInput)
	require.Equal(t, "@daily", cfg.Schedule.Interval)
	require.Equal(t, "2025-12-19", cfg.Schedule.StartDate)
	require.False(t, cfg.Schedule.Catchup)
	require.Equal(t, 1, cfg.Retry.MaxRetries)
	require.Equal(t, time.Second, cfg.Retry.InitialDelay)
	require.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)
	require.Equal(t, 2.0, cfg.Retry.BackoffFactor)
	require.Equal(t, "5m", cfg.RunTimeout)
	require.Equal(t, "etl.db", cfg.DBPath)
	require.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoadConfigEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"rawPath": "feeds/in.csv",
		"missingInput": "fail",
		"schedule": {"interval": "@hourly"},
		"retry": {"maxRetries": 3}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "feeds/in.csv", cfg.RawPath)
	require.Equal(t, MissingInputFail, cfg.MissingInput)
	require.Equal(t, "@hourly", cfg.Schedule.Interval)
	require.Equal(t, 3, cfg.Retry.MaxRetries)

	// Omitted fields keep their defaults
	require.Equal(t, "data/transformed_products.csv", cfg.CleanedPath)
	require.Equal(t, "2025-12-19", cfg.Schedule.StartDate)
	require.Equal(t, time.Second, cfg.Retry.InitialDelay)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to read config file")
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to parse config file")
}
