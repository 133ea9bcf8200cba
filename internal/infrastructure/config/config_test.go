package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "FlatPress", cfg.App.Name)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "data/posts.json", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	resetViper(t)

	t.Setenv("POSTS_FILE", "/var/lib/flatpress/posts.json")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/flatpress/posts.json", cfg.Storage.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	resetViper(t)

	t.Setenv("SERVER_PORT", "99999")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRejectsEmptyStoragePath(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 5000},
	}

	err := validateConfig(cfg)
	assert.Error(t, err)
}

func TestEnvironmentHelpers(t *testing.T) {
	dev := AppConfig{Environment: "development"}
	prod := AppConfig{Environment: "production"}

	assert.True(t, dev.IsDevelopment())
	assert.False(t, dev.IsProduction())
	assert.True(t, prod.IsProduction())
	assert.False(t, prod.IsDevelopment())
}
