package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "quickshare", cfg.Firebase.Collection)
	assert.Equal(t, "none", cfg.Auth.Mode)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.QuickShareEnabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9191")
	t.Setenv("FIREBASE_PROJECT_ID", "larre-app")
	t.Setenv("FIREBASE_STORAGE_BUCKET", "larre-app.firebasestorage.app")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9191", cfg.Server.Addr())
	assert.True(t, cfg.QuickShareEnabled())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "larre.yaml")
	content := "logger:\n  level: debug\nfiles:\n  dir: /tmp/larre-files\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/tmp/larre-files", cfg.Files.Dir)
}

func TestValidateAuthMode(t *testing.T) {
	t.Run("hmac requires secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth.Mode = "hmac"
		assert.Error(t, cfg.Validate())

		cfg.Auth.Secret = "s3cret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown mode", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth.Mode = "basic"
		assert.Error(t, cfg.Validate())
	})

	t.Run("port range", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})
}

func validConfig() *Config {
	return &Config{
		Server:      ServerConfig{Port: 8080},
		Auth:        AuthConfig{Mode: "none"},
		Firebase:    FirebaseConfig{Collection: "quickshare"},
		Preferences: PreferencesConfig{Path: ":memory:"},
	}
}

func TestIsProduction(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENVIRONMENT", "production")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.App.IsProduction())

	assert.False(t, (&AppConfig{Environment: "development"}).IsProduction())
}
