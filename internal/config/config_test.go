package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadFromPath("")
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, 60, cfg.Auth.TokenTTLMinutes)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, 200, cfg.Audit.MaxEntries)
	require.False(t, cfg.RateLimit.Enabled)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadFromPath("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "jwt secret")
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("server:\n  port: 9000\nauth:\n  jwt_secret: from-file\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port, "env should win over file")
	require.Equal(t, "from-file", cfg.Auth.JWTSecret, "file value kept when env unset")
}

func TestInvalidPortRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("SERVER_PORT", "70000")

	_, err := LoadFromPath("")
	require.Error(t, err)
}
