package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "JWT_SECRET=file-secret\nDATABASE_URL=postgres://localhost/sage\nSOCKET_TOKEN_TTL=30m\nDISPATCH_WORKERS=8\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, "postgres://localhost/sage", cfg.DatabaseURL)
	assert.Equal(t, 30*time.Minute, cfg.SocketTokenTTL)
	assert.Equal(t, 8, cfg.DispatchWorkers)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 168*time.Hour, cfg.SessionTokenTTL)
	assert.Equal(t, 1024, cfg.DispatchQueueSize)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=file-secret\nDATABASE_URL=x\n"), 0o600))
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sage")

	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	cfg := Config{JWTSecret: "s", DatabaseURL: "d", DispatchWorkers: 0}
	assert.Error(t, cfg.Validate())

	cfg.DispatchWorkers = 1
	assert.NoError(t, cfg.Validate())
}
