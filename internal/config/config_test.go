package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  address: \":9000\"\nstorage:\n  backend: memory\njwt:\n  expiration: 45m\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 45*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}
