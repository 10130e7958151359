package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("TELLER_API_URL", "")
	t.Setenv("TELLER_VAULT_PATH", "")
	t.Setenv("TELLER_REQUEST_TIMEOUT", "")

	cfg := FromEnv()
	assert.Equal(t, "http://localhost:8080/api", cfg.BaseURL)
	assert.Equal(t, "/login", cfg.LoginPath)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.NotEmpty(t, cfg.VaultPath)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TELLER_API_URL", "https://bank.example.com/api")
	t.Setenv("TELLER_VAULT_PATH", "/tmp/creds.json")
	t.Setenv("TELLER_REQUEST_TIMEOUT", "3s")

	cfg := FromEnv()
	assert.Equal(t, "https://bank.example.com/api", cfg.BaseURL)
	assert.Equal(t, "/tmp/creds.json", cfg.VaultPath)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestLoadOverlaysFile(t *testing.T) {
	t.Setenv("TELLER_API_URL", "http://env.example.com/api")
	path := filepath.Join(t.TempDir(), "teller.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://file.example.com/api\nrequest_timeout: 5s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file.example.com/api", cfg.BaseURL, "file wins over env")
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.NotEmpty(t, cfg.VaultPath)
}

func TestLoadMissingFileKeepsEnv(t *testing.T) {
	t.Setenv("TELLER_API_URL", "http://env.example.com/api")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, "http://env.example.com/api", cfg.BaseURL)
}
