package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Client captures everything the SDK and CLI need to talk to the banking API.
type Client struct {
	BaseURL        string        `yaml:"base_url"`
	VaultPath      string        `yaml:"vault_path"`
	LoginPath      string        `yaml:"login_path"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	WatchInterval  time.Duration `yaml:"watch_interval"`
}

const (
	defaultBaseURL        = "http://localhost:8080/api"
	defaultLoginPath      = "/login"
	defaultRequestTimeout = 10 * time.Second
	defaultWatchInterval  = 500 * time.Millisecond
)

// FromEnv builds a Client config from environment variables so main stays
// lean. A .env file in the working directory is loaded first when present.
func FromEnv() Client {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg := Client{
		BaseURL:        defaultBaseURL,
		LoginPath:      defaultLoginPath,
		RequestTimeout: defaultRequestTimeout,
		WatchInterval:  defaultWatchInterval,
	}

	if v := os.Getenv("TELLER_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TELLER_VAULT_PATH"); v != "" {
		cfg.VaultPath = v
	}
	if v := os.Getenv("TELLER_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if cfg.VaultPath == "" {
		cfg.VaultPath = defaultVaultPath()
	}
	return cfg
}

// Load reads a YAML config file and overlays it on the environment-derived
// defaults. Fields absent from the file keep their FromEnv values.
func Load(path string) (Client, error) {
	cfg := FromEnv()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.VaultPath == "" {
		cfg.VaultPath = defaultVaultPath()
	}
	return cfg, nil
}

func defaultVaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "teller", "credentials.json")
}
