// Package config holds user preferences for the Teen Tech client.
// Configuration lives in a JSON file under the config directory, with
// environment variables (optionally loaded from a .env file) taking
// precedence over what is on disk.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is used when neither the config file nor the environment
// names a backend.
const DefaultAPIURL = "http://localhost:3000"

// Environment variable overrides
const (
	EnvAPIURL      = "TEENTECH_API_URL"
	EnvTheme       = "TEENTECH_THEME"
	EnvSessionFile = "TEENTECH_SESSION_FILE"
)

// Config holds user preferences.
type Config struct {
	APIURL string `json:"api_url"`
	Theme  string `json:"theme"` // "light" or "dark"
	Debug  bool   `json:"debug"` // enables category file logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		APIURL: DefaultAPIURL,
		Theme:  "dark",
	}
}

// Dir returns the directory where config, session, and logs are stored.
// A project-local .teentech directory wins over the home-level one so a
// checkout can pin its own backend.
func Dir() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".teentech")
		if stat, err := os.Stat(localDir); err == nil && stat.IsDir() {
			return localDir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".teentech"), nil
}

// File returns the full path to the config file.
func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// SessionFile returns the path of the persisted session token.
func SessionFile() (string, error) {
	if p := os.Getenv(EnvSessionFile); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// Load reads the configuration from disk and applies environment overrides.
// A missing config file is not an error; defaults are returned.
func Load() (Config, error) {
	// .env is optional; absence is the normal case
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path, err := File()
	if err != nil {
		return applyEnv(cfg), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return applyEnv(cfg), nil
	}
	if err != nil {
		return applyEnv(cfg), err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(DefaultConfig()), err
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	return applyEnv(cfg), nil
}

// Save writes the configuration to disk.
func Save(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := File()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Theme = v
	}
	return cfg
}
