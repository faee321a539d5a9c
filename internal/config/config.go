// Package config resolves runtime settings from INTAKE_* environment
// variables, optionally overlaid by a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the CLI commands and the API server.
type Config struct {
	// Addr is the listen address of the API server.
	Addr string `yaml:"addr"`
	// DatabaseURL and DBDriver select the SQL draft store ("pgx" or "sqlite").
	DatabaseURL string `yaml:"databaseUrl"`
	DBDriver    string `yaml:"dbDriver"`
	// RedisURL enables the shared-workstation identity store when set.
	RedisURL    string `yaml:"redisUrl"`
	Workstation string `yaml:"workstation"`
	// APIURL points the interactive commands at a remote draft API. Empty
	// keeps drafts in process.
	APIURL       string `yaml:"apiUrl"`
	IdentityFile string `yaml:"identityFile"`
	LogLevel     string `yaml:"logLevel"`
	// CatalogDir loads flow and quiz definitions from disk instead of the
	// embedded defaults.
	CatalogDir      string        `yaml:"catalogDir"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Load reads the environment, falling back to defaults for unset keys.
func Load() Config {
	return Config{
		Addr:            getenv("INTAKE_ADDR", ":8080"),
		DatabaseURL:     getenv("INTAKE_DATABASE_URL", "file:intake.db"),
		DBDriver:        getenv("INTAKE_DB_DRIVER", "sqlite"),
		RedisURL:        getenv("INTAKE_REDIS_URL", ""),
		Workstation:     getenv("INTAKE_WORKSTATION", "default"),
		APIURL:          getenv("INTAKE_API_URL", ""),
		IdentityFile:    getenv("INTAKE_IDENTITY_FILE", defaultIdentityFile()),
		LogLevel:        getenv("INTAKE_LOG_LEVEL", "info"),
		CatalogDir:      getenv("INTAKE_CATALOG_DIR", ""),
		RequestTimeout:  time.Duration(getenvInt("INTAKE_REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		ShutdownTimeout: time.Duration(getenvInt("INTAKE_SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

// LoadFile overlays the YAML document at path onto base. Keys absent from
// the file keep their base values.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return base, nil
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func defaultIdentityFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".intake-draft.json"
	}
	return dir + string(os.PathSeparator) + "intake" + string(os.PathSeparator) + "draft.json"
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
