package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const devJWTSecret = "dev-secret-change-in-production"

type Config struct {
	// Client side.
	APIBaseURL               string        `yaml:"api_base_url"`
	DataDir                  string        `yaml:"data_dir"`
	RequestTimeout           time.Duration `yaml:"request_timeout"`
	NotificationPollInterval time.Duration `yaml:"notification_poll_interval"`

	// Admin API server.
	Port              string        `yaml:"port"`
	Env               string        `yaml:"env"`
	DatabaseDSN       string        `yaml:"database_dsn"`
	AdminStore        string        `yaml:"admin_store"`
	JWTSecret         string        `yaml:"jwt_secret"`
	JWTExpiry         time.Duration `yaml:"jwt_expiry"`
	AdminEmail        string        `yaml:"admin_email"`
	AdminPasswordHash string        `yaml:"admin_password_hash"`
}

// Load reads the configuration from environment variables.
func Load() Config {
	return Config{
		APIBaseURL:               getEnv("API_BASE_URL", "http://localhost:5000"),
		DataDir:                  getEnv("DATA_DIR", defaultDataDir()),
		RequestTimeout:           getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		NotificationPollInterval: getEnvDuration("NOTIFICATION_POLL_INTERVAL", 60*time.Second),

		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		DatabaseDSN:       getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/mockprep?parseTime=true"),
		AdminStore:        getEnv("ADMIN_STORE", "mysql"),
		JWTSecret:         getEnv("JWT_SECRET", devJWTSecret),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 12*time.Hour),
		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@mockprep.local"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
	}
}

// LoadFile overlays the YAML file at path on top of Load(). Keys missing from
// the file keep their environment or default value.
func LoadFile(path string) (Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations that must not reach production.
func (c Config) Validate() error {
	if c.Env == "production" && c.JWTSecret == devJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production environment")
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	return nil
}

// StorePath is the file backing the durable local store.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, "storage.json")
}

// CookiePath is the file backing the persisted cookie jar.
func (c Config) CookiePath() string {
	return filepath.Join(c.DataDir, "cookies.json")
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		slog.Warn("no user config dir, using working directory", "error", err)
		return ".mockprep"
	}
	return filepath.Join(dir, "mockprep")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	if v := os.Getenv(key + "_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
