package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const insecureJWTSecret = "dev-secret-change-in-production"

var ErrInsecureSecret = errors.New("JWT_SECRET must be set in production environment")

type Config struct {
	Port      string
	Env       string
	DataDir   string
	UsersFile string
	ItemsFile string
	JWTSecret string
	LogLevel  string
	LogFormat string
	LogFile   string

	// CORSAllowedOrigins lists the browser origins allowed to call the API.
	// "*" allows any origin.
	CORSAllowedOrigins []string
}

// Load reads the configuration from the environment. It refuses to run in
// production with the built-in signing secret.
func Load() (Config, error) {
	dataDir := getEnv("DATA_DIR", "data")

	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		DataDir:   dataDir,
		UsersFile: getEnv("USERS_FILE", filepath.Join(dataDir, "users.json")),
		ItemsFile: getEnv("ITEMS_FILE", filepath.Join(dataDir, "data.json")),
		JWTSecret: getEnv("JWT_SECRET", insecureJWTSecret),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogFile:   os.Getenv("LOG_FILE"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.JWTSecret == insecureJWTSecret {
		if cfg.Env == "production" {
			return Config{}, ErrInsecureSecret
		}
		slog.Warn("JWT_SECRET not set, using insecure development secret")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
