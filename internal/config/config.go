package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment         string
	AppName             string
	Port                string
	LogLevel            slog.Level
	ProxyBaseURL        string
	RequestTimeout      time.Duration
	SQLitePath          string
	CatalogCacheTTL     time.Duration
	YAMLSourcesPath     string
	AdultSourcesEnabled bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:         getEnv("APP_ENV", "development"),
		AppName:             getEnv("APP_NAME", "source-aggregator"),
		Port:                getEnv("APP_PORT", "8080"),
		ProxyBaseURL:        getEnv("PROXY_BASE_URL", "http://localhost:3100"),
		RequestTimeout:      time.Duration(getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		SQLitePath:          getEnv("SQLITE_PATH", "./data/catalog-cache.sqlite"),
		CatalogCacheTTL:     time.Duration(getEnvAsInt("CATALOG_CACHE_TTL_SECONDS", 300)) * time.Second,
		YAMLSourcesPath:     getEnv("YAML_SOURCES_PATH", "./sources"),
		AdultSourcesEnabled: getEnvAsBool("ADULT_SOURCES_ENABLED", true),
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.CatalogCacheTTL <= 0 {
		cfg.CatalogCacheTTL = 5 * time.Minute
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt(key string, fallback int) int {
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
