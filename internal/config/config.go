package config

import (
	"fmt"
	"os"
)

type Config struct {
	Env                  string
	ListenAddr           string
	DatabaseURL          string
	ExtractionModel      string // provider:model, e.g. anthropic:claude-sonnet-4-5
	AlertWindowDays      int
	AlertIntervalMinutes int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() (Config, error) {
	cfg := Config{
		Env:                  getenv("APP_ENV", "development"),
		ListenAddr:           getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		ExtractionModel:      getenv("EXTRACTION_MODEL", ""),
		AlertWindowDays:      getenvInt("ALERT_WINDOW_DAYS", 30),
		AlertIntervalMinutes: getenvInt("ALERT_INTERVAL_MINUTES", 60),
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		_, err := fmt.Sscanf(v, "%d", &out)
		if err == nil {
			return out
		}
	}
	return def
}
