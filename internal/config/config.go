package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DatabaseURL string // PostgreSQL; empty falls back to SQLite
	SQLitePath  string
	RedisURL    string

	GoogleAPIKey string
	GenModel     string
	GenTimeout   time.Duration

	FrontendURLs []string // allowed CORS / WebSocket origins
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "3001"),
		Env:          getEnv("ENV", "development"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SQLitePath:   os.Getenv("SQLITE_PATH"),
		RedisURL:     os.Getenv("REDIS_URL"),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		GenModel:     getEnv("GENAI_MODEL", "gemini-1.5-flash"),
		GenTimeout:   getDuration("GENAI_TIMEOUT_SECONDS", 60*time.Second),
	}

	// Parse frontend origins (comma-separated)
	if urls := os.Getenv("FRONTEND_URLS"); urls != "" {
		for _, entry := range strings.Split(urls, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.FrontendURLs = append(cfg.FrontendURLs, entry)
			}
		}
	} else if cfg.Env != "production" {
		cfg.FrontendURLs = []string{"http://localhost:5173", "http://localhost:5174"}
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			panic("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	if cfg.Env == "production" {
		if cfg.GoogleAPIKey == "" {
			panic("GOOGLE_API_KEY is required in production")
		}
		if cfg.RedisURL == "" {
			panic("REDIS_URL is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
