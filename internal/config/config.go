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
	Port        string
	Env         string
	DatabaseURL string
	SQLitePath  string
	RedisURL    string

	// Language model
	LLMProvider  string // "openai", "ollama" or "gemini"
	LLMModel     string
	LLMTimeout   time.Duration
	OpenAIAPIKey string
	OllamaHost   string
	GeminiAPIKey string

	// Topic validation
	ValidationInterval int    // validate every Nth message
	ContextWindow      int    // messages sampled per validation
	SystemSenderID     string // reserved sender identity for reminder messages

	// Rate limiting
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		RedisURL:    os.Getenv("REDIS_URL"),

		LLMProvider:  getEnv("LLM_PROVIDER", "openai"),
		LLMModel:     getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:   getDuration("LLM_TIMEOUT", 20*time.Second),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OllamaHost:   getEnv("OLLAMA_HOST", "http://localhost:11434"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		ValidationInterval: getInt("VALIDATION_INTERVAL", 10),
		ContextWindow:      getInt("CONTEXT_WINDOW", 25),
		SystemSenderID:     getEnv("SYSTEM_SENDER_ID", "system"),
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	// In production, require a real database and a model credential
	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
		if cfg.OpenAIAPIKey == "" && cfg.GeminiAPIKey == "" && cfg.LLMProvider != "ollama" {
			panic("an LLM credential is required in production")
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

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
