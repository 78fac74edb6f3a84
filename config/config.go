package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Facebook configuration
	PageAccessToken string
	VerifyToken     string

	// Claude configuration (generative fallback)
	ClaudeAPIKey    string
	ClaudeModel     string
	ClaudeMaxTokens int

	// Catalog and shipping rule files
	CatalogPath  string
	ShippingPath string

	// Session configuration
	SessionTTL    time.Duration
	SweepInterval time.Duration
	MemoryTurns   int

	// MongoDB configuration (optional message archive)
	MongoURI     string
	DatabaseName string

	// Server configuration
	Port string
}

func LoadConfig() *Config {
	cfg := &Config{
		PageAccessToken: os.Getenv("PAGE_ACCESS_TOKEN"),
		VerifyToken:     getEnv("WEBHOOK_VERIFY_TOKEN", "webhook_verify_token"),
		ClaudeAPIKey:    os.Getenv("CLAUDE_API_KEY"),
		ClaudeModel:     getEnv("CLAUDE_MODEL", "claude-3-5-haiku-20241022"),
		ClaudeMaxTokens: getEnvInt("CLAUDE_MAX_TOKENS", 512),
		CatalogPath:     getEnv("CATALOG_PATH", "catalog.yaml"),
		ShippingPath:    getEnv("SHIPPING_RULES_PATH", "shipping_rules.yaml"),
		SessionTTL:      time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)) * time.Minute,
		SweepInterval:   time.Duration(getEnvInt("SESSION_SWEEP_MINUTES", 10)) * time.Minute,
		MemoryTurns:     getEnvInt("MEMORY_TURNS", 20),
		MongoURI:        os.Getenv("MONGO_URI"),
		DatabaseName:    getEnv("MONGO_DB_NAME", "petplus_bot"),
		Port:            getEnv("PORT", "8080"),
	}

	if cfg.PageAccessToken == "" {
		slog.Warn("PAGE_ACCESS_TOKEN not set, outbound delivery will fail")
	}
	if cfg.ClaudeAPIKey == "" {
		slog.Info("CLAUDE_API_KEY not set, generative fallback disabled")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}
