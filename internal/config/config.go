// Package config loads configuration from environment variables with a .env
// fallback.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable for both pipeline phases.
type Config struct {
	// Upstream API
	DataAPIURL  string
	HTTPTimeout time.Duration

	// Flat JSON stores
	QuickFile     string
	DetailedFile  string
	PromisingFile string
	ExportDir     string

	// Quick scan
	TargetNew  int
	MaxWorkers int
	FeedPages  int
	FeedLimit  int
	PageDelay  time.Duration

	// Per-trader fetch limits
	TradesLimit         int
	QuickPositionsLimit int
	DeepPositionsLimit  int

	// Deep analysis
	MaxAnalyze  int
	TraderDelay time.Duration

	// Promising thresholds
	MinPnL     float64
	MinWinRate float64
	MinTrades  int

	// Redis fetch cache (disabled when addr is empty)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// SQLite scan archive (disabled when path is empty)
	SQLitePath string

	// Kafka promising feed
	KafkaEnabled bool
}

// Load reads configuration with priority: env vars > .env file > defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DataAPIURL:  getEnv("DATA_API_URL", "https://data-api.polymarket.com"),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT_SECONDS", 20*time.Second),

		QuickFile:     getEnv("QUICK_FILE", "traders_quick.json"),
		DetailedFile:  getEnv("DETAILED_FILE", "traders_detailed.json"),
		PromisingFile: getEnv("PROMISING_FILE", "promising_traders.json"),
		ExportDir:     getEnv("EXPORT_DIR", "."),

		TargetNew:  getEnvInt("TARGET_NEW", 150),
		MaxWorkers: getEnvInt("MAX_WORKERS", 5),
		FeedPages:  getEnvInt("FEED_PAGES", 3),
		FeedLimit:  getEnvInt("FEED_LIMIT", 500),
		PageDelay:  getEnvDurationMillis("PAGE_DELAY_MS", 500*time.Millisecond),

		TradesLimit:         getEnvInt("TRADES_LIMIT", 500),
		QuickPositionsLimit: getEnvInt("QUICK_POSITIONS_LIMIT", 100),
		DeepPositionsLimit:  getEnvInt("DEEP_POSITIONS_LIMIT", 200),

		MaxAnalyze:  getEnvInt("MAX_ANALYZE", 100),
		TraderDelay: getEnvDurationMillis("TRADER_DELAY_MS", 300*time.Millisecond),

		MinPnL:     getEnvFloat("MIN_PNL", 200),
		MinWinRate: getEnvFloat("MIN_WIN_RATE", 0.50),
		MinTrades:  getEnvInt("MIN_TRADES", 20),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL_SECONDS", time.Hour),

		SQLitePath: getEnv("SQLITE_PATH", "data/traders.db"),

		KafkaEnabled: getEnvBool("KAFKA_ENABLED", false),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return time.Duration(parsed) * time.Second
		}
	}
	return fallback
}

func getEnvDurationMillis(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return time.Duration(parsed) * time.Millisecond
		}
	}
	return fallback
}
