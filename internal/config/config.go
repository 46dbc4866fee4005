package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort   string
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	// Session recorder
	InactivityWindow   time.Duration
	ReaperInterval     time.Duration
	AcceptLateAttempts bool

	// Read side
	AnalysisCacheTTL        time.Duration
	RecommendationWordLimit int
	PromotionStreak         int

	// HTTP surface
	JWTSecret       string
	IngestRateLimit float64 // requests per second per client
	IngestRateBurst int

	LogLevel string
	LogFile  string

	// Progress report mailer
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	VocabularyCatalog string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:   getEnv("PORT", "8080"),
		DatabaseType: getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./wordmastery.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		InactivityWindow:   getDuration("SESSION_INACTIVITY_WINDOW", 10*time.Minute),
		ReaperInterval:     getDuration("REAPER_INTERVAL", time.Minute),
		AcceptLateAttempts: getBool("ACCEPT_LATE_ATTEMPTS", false),

		AnalysisCacheTTL:        getDuration("ANALYSIS_CACHE_TTL", 5*time.Minute),
		RecommendationWordLimit: getInt("RECOMMENDATION_WORD_LIMIT", 5),
		PromotionStreak:         getInt("MASTERY_PROMOTION_STREAK", 3),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		IngestRateLimit: getFloat("INGEST_RATE_LIMIT", 20),
		IngestRateBurst: getInt("INGEST_RATE_BURST", 40),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Word Mastery"),

		VocabularyCatalog: getEnv("VOCABULARY_CATALOG", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || f <= 0 {
		return defaultValue
	}
	return f
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}
