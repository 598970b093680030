package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	Debug      bool

	// Database (sqlite, postgres, mysql). MySQL URLs need parseTime=true.
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	// Local snapshot storage: database, file or memory
	StoreBackend string
	SnapshotPath string

	// Remote progress backend this device syncs to; empty runs in demo mode
	RemoteBackendURL   string
	RemoteRateLimit    float64
	RemoteTimeout      time.Duration
	BackendTokenSecret string
	TokenDuration      time.Duration
	BlockedWordsURL    string

	// Chat tutor
	GeminiAPIKey string
	GeminiModel  string

	// Parent report email via SES; empty SESFromEmail disables sending
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	// HTTP surface
	AllowedOrigins  []string
	RateLimitPerMin int
	MetricsUser     string
	MetricsPassword string
}

// Load reads configuration from a .env file (if any) and environment
// variables, with sensible defaults
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		ServerPort: getEnv("PORT", "8080"),
		Debug:      getEnvBool("DEBUG", false),

		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./kidslearning.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", ""),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "database")),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "./kids-learning-store.json"),

		RemoteBackendURL:   strings.TrimRight(getEnv("REMOTE_BACKEND_URL", ""), "/"),
		RemoteRateLimit:    getEnvFloat("REMOTE_RATE_LIMIT", 5),
		RemoteTimeout:      getEnvDuration("REMOTE_TIMEOUT", 10*time.Second),
		BackendTokenSecret: getEnv("BACKEND_TOKEN_SECRET", ""),
		TokenDuration:      getEnvDuration("TOKEN_DURATION", 90*24*time.Hour),
		BlockedWordsURL:    getEnv("BLOCKED_WORDS_URL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Kids Learning"),
		AppBaseURL:   strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),

		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "*")),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MetricsUser:     getEnv("METRICS_USER", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
