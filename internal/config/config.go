package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Scheduling backend (catalog, zones, providers, slot search).
	VetDataBaseURL string
	VetDataAPIKey  string
	PracticeID     string

	// Zone checks fire after the address has been stable this long.
	ZoneCheckQuietPeriod time.Duration

	// Session-scoped cache of zone results and slot offers.
	SessionTTL time.Duration

	// Account-holder token verification.
	AccountJWTSecret string

	CORSAllowedOrigins []string

	// Manual follow-up notifications to the practice.
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	FollowUpEmail     string

	// Catalog cache refresh.
	CatalogRefreshInterval time.Duration

	// Per-IP rate limiting on the public intake surface. Zero disables it.
	RateLimitPerSecond int
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		VetDataBaseURL: getEnv("VETDATA_BASE_URL", ""),
		VetDataAPIKey:  getEnv("VETDATA_API_KEY", ""),
		PracticeID:     getEnv("PRACTICE_ID", ""),

		ZoneCheckQuietPeriod: getEnvAsDuration("ZONE_CHECK_QUIET_PERIOD", 600*time.Millisecond),
		SessionTTL:           getEnvAsDuration("SESSION_TTL", 2*time.Hour),

		AccountJWTSecret: getEnv("ACCOUNT_JWT_SECRET", ""),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "HomeVet Intake"),
		FollowUpEmail:     getEnv("FOLLOWUP_NOTIFICATION_EMAIL", ""),

		CatalogRefreshInterval: getEnvAsDuration("CATALOG_REFRESH_INTERVAL", 12*time.Hour),

		RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 20),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
