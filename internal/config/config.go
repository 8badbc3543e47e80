package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (read cache + OAuth state); empty addr disables it
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// GitHub social login
	GitHubClientID     string
	GitHubClientSecret string
	OAuthRedirectBase  string

	// Comma-separated emails allowed on /api/admin
	AdminEmails string

	// AI Providers (OpenAI-compatible chat completion endpoints)
	GLMAPIKey  string
	GLMBaseURL string
	GLMModel   string

	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	AITimeout    time.Duration
	AIRatePerSec float64

	// Calendar day boundary for "today": Local, UTC or an IANA zone name
	DayBoundaryTZ string

	// Logging
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string
}

func Load() *Config {
	loadDotEnv(".env.local", ".env")

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "mindful_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      parseDuration(getEnv("CACHE_TTL", "1h"), time.Hour),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		OAuthRedirectBase:  getEnv("OAUTH_REDIRECT_BASE", "http://localhost:8080"),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),

		GLMAPIKey:  getEnv("GLM_API_KEY", ""),
		GLMBaseURL: getEnv("GLM_BASE_URL", "https://api.z.ai/api/paas/v4/"),
		GLMModel:   getEnv("GLM_MODEL", "glm-5"),

		DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1/"),
		DeepSeekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1/"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		AITimeout:    parseDuration(getEnv("AI_TIMEOUT", "10s"), 10*time.Second),
		AIRatePerSec: getEnvFloat("AI_RATE_PER_SEC", 5),

		DayBoundaryTZ: getEnv("DAY_BOUNDARY_TZ", "Local"),

		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 7),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// GitHubOAuthEnabled reports whether both GitHub credentials are set.
func (c *Config) GitHubOAuthEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// loadDotEnv loads the given files in order, never overriding variables that
// are already set. Missing files are skipped.
func loadDotEnv(files ...string) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to load env file", "file", f, "error", err)
		}
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
