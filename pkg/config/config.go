package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type AppConfig struct {
	Environment    string
	Port           string
	ServiceName    string
	ServiceVersion string

	DBDriver      string
	DatabasePath  string
	DatabaseURL   string
	MySQLDSN      string
	LogSQLQueries bool

	CacheDriver   string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitEnabled bool
	RateLimitConfigs map[string]RateLimitConfig

	EnforceHTTPS bool

	DisplayErrorDetails bool
	LogErrors           bool
	LogErrorDetails     bool

	LogLevel string
	LogPath  string

	OTLPEndpoint string
	MetricsPort  string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// DefaultRateLimits is keyed by "METHOD route" as gin reports it; "default"
// applies to everything else.
func DefaultRateLimits() map[string]RateLimitConfig {
	return map[string]RateLimitConfig{
		"GET /api/v1/users":        {Requests: 100, Window: time.Minute},
		"POST /api/v1/users":       {Requests: 20, Window: time.Minute},
		"GET /api/v1/users/:id":    {Requests: 100, Window: time.Minute},
		"PUT /api/v1/users/:id":    {Requests: 10, Window: time.Minute},
		"DELETE /api/v1/users/:id": {Requests: 5, Window: time.Minute},
		"default":                  {Requests: 60, Window: time.Minute},
	}
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment:    "development",
		Port:           "8080",
		ServiceName:    "userapp",
		ServiceVersion: "1.0.0",

		DBDriver:     DriverSQLite,
		DatabasePath: "database.db",

		CacheDriver: CacheMemory,
		CacheTTL:    5 * time.Minute,
		RedisAddr:   "localhost:6379",

		RateLimitEnabled: true,
		RateLimitConfigs: DefaultRateLimits(),

		EnforceHTTPS: false,

		DisplayErrorDetails: true,
		LogErrors:           true,
		LogErrorDetails:     true,

		LogLevel: "info",
		LogPath:  "logs/app.log",

		OTLPEndpoint: "localhost:4317",
		MetricsPort:  "9091",
	}
}

// Load reads .env (when present) and the environment on top of the defaults.
// GIN_MODE=release switches to production defaults before explicit
// variables are applied.
func Load() *AppConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg := GetDefaultConfig()

	if os.Getenv("GIN_MODE") == "release" {
		cfg.Environment = "production"
		cfg.EnforceHTTPS = true
		cfg.DisplayErrorDetails = false
		cfg.LogErrorDetails = false
	}

	cfg.Environment = getEnv("APP_ENV", cfg.Environment)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.ServiceName = getEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.ServiceVersion = getEnv("SERVICE_VERSION", cfg.ServiceVersion)

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", cfg.DBDriver))
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MySQLDSN = getEnv("MYSQL_DSN", cfg.MySQLDSN)
	cfg.LogSQLQueries = getEnvBool("LOG_SQL_QUERIES", cfg.LogSQLQueries)

	cfg.CacheDriver = strings.ToLower(getEnv("CACHE_DRIVER", cfg.CacheDriver))
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", cfg.CacheTTL)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)

	cfg.RateLimitEnabled = getEnvBool("RATE_LIMIT_ENABLED", cfg.RateLimitEnabled)
	cfg.EnforceHTTPS = getEnvBool("ENFORCE_HTTPS", cfg.EnforceHTTPS)

	cfg.DisplayErrorDetails = getEnvBool("DISPLAY_ERROR_DETAILS", cfg.DisplayErrorDetails)
	cfg.LogErrors = getEnvBool("LOG_ERRORS", cfg.LogErrors)
	cfg.LogErrorDetails = getEnvBool("LOG_ERROR_DETAILS", cfg.LogErrorDetails)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogPath = getEnv("LOG_PATH", cfg.LogPath)

	cfg.OTLPEndpoint = getEnv("OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.MetricsPort = getEnv("METRICS_PORT", cfg.MetricsPort)

	return cfg
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
