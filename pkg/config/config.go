package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/somos/attraction/backend/pkg/geo"
)

// Config holds all application configuration
type Config struct {
	Env       string
	LogLevel  string
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	Planner   PlannerConfig
	Auth      AuthConfig
	Session   SessionConfig
	StopAreas []geo.BoundingBox
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// PlannerConfig holds the external trip planner configuration
type PlannerConfig struct {
	GraphQLURL     string
	TimeoutSeconds int
	// Timezone is used to render leg timestamps and to localize stored trip dates.
	Timezone string
}

// AuthConfig holds bearer token validation settings. Tokens are issued by the
// identity service; this backend only validates them.
type AuthConfig struct {
	IssuerURL    string
	Audience     string
	JWKSURL      string
	HS256Secret  string
	ClockSkewSec int
	// AdminUserIDs may watch every user's search activity.
	AdminUserIDs []string
}

// SessionConfig holds anonymous session cookie settings
type SessionConfig struct {
	CookieName   string
	Secure       bool
	MaxAgeSecond int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	stopAreas, err := LoadStopAreas(getEnv("STOP_AREAS_FILE", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to load stop areas: %w", err)
	}

	cfg := &Config{
		Env:      getEnv("ENV", "production"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "attraction"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Planner: PlannerConfig{
			GraphQLURL:     getEnv("PLANNER_GRAPHQL_URL", "https://otp.somos.srl/otp/routers/default/index/graphql"),
			TimeoutSeconds: getEnvAsInt("PLANNER_TIMEOUT_SECONDS", 10),
			Timezone:       getEnv("PLANNER_TIMEZONE", "Europe/Rome"),
		},
		Auth: AuthConfig{
			IssuerURL:    getEnv("AUTH_ISSUER_URL", ""),
			Audience:     getEnv("AUTH_AUDIENCE", ""),
			JWKSURL:      getEnv("AUTH_JWKS_URL", ""),
			HS256Secret:  getEnv("AUTH_HS256_SECRET", ""),
			ClockSkewSec: getEnvAsInt("AUTH_CLOCK_SKEW_SECONDS", 60),
			AdminUserIDs: getEnvAsList("ADMIN_USER_IDS", nil),
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", "sessionid"),
			Secure:       getEnvAsBool("SESSION_COOKIE_SECURE", false),
			MaxAgeSecond: getEnvAsInt("SESSION_COOKIE_MAX_AGE", 60*60*24*14),
		},
		StopAreas: stopAreas,
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "attraction-backend"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.Planner.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("PLANNER_TIMEOUT_SECONDS must be positive, got %d", cfg.Planner.TimeoutSeconds)
	}

	return cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
