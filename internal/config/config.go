// Package config handles configuration loading for the site server.
package config

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the site server.
type Config struct {
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	Port             string
	Environment      string
	LogLevel         string
	AllowedOrigins   []string
	Cookie           CookieConfig

	// Access gate
	ProtectedPrefixes   []string
	AdminPrefix         string
	LoginPath           string
	CollaboratorTimeout time.Duration
	AuthCodeTTL         time.Duration

	// Asset proxy
	AssetOrigin     string
	AssetPrefixes   []string
	AssetRetryDelay time.Duration
}

// CookieConfig holds session cookie attributes.
type CookieConfig struct {
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// Load reads configuration from environment variables.
func Load() *Config {
	environment := getEnv("ENVIRONMENT", "development")
	return &Config{
		DBHost:           getEnvRequired("DB_HOST"),
		DBPort:           getEnvRequired("DB_PORT"),
		DBUser:           getEnvRequired("DB_USER"),
		DBPassword:       getEnvRequired("DB_PASSWORD"),
		DBName:           getEnvRequired("DB_NAME"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		RedisHost:        getEnvRequired("REDIS_HOST"),
		RedisPort:        getEnvRequired("REDIS_PORT"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		JWTSecret:        getEnvRequired("JWT_SECRET"),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),
		Port:             getEnv("PORT", "8080"),
		Environment:      environment,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:8080")),
		Cookie: CookieConfig{
			Path:     "/",
			Domain:   getEnv("COOKIE_DOMAIN", ""),
			Secure:   parseBool(getEnv("COOKIE_SECURE", ""), environment == "production"),
			SameSite: http.SameSiteLaxMode,
		},
		ProtectedPrefixes:   splitList(getEnv("PROTECTED_PREFIXES", "/admin,/account")),
		AdminPrefix:         getEnv("ADMIN_PREFIX", "/admin"),
		LoginPath:           getEnv("LOGIN_PATH", "/login"),
		CollaboratorTimeout: parseDuration(getEnv("COLLABORATOR_TIMEOUT", "5s"), 5*time.Second),
		AuthCodeTTL:         parseDuration(getEnv("AUTH_CODE_TTL", "5m"), 5*time.Minute),
		AssetOrigin:         getEnv("ASSET_ORIGIN", ""),
		AssetPrefixes:       splitList(getEnv("ASSET_PREFIXES", "/_next/static/,/assets/")),
		AssetRetryDelay:     parseDuration(getEnv("ASSET_RETRY_DELAY", "1500ms"), 1500*time.Millisecond),
	}
}

// Validate reports every required setting that is missing.
func (c *Config) Validate() error {
	if err := checkRequired(map[string]string{
		"DB_HOST":     c.DBHost,
		"DB_PORT":     c.DBPort,
		"DB_USER":     c.DBUser,
		"DB_PASSWORD": c.DBPassword,
		"DB_NAME":     c.DBName,
		"REDIS_HOST":  c.RedisHost,
		"REDIS_PORT":  c.RedisPort,
		"JWT_SECRET":  c.JWTSecret,
	}); err != nil {
		return err
	}

	if !strings.HasPrefix(c.AdminPrefix, "/") {
		return fmt.Errorf("ADMIN_PREFIX must start with /, got %q", c.AdminPrefix)
	}
	return nil
}

// ValidateDatabase checks only the settings the operator CLI needs.
func (c *Config) ValidateDatabase() error {
	return checkRequired(map[string]string{
		"DB_HOST":     c.DBHost,
		"DB_PORT":     c.DBPort,
		"DB_USER":     c.DBUser,
		"DB_PASSWORD": c.DBPassword,
		"DB_NAME":     c.DBName,
	})
}

func checkRequired(values map[string]string) error {
	var missing []string
	for key, value := range values {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// getEnvRequired returns the value or an empty string; Validate reports it.
func getEnvRequired(key string) string {
	return os.Getenv(key)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func parseBool(value string, defaultValue bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
