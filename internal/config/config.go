// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// SiteURL is the public-facing URL of the SPA, used for CORS and
	// links inside the login email.
	SiteURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Auth holds authentication-related settings.
	Auth AuthConfig

	// Mail holds SMTP settings for the login-code email.
	Mail MailConfig
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// (Host, User, Password, Name) are read from separate env vars so container
// orchestrators can manage each independently. If DATABASE_URL is set, it
// takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	// User is the MariaDB username (default: "cinefil").
	User string

	// Password is the MariaDB password (default: "cinefil").
	Password string

	// Name is the database name (default: "cinefil").
	Name string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	// MaxOpenConns is the maximum number of open connections in the pool.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// ConnMaxLifetime is how long a connection can be reused.
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// Host/User/Password/Name fields using the driver's Config.FormatDSN()
// to safely handle special characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
// Allows users to set DB_HOST=mydb (gets :3306) or DB_HOST=mydb:3307 (as-is).
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// SecretKey signs session and login tokens (must be 32+ bytes in production).
	SecretKey string

	// LoginCodeTTL is how long an emailed 6-digit code stays valid.
	LoginCodeTTL time.Duration

	// SessionTTL is how long a session token stays valid.
	SessionTTL time.Duration

	// TempAuthTTL is the lifetime of the temp_login_auth marker cookie set
	// for a verified email that has no account yet.
	TempAuthTTL time.Duration

	// CookieDomain scopes auth cookies to the apex domain in production
	// (e.g. ".cinefil.me"). Empty in development.
	CookieDomain string

	// ReservedUserIDs may never be registered as handles; they collide with
	// SPA routes and static asset paths.
	ReservedUserIDs []string
}

// MailConfig holds SMTP settings for outbound mail.
type MailConfig struct {
	// Host is the SMTP server hostname. Empty disables outbound mail
	// (codes are logged instead, development only).
	Host string

	// Port is the SMTP port (default: 587).
	Port int

	// Username and Password authenticate against the SMTP server.
	Username string
	Password string

	// FromAddress and FromName form the From header.
	FromAddress string
	FromName    string

	// Encryption is "starttls" (default), "ssl", or "none".
	Encryption string
}

// defaultReservedUserIDs collide with SPA routes and static asset paths.
var defaultReservedUserIDs = []string{
	"login", "register", "admin", "terms-and-policy", "edit", "about",
	"contact", "api", "assets", "_astro", "_image", "404", "favicon.ico",
	"images", "cinefil",
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		SiteURL:  getEnv("SITE_URL", "http://localhost:4321"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "cinefil"),
			Password:        getEnv("DB_PASSWORD", "cinefil"),
			Name:            getEnv("DB_NAME", "cinefil"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Auth: AuthConfig{
			SecretKey:       getEnv("JWT_SECRET", ""),
			LoginCodeTTL:    getEnvDuration("LOGIN_CODE_TTL", 10*time.Minute),
			SessionTTL:      getEnvDuration("SESSION_TTL", 24*time.Hour),
			TempAuthTTL:     getEnvDuration("TEMP_AUTH_TTL", 15*time.Minute),
			CookieDomain:    getEnv("COOKIE_DOMAIN", ""),
			ReservedUserIDs: getEnvList("RESERVED_USER_IDS", defaultReservedUserIDs),
		},

		Mail: MailConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvInt("SMTP_PORT", 587),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			FromAddress: getEnv("MAIL_FROM_ADDRESS", "hello@cinefil.me"),
			FromName:    getEnv("MAIL_FROM_NAME", "Cinefil"),
			Encryption:  getEnv("SMTP_ENCRYPTION", "starttls"),
		},
	}

	// Validate required fields in production. Case-insensitive check catches
	// common variants like "Production", "prod", etc.
	envLower := strings.ToLower(cfg.Env)
	if envLower == "production" || envLower == "prod" {
		if cfg.Auth.SecretKey == "" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		if len(cfg.Auth.SecretKey) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if cfg.Mail.Host == "" {
			return nil, fmt.Errorf("SMTP_HOST is required in production")
		}
	}

	// Provide a dev-only default secret so local dev works without .env.
	if cfg.Auth.SecretKey == "" {
		cfg.Auth.SecretKey = "dev-secret-key-do-not-use-in-production!!"
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "24h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var or returns the default slice.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
