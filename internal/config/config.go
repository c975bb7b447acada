package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "travelease-development-secret"

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Relational database
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBDSN          string
	DBMaxOpenConns int

	JWTSecret  string
	JWTExpiry  time.Duration
	JWTJWKSURL string

	CORSAllowOrigins []string

	// Saved carts; empty URI disables the cart routes
	MongoDBURI      string
	MongoDBPassword string
	MongoDBDatabase string

	SeedPackages bool
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "3000"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		DBDriver:        strings.ToLower(getEnvWithDefault("DB_DRIVER", "mysql")),
		DBHost:          getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:          os.Getenv("DB_PORT"),
		DBUser:          getEnvWithDefault("DB_USER", "root"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          getEnvWithDefault("DB_NAME", "travelease"),
		DBDSN:           os.Getenv("DB_DSN"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTJWKSURL:      os.Getenv("JWT_JWKS_URL"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		MongoDBDatabase: getEnvWithDefault("MONGODB_DATABASE", "travelease"),
	}

	maxConns, err := strconv.Atoi(getEnvWithDefault("DB_MAX_OPEN_CONNS", "10"))
	if err != nil || maxConns <= 0 {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS must be a positive integer")
	}
	cfg.DBMaxOpenConns = maxConns

	expiry, err := time.ParseDuration(getEnvWithDefault("JWT_EXPIRY", "168h"))
	if err != nil || expiry <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRY must be a positive duration: %q", os.Getenv("JWT_EXPIRY"))
	}
	cfg.JWTExpiry = expiry

	seed, err := strconv.ParseBool(getEnvWithDefault("SEED_PACKAGES", "true"))
	if err != nil {
		return nil, fmt.Errorf("SEED_PACKAGES must be a boolean: %v", err)
	}
	cfg.SeedPackages = seed

	cfg.CORSAllowOrigins = splitList(getEnvWithDefault("CORS_ALLOW_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields LoadConfig cannot default safely.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be one of mysql, postgres, sqlite (got %q)", c.DBDriver)
	}

	if c.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		slog.Warn("JWT_SECRET not set, using the development secret. Tokens will not be portable across environments.")
		c.JWTSecret = devJWTSecret
	}

	if c.MongoDBURI != "" && strings.Contains(c.MongoDBURI, "<password>") && c.MongoDBPassword == "" {
		return fmt.Errorf("MONGODB_PASSWORD is required when MONGODB_URI contains a <password> placeholder")
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) CartSyncEnabled() bool {
	return c.MongoDBURI != ""
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
