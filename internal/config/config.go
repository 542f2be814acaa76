package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "fallback-secret-key-for-dev-only"

// Config holds application configuration
type Config struct {
	// Server
	Env               string
	Port              string
	LogLevel          string
	CORSAllowedOrigin string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// JWT
	JWTSecret            string
	JWTExpirationDur     time.Duration
	JWTRefreshExpiration time.Duration

	// Pipeline
	PipelineAPIKey string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:               getEnv("ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "*"),

		// Database
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "cashstuffing"),
		DBPassword: getEnv("DB_PASSWORD", "cashstuffing"),
		DBName:     getEnv("DB_NAME", "cashstuffing"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "cashstuffing.db"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", devJWTSecret),

		// Pipeline
		PipelineAPIKey: getEnv("PIPELINE_API_KEY", ""),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 30*time.Minute)
	config.JWTRefreshExpiration = getDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour)

	if config.DBDriver != "postgres" && config.DBDriver != "sqlite" {
		return nil, errors.New("DB_DRIVER must be postgres or sqlite")
	}
	if config.Env == "production" && config.JWTSecret == devJWTSecret {
		return nil, errors.New("JWT_SECRET must be set in production")
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
