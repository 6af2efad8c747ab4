package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	JWTSecret          string
	CORSAllowedOrigins []string
	RateLimit          string

	// Idempotency guard
	IdempotencyTTL     time.Duration
	IdempotencyBackend string // "pgsql" (default) or "redis"
	IdempotencySweep   time.Duration
	RedisURL           string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("IDEMPOTENCY_BACKEND", "pgsql")
	viper.SetDefault("IDEMPOTENCY_SWEEP_INTERVAL", "1h")
	viper.SetDefault("REDIS_URL", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.CORSAllowedOrigins = viper.GetStringSlice("CORS_ALLOWED_ORIGINS")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.IdempotencyTTL = parseDurationWithDefault("IDEMPOTENCY_TTL", 24*time.Hour)
	cfg.IdempotencySweep = parseDurationWithDefault("IDEMPOTENCY_SWEEP_INTERVAL", time.Hour)

	cfg.IdempotencyBackend = viper.GetString("IDEMPOTENCY_BACKEND")
	cfg.RedisURL = viper.GetString("REDIS_URL")
	if cfg.IdempotencyBackend == "redis" && cfg.RedisURL == "" {
		log.Println("Warning: IDEMPOTENCY_BACKEND=redis but REDIS_URL not set. Falling back to pgsql.")
		cfg.IdempotencyBackend = "pgsql"
	}

	return cfg, nil
}

func parseDurationWithDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
