package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "supersecretjwtkey"

// Auth modes
const (
	AuthModeJWT      = "jwt"
	AuthModeFirebase = "firebase"
)

type Config struct {
	Port                    string        `mapstructure:"PORT"`
	Env                     string        `mapstructure:"APP_ENV"`
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	AuthMode                string        `mapstructure:"AUTH_MODE"`
	JWTSecret               string        `mapstructure:"JWT_SECRET"`
	FirebaseCredentialsPath string        `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	PostgresURL             string        `mapstructure:"POSTGRES_CONN_STR"`
	MongoURI                string        `mapstructure:"MONGO_URI"`
	MongoDatabase           string        `mapstructure:"MONGO_DATABASE"`
	RedisURL                string        `mapstructure:"REDIS_URL"`
	MetricsPort             string        `mapstructure:"METRICS_PORT"`
	LikersCacheTTL          time.Duration `mapstructure:"LIKERS_CACHE_TTL"`
	FeedDefaultLimit        int           `mapstructure:"FEED_DEFAULT_LIMIT"`
	FeedMaxLimit            int           `mapstructure:"FEED_MAX_LIMIT"`
}

// Load reads .env (when present) and the process environment into a Config
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTH_MODE", AuthModeJWT)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json")
	v.SetDefault("POSTGRES_CONN_STR", "")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "kratoshub")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("LIKERS_CACHE_TTL", "2m")
	v.SetDefault("FEED_DEFAULT_LIMIT", 10)
	v.SetDefault("FEED_MAX_LIMIT", 50)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with production rules
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.FeedDefaultLimit < 1 || c.FeedMaxLimit < c.FeedDefaultLimit {
		return errors.New("FEED_DEFAULT_LIMIT must be positive and not above FEED_MAX_LIMIT")
	}

	switch c.AuthMode {
	case AuthModeJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required")
		}
		if c.IsProduction() {
			if c.JWTSecret == defaultJWTSecret {
				return errors.New("JWT_SECRET must be changed from the default value in production")
			}
			if len(c.JWTSecret) < 32 {
				return errors.New("JWT_SECRET must be at least 32 characters in production")
			}
		}
	case AuthModeFirebase:
		if c.FirebaseCredentialsPath == "" {
			return errors.New("FIREBASE_CREDENTIALS_PATH is required when AUTH_MODE is firebase")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	return nil
}
