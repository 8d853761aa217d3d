package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port              string        `mapstructure:"PORT"`
	GinMode           string        `mapstructure:"GIN_MODE"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	RedisURL          string        `mapstructure:"REDIS_URL"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	CORSOrigins       string        `mapstructure:"CORS_ORIGINS"`
	SessionTokenTTL   time.Duration `mapstructure:"SESSION_TOKEN_TTL"`
	MobileTokenTTL    time.Duration `mapstructure:"MOBILE_TOKEN_TTL"`
	SocketTokenTTL    time.Duration `mapstructure:"SOCKET_TOKEN_TTL"`
	DispatchWorkers   int           `mapstructure:"DISPATCH_WORKERS"`
	DispatchQueueSize int           `mapstructure:"DISPATCH_QUEUE_SIZE"`
	ReconcileSchedule string        `mapstructure:"RECONCILE_SCHEDULE"`
}

var defaults = map[string]any{
	"PORT":                "8080",
	"GIN_MODE":            "release",
	"LOG_LEVEL":           "info",
	"DATABASE_URL":        "",
	"REDIS_URL":           "",
	"JWT_SECRET":          "",
	"CORS_ORIGINS":        "*",
	"SESSION_TOKEN_TTL":   "168h",
	"MOBILE_TOKEN_TTL":    "720h",
	"SOCKET_TOKEN_TTL":    "1h",
	"DISPATCH_WORKERS":    4,
	"DISPATCH_QUEUE_SIZE": 1024,
	"RECONCILE_SCHEDULE":  "@every 5m",
}

// LoadConfig loads the configuration from a .env file in dir and environment variables.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	if c.DispatchWorkers < 1 {
		return fmt.Errorf("config: DISPATCH_WORKERS must be positive, got %d", c.DispatchWorkers)
	}
	if c.DispatchQueueSize < 0 {
		return fmt.Errorf("config: DISPATCH_QUEUE_SIZE must not be negative, got %d", c.DispatchQueueSize)
	}
	return nil
}
