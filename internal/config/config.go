package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"

	"github.com/kursadbilgin/auth-gate/internal/domain"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL string `env:"RABBITMQ_URL,required=true"`
	RedisURL    string `env:"REDIS_URL,required=true"`

	// SigningKey has no default on purpose: a process without an explicit key
	// must refuse to start rather than issue tokens anyone can forge.
	SigningKey string `env:"SIGNING_KEY,required=true"`

	MaxAttempts          int `env:"MAX_ATTEMPTS,default=5"`
	AttemptWindowMinutes int `env:"ATTEMPT_WINDOW_MINUTES,default=15"`
	LockoutWindowMinutes int `env:"LOCKOUT_WINDOW_MINUTES,default=15"`
	AttemptRetentionDays int `env:"ATTEMPT_RETENTION_DAYS,default=1"`
	TokenExpiryHours     int `env:"TOKEN_EXPIRY_HOURS,default=8"`

	LoginRatePerMinute int    `env:"LOGIN_RATE_PER_MINUTE,default=30"`
	APIPort            int    `env:"API_PORT,default=8080"`
	LogLevel           string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Policy maps the env-provided lockout knobs onto the domain policy.
func (c *Config) Policy() domain.Policy {
	return domain.Policy{
		MaxAttempts:   c.MaxAttempts,
		AttemptWindow: time.Duration(c.AttemptWindowMinutes) * time.Minute,
		LockoutWindow: time.Duration(c.LockoutWindowMinutes) * time.Minute,
		Retention:     time.Duration(c.AttemptRetentionDays) * 24 * time.Hour,
	}
}

// TokenExpiry returns the configured token lifetime.
func (c *Config) TokenExpiry() time.Duration {
	return time.Duration(c.TokenExpiryHours) * time.Hour
}
