package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port               int           `envconfig:"PORT" default:"3000"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL        string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL           string        `envconfig:"REDIS_URL" default:""`
	SessionSecret      string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL         time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	CookieSecure       bool          `envconfig:"COOKIE_SECURE" default:"false"`
	GoogleClientID     string        `envconfig:"GOOGLE_CLIENT_ID" default:""`
	GoogleClientSecret string        `envconfig:"GOOGLE_CLIENT_SECRET" default:""`
	BaseURL            string        `envconfig:"BASE_URL" default:"http://localhost:3000"`
	BcryptCost         int           `envconfig:"BCRYPT_COST" default:"12"`
	Version            string        `envconfig:"VERSION" default:"dev"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
