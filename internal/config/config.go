// Package config loads the process configuration once at startup. The
// resulting struct is read-only afterwards and handed explicitly to the
// components that need it; nothing reads the environment past this point.
package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const envFile = ".env"

// Config holds the runtime configuration for the server and the worker.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"INFO"`
	Port        string `envconfig:"PORT" default:":8080"`
	ClientURL   string `envconfig:"CLIENT_URL" default:"http://localhost:5173"`

	DBHost    string        `envconfig:"DB_HOST" required:"true"`
	DBPort    string        `envconfig:"DB_PORT" default:"5432"`
	DBUser    string        `envconfig:"DB_USER" required:"true"`
	DBPass    string        `envconfig:"DB_PASS" required:"true"`
	DBName    string        `envconfig:"DB_NAME" required:"true"`
	DBTimeout time.Duration `envconfig:"DB_TIMEOUT" default:"10s"`

	AccessTokenSecret  string        `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	RefreshTokenSecret string        `envconfig:"REFRESH_TOKEN_SECRET" required:"true"`
	JWTIssuer          string        `envconfig:"JWT_ISSUER" default:"server-identity"`
	AccessTokenTTL     time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL    time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`

	BcryptCost        int           `envconfig:"BCRYPT_COST" default:"12"`
	EphemeralTokenTTL time.Duration `envconfig:"EPHEMERAL_TOKEN_TTL" default:"1h"`

	MailgunAPIKey string `envconfig:"MAILGUN_API_KEY"`
	MailDomain    string `envconfig:"MAIL_DOMAIN" default:"mail.server-identity.dev"`
	MailFrom      string `envconfig:"MAIL_FROM" default:"Server Identity <team@mail.server-identity.dev>"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
}

// Load reads the .env file when present, then the process environment.
// The two signing secrets must be set and must differ, so that compromise
// of one token class cannot forge the other.
func Load() (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, errors.New("access and refresh token secrets must be distinct")
	}
	return &cfg, nil
}

// IsProduction reports whether the process runs in production. Mail
// delivery is skipped outside of production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
