// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTP
	Logger   Logger
	SQLite   SQLite
	Auth     Auth
	Document Document
}

type HTTP struct {
	Port            int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type Logger struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type SQLite struct {
	Path string `env:"DB_PATH" envDefault:"./data/invoices.db"`
}

type Auth struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

type Document struct {
	Locale   string `env:"INVOICE_LOCALE" envDefault:"en-IN"`
	Currency string `env:"INVOICE_CURRENCY" envDefault:"INR"`
	Note     string `env:"INVOICE_NOTE" envDefault:"Thank you for choosing us!"`
}

// minSecretLen is the shortest JWT secret accepted for HS256.
const minSecretLen = 16

// New loads envPath (if it exists) into the environment and parses Config.
// Variables without a default are required.
func New(envPath string) (Config, error) {
	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	c, err := env.ParseAsWithOptions[Config](env.Options{
		RequiredIfNoDef: true,
	})
	if err != nil {
		return Config{}, err
	}

	if len(c.Auth.JWTSecret) < minSecretLen {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLen)
	}
	if c.Auth.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}

	return c, nil
}
