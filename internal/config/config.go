package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort        string        `env:"SERVER_PORT" envDefault:"8080"`
	DBDriver          string        `env:"DB_DRIVER" envDefault:"mysql"`
	DatabaseDSN       string        `env:"DATABASE_DSN" envDefault:"user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"`
	RedisAddr         string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	RedisPass         string        `env:"REDIS_PASSWORD"`
	JWTSecret         string        `env:"JWT_SECRET" envDefault:"change-me"`
	JWTIssuer         string        `env:"JWT_ISSUER" envDefault:"uniportal"`
	InstitutionDomain string        `env:"INSTITUTION_DOMAIN" envDefault:"gre.ac.uk"`
	SwaggerHost       string        `env:"SWAGGER_HOST"`
	ResetDB           bool          `env:"RESET_DB" envDefault:"false"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// HTTPAddress returns the address the HTTP server binds to.
func (c *Config) HTTPAddress() string {
	return ":" + c.ServerPort
}
