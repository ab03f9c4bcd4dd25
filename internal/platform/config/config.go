// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the server.
type Config struct {
	Port               string        `env:"PORT"                  envDefault:"8080"`
	HelloPath          string        `env:"HELLO_PATH"            envDefault:"/hello"`
	DocsPath           string        `env:"DOCS_PATH"             envDefault:"/api-docs"`
	LogLevel           string        `env:"LOG_LEVEL"             envDefault:"info"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"0"`
	RequestMaxBytes    int64         `env:"REQUEST_MAX_BYTES"     envDefault:"1048576"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT"      envDefault:"10s"`
	// ProjectID enables Cloud Trace correlation in logs; GCP_PROJECT is the fallback.
	ProjectID string `env:"GOOGLE_CLOUD_PROJECT,expand" envDefault:"${GCP_PROJECT}"`
}

// Paths owned by the server besides DocsPath. The hello route must not shadow them.
const (
	HealthPath  = "/health"
	OpenAPIPath = "/openapi"
	SchemasPath = "/schemas"
)

// Addr returns the listen address for http.Server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load reads an optional .env file, then parses and validates the environment.
// Variables already present in the environment take precedence over .env entries.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env.Parse cannot.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if err := c.validateHelloPath(); err != nil {
		errs = append(errs, err)
	}
	if !strings.HasPrefix(c.DocsPath, "/") {
		errs = append(errs, fmt.Errorf("DOCS_PATH %q must start with /", c.DocsPath))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be >= 0, got %d", c.RateLimitPerMinute))
	}
	if c.RequestMaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_MAX_BYTES must be > 0, got %d", c.RequestMaxBytes))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0, got %s", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}

func (c Config) validateHelloPath() error {
	p := c.HelloPath
	switch {
	case !strings.HasPrefix(p, "/"):
		return fmt.Errorf("HELLO_PATH %q must start with /", p)
	case strings.ContainsAny(p, "{}*"):
		return fmt.Errorf("HELLO_PATH %q must be a literal path without {, } or *", p)
	case p == HealthPath:
		return fmt.Errorf("HELLO_PATH %q collides with the health check", p)
	}
	for _, reserved := range []string{c.DocsPath, OpenAPIPath, SchemasPath} {
		if reserved != "" && reserved != "/" && strings.HasPrefix(p, reserved) {
			return fmt.Errorf("HELLO_PATH %q collides with %s", p, reserved)
		}
	}
	return nil
}
