// Package config loads swarm configuration from YAML. Values of the form
// ${ENV_VAR} are expanded from the environment before parsing, so API keys
// and DSNs stay out of checked-in files.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Defaults  Defaults  `yaml:"defaults"`
	Providers Providers `yaml:"providers"`
	Logging   Logging   `yaml:"logging"`
	Session   Session   `yaml:"session"`
	Queue     Queue     `yaml:"queue"`
}

// Defaults configure runner behavior shared by all agents.
type Defaults struct {
	Model      string `yaml:"model"`
	MaxTurns   int    `yaml:"max_turns"`
	TokenLimit int    `yaml:"token_limit"`
}

// Provider holds credentials and endpoint overrides for one model provider.
type Provider struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// Providers groups the supported model providers.
type Providers struct {
	OpenAI    Provider `yaml:"openai"`
	Anthropic Provider `yaml:"anthropic"`
}

// Logging configures the default logger.
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Session selects the session store backend.
type Session struct {
	Driver string `yaml:"driver"` // memory, postgres, sqlite
	DSN    string `yaml:"dsn"`
}

// Queue configures the NATS run queue.
type Queue struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Defaults: Defaults{
			Model:    "gpt-4o-mini",
			MaxTurns: 10,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Session: Session{
			Driver: "memory",
		},
		Queue: Queue{
			URL:     "nats://127.0.0.1:4222",
			Subject: "agentswarm.runs",
		},
	}
}

// Load returns the configuration from the given YAML path layered over
// Default(). A missing file is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(expandEnv(data), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	return cfg, nil
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv substitutes ${VAR} references with environment values. Unset
// variables expand to the empty string. Bare $VAR is left untouched so DSN
// passwords survive.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// Validate checks enum fields and cross-field requirements.
func (c *Config) Validate() error {
	if c.Defaults.MaxTurns < 0 {
		return errors.New("defaults.max_turns must be >= 0")
	}
	if c.Defaults.TokenLimit < 0 {
		return errors.New("defaults.token_limit must be >= 0")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	switch c.Session.Driver {
	case "", "memory":
	case "postgres", "sqlite":
		if c.Session.DSN == "" {
			return fmt.Errorf("session.dsn is required for driver %q", c.Session.Driver)
		}
	default:
		return fmt.Errorf("session.driver %q is not one of memory, postgres, sqlite", c.Session.Driver)
	}

	return nil
}
