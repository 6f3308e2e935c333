// Package config loads service configuration from a YAML file, a .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Kitchen   KitchenConfig   `yaml:"kitchen"`
	Assistant AssistantConfig `yaml:"assistant"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	Mode        string `yaml:"mode"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Output is stdout, stderr or a file path
	Output string `yaml:"output"`
}

type DatabaseConfig struct {
	// Driver is memory, sqlite3 or postgres
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Seed   bool   `yaml:"seed"`
	Debug  bool   `yaml:"debug"`
}

type KitchenConfig struct {
	AddonSurcharge float64 `yaml:"addon_surcharge"`
	LowFundsMark   float64 `yaml:"low_funds_mark"`
	InitialFunds   float64 `yaml:"initial_funds"`
	// Resolver is substring or id
	Resolver string `yaml:"resolver"`
}

type AssistantConfig struct {
	Enabled bool `yaml:"enabled"`
	// Provider is openai, azure, anthropic or ollama
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	APIVersion  string  `yaml:"api_version"`
	Temperature float64 `yaml:"temperature"`
	MaxHistory  int     `yaml:"max_history"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			MetricsPort: 9090,
			Mode:        "release",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "thallipoli.db",
			Seed:   true,
		},
		Kitchen: KitchenConfig{
			AddonSurcharge: 2.00,
			LowFundsMark:   1000,
			InitialFunds:   5000,
			Resolver:       "substring",
		},
		Assistant: AssistantConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
			MaxHistory:  20,
		},
	}
}

// Load reads path over the defaults, then applies envFile and the
// environment. A missing file at either path is not an error.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	float := func(key string, dst *float64) error {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = f
		}
		return nil
	}
	boolean := func(key string, dst *bool) error {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
		return nil
	}

	str("THALLIPOLI_SERVER_MODE", &c.Server.Mode)
	str("THALLIPOLI_LOG_LEVEL", &c.Log.Level)
	str("THALLIPOLI_LOG_FORMAT", &c.Log.Format)
	str("THALLIPOLI_LOG_OUTPUT", &c.Log.Output)
	str("THALLIPOLI_DB_DRIVER", &c.Database.Driver)
	str("THALLIPOLI_DB_DSN", &c.Database.DSN)
	str("DATABASE_URL", &c.Database.DSN)
	str("THALLIPOLI_RESOLVER", &c.Kitchen.Resolver)
	str("THALLIPOLI_ASSISTANT_PROVIDER", &c.Assistant.Provider)
	str("THALLIPOLI_ASSISTANT_MODEL", &c.Assistant.Model)
	str("THALLIPOLI_ASSISTANT_BASE_URL", &c.Assistant.BaseURL)
	str("THALLIPOLI_ASSISTANT_API_VERSION", &c.Assistant.APIVersion)

	// provider specific keys fill the api key only when none was configured
	if c.Assistant.APIKey == "" {
		switch c.Assistant.Provider {
		case "openai":
			str("OPENAI_API_KEY", &c.Assistant.APIKey)
		case "azure":
			str("AZURE_OPENAI_API_KEY", &c.Assistant.APIKey)
			if c.Assistant.BaseURL == "" {
				str("AZURE_OPENAI_ENDPOINT", &c.Assistant.BaseURL)
			}
		case "anthropic":
			str("ANTHROPIC_API_KEY", &c.Assistant.APIKey)
		}
	}
	str("THALLIPOLI_ASSISTANT_API_KEY", &c.Assistant.APIKey)

	for _, err := range []error{
		integer("THALLIPOLI_PORT", &c.Server.Port),
		integer("THALLIPOLI_METRICS_PORT", &c.Server.MetricsPort),
		integer("THALLIPOLI_ASSISTANT_MAX_HISTORY", &c.Assistant.MaxHistory),
		boolean("THALLIPOLI_DB_SEED", &c.Database.Seed),
		boolean("THALLIPOLI_DB_DEBUG", &c.Database.Debug),
		boolean("THALLIPOLI_ASSISTANT_ENABLED", &c.Assistant.Enabled),
		float("THALLIPOLI_ADDON_SURCHARGE", &c.Kitchen.AddonSurcharge),
		float("THALLIPOLI_LOW_FUNDS_MARK", &c.Kitchen.LowFundsMark),
		float("THALLIPOLI_INITIAL_FUNDS", &c.Kitchen.InitialFunds),
		float("THALLIPOLI_ASSISTANT_TEMPERATURE", &c.Assistant.Temperature),
	} {
		if err != nil {
			return fmt.Errorf("invalid environment: %w", err)
		}
	}
	return nil
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.metrics_port %d out of range", c.Server.MetricsPort))
	}
	switch c.Database.Driver {
	case "memory", "sqlite3", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("unknown database.driver %q", c.Database.Driver))
	}
	if c.Database.Driver != "memory" && c.Database.DSN == "" {
		problems = append(problems, "database.dsn is required")
	}
	if c.Kitchen.AddonSurcharge < 0 {
		problems = append(problems, "kitchen.addon_surcharge cannot be negative")
	}
	if c.Kitchen.InitialFunds < 0 {
		problems = append(problems, "kitchen.initial_funds cannot be negative")
	}
	switch c.Kitchen.Resolver {
	case "substring", "id":
	default:
		problems = append(problems, fmt.Sprintf("unknown kitchen.resolver %q", c.Kitchen.Resolver))
	}
	if c.Assistant.Enabled {
		switch c.Assistant.Provider {
		case "openai", "azure", "anthropic":
			if c.Assistant.APIKey == "" {
				problems = append(problems, fmt.Sprintf("assistant.api_key is required for %s", c.Assistant.Provider))
			}
		case "ollama":
		default:
			problems = append(problems, fmt.Sprintf("unknown assistant.provider %q", c.Assistant.Provider))
		}
		if c.Assistant.Provider == "azure" && c.Assistant.BaseURL == "" {
			problems = append(problems, "assistant.base_url is required for azure")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
