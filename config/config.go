package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers accepted by Storage.Driver.
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
)

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address         string        `yaml:"address"`
		Port            string        `yaml:"port" validate:"required,numeric"`
		ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
		WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	} `yaml:"http"`

	// Persistence gateway selection
	Storage struct {
		Driver      string `yaml:"driver" validate:"oneof=memory bolt postgres"`
		BoltPath    string `yaml:"bolt_path"`
		DatabaseURL string `yaml:"database_url"`
	} `yaml:"storage"`

	Log struct {
		Level  string `yaml:"level" validate:"oneof=DEBUG INFO WARN ERROR"`
		Format string `yaml:"format" validate:"oneof=json text"`
	} `yaml:"log"`
}

var validate = validator.New()

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, describeFieldError(fe))
		}
	}

	switch c.Storage.Driver {
	case DriverBolt:
		if strings.TrimSpace(c.Storage.BoltPath) == "" {
			errs = append(errs, "storage.bolt_path is required when storage.driver is bolt")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DatabaseURL) == "" {
			errs = append(errs, "storage.database_url is required when storage.driver is postgres")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be positive", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	default:
		return fmt.Sprintf("%s failed %q check", field, fe.Tag())
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	cfg := &Config{}

	cfg.HTTP.Address = "127.0.0.1"
	cfg.HTTP.Port = "8080"
	cfg.HTTP.ReadTimeout = 10 * time.Second
	cfg.HTTP.WriteTimeout = 15 * time.Second
	cfg.HTTP.ShutdownTimeout = 10 * time.Second

	cfg.Storage.Driver = DriverBolt
	cfg.Storage.BoltPath = "epg-manager.db"

	cfg.Log.Level = "INFO"
	cfg.Log.Format = "json"

	return cfg
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load reads an optional .env file, loads configuration from a file (if present)
// and applies environment variable overrides
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg = Default()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.HTTP.Address + ":" + c.HTTP.Port
}
