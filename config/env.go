package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// envParser collects environment variable parsing errors so they can be
// reported together
type envParser struct {
	errors []string
}

func (p *envParser) parseString(envName string, target *string) {
	if val := os.Getenv(envName); val != "" {
		*target = val
	}
}

// parseDuration parses a duration environment variable, ensuring it's positive
func (p *envParser) parseDuration(envName string, target *time.Duration) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid duration format (use '30s', '1m', etc.)", envName))
		return
	}

	if duration <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = duration
}

// parseEnum parses an enum environment variable, normalizing it with normalize
func (p *envParser) parseEnum(envName string, target *string, normalize func(string) string, validValues ...string) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	normalized := normalize(strings.TrimSpace(val))
	for _, v := range validValues {
		if v == normalized {
			*target = normalized
			return
		}
	}

	p.errors = append(p.errors, fmt.Sprintf("%s must be one of: %s", envName, strings.Join(validValues, ", ")))
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	p := &envParser{}

	p.parseString("HTTP_ADDRESS", &cfg.HTTP.Address)
	p.parseString("HTTP_PORT", &cfg.HTTP.Port)
	p.parseDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout)
	p.parseDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout)
	p.parseDuration("HTTP_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout)

	p.parseEnum("STORAGE_DRIVER", &cfg.Storage.Driver, strings.ToLower, DriverMemory, DriverBolt, DriverPostgres)
	p.parseString("BOLT_PATH", &cfg.Storage.BoltPath)
	p.parseString("DATABASE_URL", &cfg.Storage.DatabaseURL)

	p.parseEnum("LOG_LEVEL", &cfg.Log.Level, strings.ToUpper, "DEBUG", "INFO", "WARN", "ERROR")
	p.parseEnum("LOG_FORMAT", &cfg.Log.Format, strings.ToLower, "json", "text")

	if len(p.errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(p.errors, "\n  - "))
	}

	return nil
}
