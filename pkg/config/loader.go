package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration from path, applies environment overrides,
// and validates the result. A missing file is not an error; defaults are
// used. path may be empty to skip the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Defaults only.
		default:
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides lets deployment environments adjust the file-based
// configuration without editing it.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COACH_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("COACH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("COACH_MODEL"); v != "" {
		cfg.Provider.Model = v
		cfg.Provider.Name = ""
	}
	if v := os.Getenv("COACH_PROVIDER"); v != "" {
		cfg.Provider.Name = v
	}
	if v := os.Getenv("COACH_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("COACH_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("COACH_PROMETHEUS_URL"); v != "" {
		cfg.Metrics.PrometheusURL = v
	}
	if v := os.Getenv("COACH_DEFAULT_LANGUAGE"); v != "" {
		cfg.DefaultLanguage = v
	}
}
