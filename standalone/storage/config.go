package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
)

// LoadConfig loads config.json from the data directory. A missing file
// yields the defaults.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads a config file. Absent fields are defaulted and
// out-of-range fields are reset with a logged warning. A corrupted file
// is an error.
func LoadConfigFile(path string) (*Config, error) {
	jsonBytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &Config{}
	if err := json.Unmarshal(jsonBytes, config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	ApplyMissingDefaults(config, detectPresentKeys(jsonBytes))

	if problems := ValidateConfig(config); len(problems) > 0 {
		for _, p := range problems {
			log.Printf("Warning: invalid config value %s, using default", p)
		}
		CorrectConfig(config)
	}

	return config, nil
}

// SaveConfig saves the configuration to config.json atomically.
func SaveConfig(config *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return AtomicWriteJSON(path, config)
}

// CreateConfigIfMissing writes a default config.json if none exists.
func CreateConfigIfMissing() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return SaveConfig(DefaultConfig())
	}
	return nil
}

// DeleteConfig removes config.json.
func DeleteConfig() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
