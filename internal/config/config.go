// Package config loads BIQL's optional YAML configuration file, layered
// under environment variables and command-line flags (§6). It is a
// generalization of the teacher's internal/config/config.go: the same
// Load/resolveConfigPath/getDefaultConfig shape, with cio's GCS mappings
// and server section replaced by BIQL's dataset-path and output-format
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = "biql"
	ConfigFileName    = "config.yaml"
	FallbackConfigDir = ".biql"

	EnvDatasetPath  = "BIQL_DATASET_PATH"
	EnvOutputFormat = "BIQL_OUTPUT_FORMAT"

	DefaultOutputFormat = "json"
)

// Config is BIQL's layered configuration: defaults from file, overridden
// by environment variables, overridden again by explicit CLI flags (the
// CLI layer applies that last step; Load only merges file + env).
type Config struct {
	DatasetPath  string `yaml:"dataset_path"`
	OutputFormat string `yaml:"output_format"`
	Debug        bool   `yaml:"debug"`

	filePath string
}

// GetFilePath returns the path the config was loaded from (or would be
// saved to), mirroring the teacher's accessor of the same name.
func (c *Config) GetFilePath() string {
	return c.filePath
}

// Load reads configPath (or auto-detects it), then applies environment
// variable overrides, matching the teacher's file-then-env layering in
// Load/expandEnvVars.
func Load(configPath string) (*Config, error) {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}

	cfg := getDefaultConfig(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()

	return cfg, nil
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.filePath == "" {
		return fmt.Errorf("no config file path set")
	}
	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func resolveConfigPath(configPath string) (string, error) {
	if configPath != "" {
		return configPath, nil
	}

	if envPath := os.Getenv("BIQL_CONFIG"); envPath != "" {
		return envPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	primaryPath := filepath.Join(homeDir, ".config", DefaultConfigDir, ConfigFileName)
	if _, err := os.Stat(primaryPath); err == nil {
		return primaryPath, nil
	}

	fallbackPath := filepath.Join(homeDir, FallbackConfigDir, ConfigFileName)
	if _, err := os.Stat(fallbackPath); err == nil {
		return fallbackPath, nil
	}

	return primaryPath, nil
}

// getDefaultConfig returns an empty-valued config: callers (the CLI) apply
// their own fallback default when OutputFormat/DatasetPath come back
// unset, so an unconfigured run is distinguishable from one that set
// "table" explicitly.
func getDefaultConfig(filePath string) *Config {
	return &Config{filePath: filePath}
}

// applyEnv lets BIQL_DATASET_PATH/BIQL_OUTPUT_FORMAT override the file's
// values, the same precedence the teacher gives CIO_PARALLEL/CIO_CONFIG
// (env beats file, an explicit flag beats both).
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatasetPath); v != "" {
		c.DatasetPath = v
	}
	if v := os.Getenv(EnvOutputFormat); v != "" {
		c.OutputFormat = v
	}
}
