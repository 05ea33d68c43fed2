// Package config provides configuration loading and structs for the faqnav server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	FAQ     FAQConfig     `yaml:"faq"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host" validate:"required"`
	Port           int      `yaml:"port" validate:"gte=1,lte=65535"`
	AllowedOrigins []string `yaml:"allowed_origins" validate:"min=1,dive,required"`
}

// FAQConfig locates the FAQ document.
type FAQConfig struct {
	Path  string `yaml:"path" validate:"required"`
	Watch *bool  `yaml:"watch"`
}

// WatchOrDefault returns whether to reload the FAQ on change; defaults to false when unset.
func (f *FAQConfig) WatchOrDefault() bool {
	if f.Watch != nil {
		return *f.Watch
	}
	return false
}

// StorageConfig holds paths for optional persistent data.
type StorageConfig struct {
	// TranscriptPath is the SQLite file for session transcripts. Empty disables them.
	TranscriptPath string `yaml:"transcript_path"`
}

var validate = validator.New()

// Load reads and parses the config file at path, expands paths, applies defaults
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.FAQ.Path = expandPath(cfg.FAQ.Path, configDir)
	if cfg.Storage.TranscriptPath != "" {
		cfg.Storage.TranscriptPath = expandPath(cfg.Storage.TranscriptPath, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
