// Package config handles chapterize configuration loading.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the tool-wide defaults. Command-line flags override these.
type Config struct {
	Strategy         string `mapstructure:"strategy" yaml:"strategy"`
	Sensitivity      string `mapstructure:"sensitivity" yaml:"sensitivity"`
	OutlineLevel     int    `mapstructure:"outline_level" yaml:"outline_level"`
	Pattern          string `mapstructure:"pattern" yaml:"pattern"`
	OutputDir        string `mapstructure:"output_dir" yaml:"output_dir"`
	PreserveMetadata bool   `mapstructure:"preserve_metadata" yaml:"preserve_metadata"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Strategy:         "hybrid",
		Sensitivity:      "medium",
		OutlineLevel:     0,
		Pattern:          "{index}_{title}",
		OutputDir:        "",
		PreserveMetadata: true,
	}
}

// Manager handles loading configuration from defaults, file and environment.
type Manager struct {
	config *Config
}

// NewManager creates a new config manager and loads initial config.
// homeDir overrides the default ~/.chapterize config search location.
func NewManager(cfgFile, homeDir string) (*Manager, error) {
	cm := &Manager{}

	if err := cm.initViper(cfgFile, homeDir); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile, homeDir string) error {
	defaults := DefaultConfig()
	viper.SetDefault("strategy", defaults.Strategy)
	viper.SetDefault("sensitivity", defaults.Sensitivity)
	viper.SetDefault("outline_level", defaults.OutlineLevel)
	viper.SetDefault("pattern", defaults.Pattern)
	viper.SetDefault("output_dir", defaults.OutputDir)
	viper.SetDefault("preserve_metadata", defaults.PreserveMetadata)

	// Environment variables with CHAPTERIZE_ prefix
	viper.SetEnvPrefix("CHAPTERIZE")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if homeDir != "" {
			viper.AddConfigPath(homeDir)
		} else {
			viper.AddConfigPath("$HOME/.chapterize")
		}
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration.
func (cm *Manager) Get() *Config {
	return cm.config
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Chapterize configuration
# Values here set the defaults; command-line flags override them.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
