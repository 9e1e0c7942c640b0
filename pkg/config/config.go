/*
Package config manages TOML config for the lookup core.

InitConfig handles automatic config file creation and loading with fallback
to defaults. LoadConfig and SaveConfig provide direct fs for runtime changes.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure.
type Config struct {
	Translator TranslatorConfig `toml:"translator"`
	Dict       DictConfig       `toml:"dict"`
}

// TranslatorConfig holds the per-session translation options.
type TranslatorConfig struct {
	SpellingHints            int    `toml:"spelling_hints"`
	AlwaysShowComments       bool   `toml:"always_show_comments"`
	EnableCorrection         bool   `toml:"enable_correction"`
	EnableCompletion         bool   `toml:"enable_completion"`
	StrictSpelling           bool   `toml:"strict_spelling"`
	MaxHomophones            int    `toml:"max_homophones"`
	MaxCorrections           int    `toml:"max_corrections"`
	Delimiters               string `toml:"delimiters"`
	DisableIncrementalSearch bool   `toml:"disable_incremental_search"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	TablePath string `toml:"table_path"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Translator: TranslatorConfig{
			SpellingHints:            0,
			AlwaysShowComments:       false,
			EnableCorrection:         false,
			EnableCompletion:         true,
			StrictSpelling:           false,
			MaxHomophones:            16,
			MaxCorrections:           4,
			Delimiters:               " '",
			DisableIncrementalSearch: false,
		},
		Dict: DictConfig{
			TablePath: "data/table.bin",
		},
	}
}

// InitConfig loads config from file or creates default if missing.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, err
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, configPath); err != nil {
			return nil, err
		}
		log.Debugf("Created default config file at: ( %s )", configPath)
		return cfg, nil
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config, using defaults: %v", err)
		return DefaultConfig(), nil
	}
	return cfg, nil
}

// LoadConfig loads from a TOML file.
func LoadConfig(configPath string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Errorf("Failed to decode config file: %v", err)
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig saves into a TOML file.
func SaveConfig(cfg *Config, configPath string) error {
	file, err := os.Create(configPath)
	if err != nil {
		log.Errorf("Failed to create config file: %v", err)
		return err
	}
	defer file.Close()
	encoder := toml.NewEncoder(file)
	return encoder.Encode(cfg)
}
