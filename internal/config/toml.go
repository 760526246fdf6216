// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	App      AppConfig      `toml:"app"`
	Analysis AnalysisConfig `toml:"analysis"`
	Redis    RedisConfig    `toml:"redis"`
}

// AppConfig maps session and storage settings.
type AppConfig struct {
	Language    *string `toml:"language"`
	Store       *string `toml:"store"`
	DBPath      *string `toml:"db-path"`
	TrendWindow *int    `toml:"trend-window"`
	ShareURL    *string `toml:"share-url"`
}

// AnalysisConfig maps the AI service settings.
type AnalysisConfig struct {
	Model          *string   `toml:"model"`
	ChatModel      *string   `toml:"chat-model"`
	TranslateModel *string   `toml:"translate-model"`
	BaseURL        *string   `toml:"base-url"`
	APIKeyEnv      *string   `toml:"api-key-env"`
	Timeout        *Duration `toml:"timeout"`
}

// RedisConfig maps the redis store backend settings.
type RedisConfig struct {
	Addr      *string `toml:"addr"`
	Password  *string `toml:"password"`
	DB        *int    `toml:"db"`
	Namespace *string `toml:"namespace"`
}

// Duration decodes TOML strings such as "45s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
