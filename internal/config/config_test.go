package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if cfg.App.Language != nil || cfg.Analysis.Model != nil || cfg.Redis.Addr != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
language = "fa"
store = "redis"
trend-window = 14

[analysis]
model = "gpt-4o"
timeout = "45s"

[redis]
addr = "localhost:6379"
db = 2
namespace = "home"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Language == nil || *cfg.App.Language != "fa" {
		t.Fatalf("unexpected language %v", cfg.App.Language)
	}
	if cfg.App.TrendWindow == nil || *cfg.App.TrendWindow != 14 {
		t.Fatalf("unexpected trend window %v", cfg.App.TrendWindow)
	}
	if cfg.App.DBPath != nil {
		t.Fatalf("expected unset db-path to stay nil")
	}
	if cfg.Analysis.Timeout == nil || cfg.Analysis.Timeout.Duration != 45*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Analysis.Timeout)
	}
	if cfg.Redis.DB == nil || *cfg.Redis.DB != 2 || *cfg.Redis.Namespace != "home" {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"unknown key":  "[app]\nlangauge = \"fa\"\n",
		"bad duration": "[analysis]\ntimeout = \"soon\"\n",
		"bad syntax":   "[app\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "lingua", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "lingua", "lingua.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "lingua", "lingua.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
