package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lingua-health/lingua/internal/config"
	"github.com/lingua-health/lingua/internal/model"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("template should decode: %v", err)
	}

	uncommented := strings.NewReplacer("# language", "language", "# store", "store", "# addr", "addr").Replace(defaultConfigTemplate())
	if err := os.WriteFile(path, []byte(uncommented), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("uncommented template should decode: %v", err)
	}
	if cfg.App.Store == nil || *cfg.App.Store != defaultStore {
		t.Fatalf("unexpected store %v", cfg.App.Store)
	}
	if cfg.Redis.Addr == nil || *cfg.Redis.Addr != defaultRedisAddr {
		t.Fatalf("unexpected redis addr %v", cfg.Redis.Addr)
	}
}

func historyFixture() []model.ScanRecord {
	return []model.ScanRecord{{
		ID:        "abc123",
		Timestamp: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		Image:     "data:image/png;base64,AAAA",
		Summary:   "Analysis shows pink color with smooth texture.",
		Results: model.AnalysisResult{
			Redness: 40, Moisture: 60, Cracks: 5,
			Color: "pink", Texture: "smooth",
			Guidance: model.Guidance{MedicalUrgency: "low"},
		},
	}}
}

func TestWriteHistoryFormats(t *testing.T) {
	for _, format := range []string{"table", "json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeHistory(&buf, historyFixture(), format, time.UTC); err != nil {
				t.Fatalf("writeHistory: %v", err)
			}
			out := buf.String()
			if !strings.Contains(out, "abc123") {
				t.Fatalf("output missing record id: %s", out)
			}
			if strings.Contains(out, "base64") {
				t.Fatalf("output should not include the image: %s", out)
			}
		})
	}

	var buf bytes.Buffer
	if err := writeHistory(&buf, historyFixture(), "csv", time.UTC); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}

func TestWriteHistoryYAMLFields(t *testing.T) {
	var buf bytes.Buffer
	if err := writeHistory(&buf, historyFixture(), "yaml", time.UTC); err != nil {
		t.Fatalf("writeHistory: %v", err)
	}
	var entries []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if len(entries) != 1 || entries[0]["urgency"] != "low" || entries[0]["color"] != "pink" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestStartupLanguage(t *testing.T) {
	appLanguage = ""
	t.Cleanup(func() { appLanguage = "" })
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "fa_IR.UTF-8")
	if got := startupLanguage(); got != "fa_IR.UTF-8" {
		t.Fatalf("expected LANG, got %q", got)
	}
	t.Setenv("LANG", "C")
	if got := startupLanguage(); got != "" {
		t.Fatalf("expected C locale to be ignored, got %q", got)
	}
	appLanguage = "de"
	if got := startupLanguage(); got != "de" {
		t.Fatalf("expected configured language, got %q", got)
	}
}
