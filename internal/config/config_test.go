package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
faq:
  path: "./faq.yaml"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if want := filepath.Join(dir, "faq.yaml"); cfg.FAQ.Path != want {
		t.Errorf("faq path = %s, want %s", cfg.FAQ.Path, want)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if cfg.Storage.TranscriptPath != "" {
		t.Errorf("transcript should stay disabled when unset, got %q", cfg.Storage.TranscriptPath)
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
faq:
  path: "./data/faq/queries.yaml"
storage:
  transcript_path: "./data/transcripts.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantFAQ := filepath.Join(dir, "data", "faq", "queries.yaml")
	if cfg.FAQ.Path != wantFAQ {
		t.Errorf("faq path = %s, want %s", cfg.FAQ.Path, wantFAQ)
	}
	wantDB := filepath.Join(dir, "data", "transcripts.db")
	if cfg.Storage.TranscriptPath != wantDB {
		t.Errorf("transcript_path = %s, want %s", cfg.Storage.TranscriptPath, wantDB)
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"port out of range", "server:\n  port: 70000\n", "invalid config"},
		{"blank origin", "server:\n  allowed_origins: [\"\"]\n", "invalid config"},
		{"not yaml", "server: [", "failed to parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("default allowed origins: got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.FAQ.Path != "./faq.yaml" {
		t.Errorf("default faq path: got %s", cfg.FAQ.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestFAQConfig_WatchOrDefault(t *testing.T) {
	t.Run("nil_returns_false", func(t *testing.T) {
		f := &FAQConfig{}
		if got := f.WatchOrDefault(); got {
			t.Errorf("WatchOrDefault() = %v, want false", got)
		}
	})
	t.Run("true_returns_true", func(t *testing.T) {
		v := true
		f := &FAQConfig{Watch: &v}
		if got := f.WatchOrDefault(); !got {
			t.Errorf("WatchOrDefault() = %v, want true", got)
		}
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server: ServerConfig{Host: "localhost", Port: 9090},
		FAQ:    FAQConfig{Path: "/srv/faq.yaml"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.FAQ.Path != "/srv/faq.yaml" {
		t.Errorf("loaded faq path: got %s", loaded.FAQ.Path)
	}
}
