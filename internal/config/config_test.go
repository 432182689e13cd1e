package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CADENCE_DB", "/tmp/other.db")
	t.Setenv("CADENCE_LOG_LEVEL", "DEBUG")
	t.Setenv("CADENCE_PREVIEW_COUNT", "9")
	t.Setenv("CADENCE_JSON", "true")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/other.db" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected env overrides: %+v", cfg)
	}
	if cfg.PreviewCount != 9 || !cfg.JSON {
		t.Fatalf("unexpected env overrides: %+v", cfg)
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	body := "db: tracker.db\nlog-level: error\npreview-count: 0\n"
	if err := os.WriteFile(filepath.Join(dir, "cadence.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "tracker.db" || cfg.LogLevel != "error" {
		t.Fatalf("unexpected file values: %+v", cfg)
	}
	if cfg.PreviewCount != Default().PreviewCount {
		t.Fatalf("non-positive preview count must fall back to default, got %d", cfg.PreviewCount)
	}
}

func TestRejectsUnknownLevel(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CADENCE_LOG_LEVEL", "loud")
	if _, err := Load(NewViper()); err == nil {
		t.Fatal("expected unknown level error")
	}
}
