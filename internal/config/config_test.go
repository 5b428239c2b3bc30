package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sflabel/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsForMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to be reported as absent")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %s", resolved)
	}
	if cfg.Cap() != 3 {
		t.Fatalf("expected default cap 3, got %d", cfg.Cap())
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadParsesAnnotationSection(t *testing.T) {
	path := writeConfig(t, `
[annotation]
max_annotators_per_item = 5
required_unique_for_completion = 3
enable_file_backup = false
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Cap() != 5 || cfg.RequiredUnique() != 3 {
		t.Fatalf("unexpected annotation values: %+v", cfg.Annotation)
	}
	if cfg.Annotation.EnableFileBackup {
		t.Fatal("expected file backup disabled")
	}
}

func TestLoadClampsQuorumOverrideToCap(t *testing.T) {
	path := writeConfig(t, `
[annotation]
max_annotators_per_item = 2
required_unique_for_completion = 7
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RequiredUnique() != 2 {
		t.Fatalf("expected override clamped to cap, got %d", cfg.RequiredUnique())
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	path := writeConfig(t, `
[logging]
format = "xml"
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

func TestLoadExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
data_dir = "`+dir+`/data"
dataset_path = "`+dir+`/dataset.jsonl"
log_dir = "`+dir+`/logs"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("expected absolute data dir, got %s", cfg.Paths.DataDir)
	}
	if cfg.LabelDBPath() != filepath.Join(dir, "data", "labels.db") {
		t.Fatalf("unexpected label db path: %s", cfg.LabelDBPath())
	}
	if cfg.QueueDBPath() != filepath.Join(dir, "data", "queues.db") {
		t.Fatalf("unexpected queue db path: %s", cfg.QueueDBPath())
	}
	if cfg.LabelBackupDir() != filepath.Join(dir, "data", "labels") {
		t.Fatalf("unexpected backup dir: %s", cfg.LabelBackupDir())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if _, err := os.Stat(cfg.LabelBackupDir()); err != nil {
		t.Fatalf("backup dir not created: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "max_annotators_per_item") {
		t.Fatal("sample config missing annotation settings")
	}
	cfg, _, _, err := config.Load(target)
	if err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if cfg.Cap() != 3 {
		t.Fatalf("unexpected cap from sample: %d", cfg.Cap())
	}
}
