package testsupport

import (
	"path/filepath"
	"testing"

	"sflabel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.DatasetPath = filepath.Join(base, "dataset.jsonl")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Annotation.EnableFileBackup = false

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithCap sets the assignment cap on the test config.
func WithCap(cap int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Annotation.MaxAnnotatorsPerItem = cap
	}
}

// WithFileBackup enables the JSONL label backup on the test config.
func WithFileBackup() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Annotation.EnableFileBackup = true
	}
}
