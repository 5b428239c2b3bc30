package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	DatasetPath string `toml:"dataset_path"`
	LogDir      string `toml:"log_dir"`
}

// Annotation contains the coordination settings shared by every session.
type Annotation struct {
	// MaxAnnotatorsPerItem caps how many distinct annotators may hold any
	// label on one item.
	MaxAnnotatorsPerItem int `toml:"max_annotators_per_item"`
	// RequiredUniqueForCompletion overrides the derived completion quorum.
	// Zero means derive max(1, min(cap, 2)).
	RequiredUniqueForCompletion int `toml:"required_unique_for_completion"`
	// EnableFileBackup mirrors every accepted label into a day-keyed JSONL
	// file under data_dir/labels in addition to the label store.
	EnableFileBackup bool `toml:"enable_file_backup"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for sflabel.
//
// Configuration sections by subsystem:
//   - Paths: data directory, dataset snapshot location, log directory
//   - Annotation: assignment cap and completion quorum
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Annotation Annotation `toml:"annotation"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sflabel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sflabel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for store and log output.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.LabelBackupDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LabelBackupDir returns the root directory for JSONL label backups.
func (c *Config) LabelBackupDir() string {
	return filepath.Join(c.Paths.DataDir, "labels")
}

// LabelDBPath returns the location of the SQLite label store.
func (c *Config) LabelDBPath() string {
	return filepath.Join(c.Paths.DataDir, "labels.db")
}

// QueueDBPath returns the location of the SQLite work-queue store.
func (c *Config) QueueDBPath() string {
	return filepath.Join(c.Paths.DataDir, "queues.db")
}

// Cap returns the configured assignment cap.
func (c *Config) Cap() int {
	return c.Annotation.MaxAnnotatorsPerItem
}

// RequiredUnique returns the completion quorum override (0 = derive).
func (c *Config) RequiredUnique() int {
	return c.Annotation.RequiredUniqueForCompletion
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
