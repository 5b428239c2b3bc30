package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnnotation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatasetPath) == "" {
		c.Paths.DatasetPath = defaultDatasetPath
	}
	if c.Paths.DatasetPath, err = expandPath(c.Paths.DatasetPath); err != nil {
		return fmt.Errorf("paths.dataset_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnnotation() {
	if c.Annotation.MaxAnnotatorsPerItem <= 0 {
		c.Annotation.MaxAnnotatorsPerItem = defaultMaxAnnotatorsPerItem
	}
	// An override above the cap can never be satisfied; clamp instead of
	// erroring so older config files keep working after a cap reduction.
	if c.Annotation.RequiredUniqueForCompletion > c.Annotation.MaxAnnotatorsPerItem {
		c.Annotation.RequiredUniqueForCompletion = c.Annotation.MaxAnnotatorsPerItem
	}
	if c.Annotation.RequiredUniqueForCompletion < 0 {
		c.Annotation.RequiredUniqueForCompletion = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
