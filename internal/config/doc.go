// Package config loads, normalizes, and validates the TOML configuration
// shared by the CLI and the annotation session components.
package config
