// Package logging builds the slog loggers used across sflabel and defines
// the standardized structured field names for session, item, and label
// identifiers.
package logging
