package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks remote store failures that are safe to retry.
	ErrTransient = errors.New("transient store failure")
	// ErrValidation marks submissions rejected before any store call.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks operations whose target record no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a commit-time eligibility loss to a concurrent
	// annotator. Sessions treat it as control flow, never as a fault.
	ErrConflict = errors.New("concurrent claim")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetryable reports whether the caller may safely re-issue the failed
// operation. Reads are idempotent; a retried write creates a new label id,
// which is an accepted duplicate-revision outcome.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "store failure"
	}
	return strings.Join(parts, ": ")
}
