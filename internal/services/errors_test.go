package services_test

import (
	"errors"
	"testing"

	"sflabel/internal/services"
)

func TestWrapTagsWithSentinel(t *testing.T) {
	err := services.Wrap(services.ErrConflict, "session", "submit", "item req-a is fully assigned", nil)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("wrapped error lost its marker: %v", err)
	}
	if got := err.Error(); got != "concurrent claim: session: submit: item req-a is fully assigned" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk io")
	err := services.Wrap(services.ErrTransient, "labelstore", "append", "insert failed", cause)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("wrapped error lost its marker: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("wrapped error lost its cause: %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "labelstore", "query", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("nil marker should default to transient: %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	transient := services.Wrap(services.ErrTransient, "labelstore", "append", "insert failed", nil)
	if !services.IsRetryable(transient) {
		t.Fatal("transient failures are retryable")
	}
	for _, err := range []error{
		services.Wrap(services.ErrValidation, "session", "submit", "bad draft", nil),
		services.Wrap(services.ErrNotFound, "session", "undo", "label gone", nil),
		services.Wrap(services.ErrConflict, "session", "submit", "slot taken", nil),
	} {
		if services.IsRetryable(err) {
			t.Fatalf("%v must not be retryable", err)
		}
	}
}
