package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sflabel/internal/logging"
	"sflabel/internal/services"
)

func TestNewWritesConsoleLinesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	component := logging.NewComponentLogger(logger, "session")
	component.Info("label saved", logging.String("item_id", "req-1"))
	component.Debug("suppressed at info level")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "INFO session: label saved item_id=req-1") {
		t.Fatalf("unexpected log output: %q", out)
	}
	if strings.Contains(out, "suppressed") {
		t.Fatalf("debug line should be filtered: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWithContextAddsStandardFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := services.WithItemID(context.Background(), "req-9")
	ctx = services.WithAnnotator(ctx, "uid-1")
	logging.WithContext(ctx, logger).Info("advance")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "item_id=req-9") || !strings.Contains(out, "annotator_uid=uid-1") {
		t.Fatalf("context fields missing: %q", out)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Info("nothing happens")
	if logger.Enabled(context.Background(), 0) {
		t.Fatal("nop logger should never be enabled")
	}
}
