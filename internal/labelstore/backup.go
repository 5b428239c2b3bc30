package labelstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"sflabel/internal/labels"
)

// backupWriter appends accepted labels to a day-keyed JSONL file. Multiple
// sessions on one machine share the file, so appends run under a file lock.
type backupWriter struct {
	root string
}

func newBackupWriter(root string) *backupWriter {
	return &backupWriter{root: root}
}

func (w *backupWriter) write(label labels.Label) error {
	day := time.Now().UTC().Format("20060102")
	dir := filepath.Join(w.root, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	target := filepath.Join(dir, "labels.jsonl")
	lock := flock.New(target + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire backup lock: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	line, err := json.Marshal(label)
	if err != nil {
		return fmt.Errorf("marshal backup line: %w", err)
	}

	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append backup line: %w", err)
	}
	return nil
}
