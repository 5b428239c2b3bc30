package testsupport

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"sflabel/internal/config"
	"sflabel/internal/dataset"
)

// WriteDataset writes JSONL lines to the config's dataset path and loads the
// resulting snapshot.
func WriteDataset(t testing.TB, cfg *config.Config, lines ...string) *dataset.Snapshot {
	t.Helper()

	contents := strings.Join(lines, "\n")
	if contents != "" {
		contents += "\n"
	}
	if err := os.WriteFile(cfg.Paths.DatasetPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	snap, err := dataset.Load(cfg.Paths.DatasetPath)
	if err != nil {
		t.Fatalf("dataset.Load: %v", err)
	}
	return snap
}

// ItemLine renders one minimal dataset record for WriteDataset.
func ItemLine(id string, hasPhoto bool, created time.Time) string {
	return fmt.Sprintf(`{"request_id":%q,"has_photo":%t,"created_at":%q}`,
		id, hasPhoto, created.UTC().Format(time.RFC3339))
}
