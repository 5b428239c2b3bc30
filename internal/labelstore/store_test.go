package labelstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sflabel/internal/labels"
	"sflabel/internal/services"
	"sflabel/internal/testsupport"
)

func sampleLabel(itemID, uid string, ts time.Time) labels.Label {
	return labels.Label{
		ItemID:       itemID,
		AnnotatorUID: uid,
		Annotator:    "Annotator " + uid,
		Timestamp:    ts,
		Priority:     "High",
		ReviewStatus: labels.ReviewPending,
		Notes:        "observed from photo",
		Features:     labels.Features{TentsCount: 2, SafetyIssue: true},
		FollowUpNeed: []string{"outreach"},
	}
}

func TestAppendAssignsIDAndRoundTrips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLabelStore(t, cfg)
	ctx := context.Background()

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	id, err := store.Append(ctx, sampleLabel("req-1", "uid-a", ts))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected assigned label id")
	}

	set, err := store.Query(ctx, "req-1")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("expected 1 label, got %d", len(set))
	}
	got := set[0]
	if got.LabelID != id || got.AnnotatorUID != "uid-a" || !got.Timestamp.Equal(ts) {
		t.Fatalf("unexpected label: %+v", got)
	}
	if got.Features.TentsCount != 2 || !got.Features.SafetyIssue {
		t.Fatalf("features lost in round trip: %+v", got.Features)
	}
	if len(got.FollowUpNeed) != 1 || got.FollowUpNeed[0] != "outreach" {
		t.Fatalf("follow-up list lost: %v", got.FollowUpNeed)
	}
}

func TestAppendValidatesRequiredFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLabelStore(t, cfg)
	ctx := context.Background()

	_, err := store.Append(ctx, labels.Label{AnnotatorUID: "uid-a"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing item id, got %v", err)
	}
	_, err = store.Append(ctx, labels.Label{ItemID: "req-1"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing uid, got %v", err)
	}
	_, err = store.Append(ctx, labels.Label{ItemID: "req-1", AnnotatorUID: "uid-a", ReviewStatus: "maybe"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for bad review status, got %v", err)
	}
}

func TestAppendNeverUpdatesInPlace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLabelStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	first, err := store.Append(ctx, sampleLabel("req-1", "uid-a", base))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	revision := sampleLabel("req-1", "uid-a", base.Add(time.Hour))
	revision.Priority = "Low"
	revision.RevisionOf = first
	second, err := store.Append(ctx, revision)
	if err != nil {
		t.Fatalf("Append revision failed: %v", err)
	}

	set, err := store.Query(ctx, "req-1")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("revision must append, not replace: %d rows", len(set))
	}
	latest := labels.LatestForAnnotator(set, "uid-a")
	if latest == nil || latest.LabelID != second || latest.Priority != "Low" {
		t.Fatalf("unexpected current label: %+v", latest)
	}
}

func TestQueryAllGroupsByItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLabelStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, key := range []struct{ item, uid string }{
		{"req-1", "uid-a"},
		{"req-1", "uid-b"},
		{"req-2", "uid-a"},
	} {
		if _, err := store.Append(ctx, sampleLabel(key.item, key.uid, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	all, err := store.QueryAll(ctx)
	if err != nil {
		t.Fatalf("QueryAll failed: %v", err)
	}
	if len(all) != 2 || len(all["req-1"]) != 2 || len(all["req-2"]) != 1 {
		t.Fatalf("unexpected grouping: %d items", len(all))
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 labels, got %d", count)
	}
}

func TestDeleteReportsMissingTarget(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLabelStore(t, cfg)
	ctx := context.Background()

	id, err := store.Append(ctx, sampleLabel("req-1", "uid-a", time.Now().UTC()))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	removed, err := store.Delete(ctx, id)
	if err != nil || !removed {
		t.Fatalf("Delete failed: removed=%v err=%v", removed, err)
	}
	removed, err = store.Delete(ctx, id)
	if err != nil {
		t.Fatalf("second Delete errored: %v", err)
	}
	if removed {
		t.Fatal("second Delete should report missing target")
	}
}

func TestFileBackupMirrorsAppendedLabels(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFileBackup())
	store := testsupport.MustOpenLabelStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Append(ctx, sampleLabel("req-1", "uid-a", time.Now().UTC())); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	day := time.Now().UTC().Format("20060102")
	data, err := os.ReadFile(filepath.Join(cfg.LabelBackupDir(), day, "labels.jsonl"))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !strings.Contains(string(data), `"item_id":"req-1"`) {
		t.Fatalf("backup line missing label: %q", string(data))
	}
}
