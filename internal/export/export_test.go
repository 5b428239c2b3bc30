package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"sflabel/internal/consensus"
	"sflabel/internal/dataset"
	"sflabel/internal/export"
	"sflabel/internal/labels"
	"sflabel/internal/testsupport"
)

var exportTime = time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

func snapshotOf(t *testing.T, ids ...string) *dataset.Snapshot {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = testsupport.ItemLine(id, true, exportTime)
	}
	return testsupport.WriteDataset(t, cfg, lines...)
}

func TestBuildJoinsStatusAndCounts(t *testing.T) {
	snap := snapshotOf(t, "req-a", "req-b", "req-c")
	all := map[string][]labels.Label{
		"req-a": {
			{LabelID: "l1", ItemID: "req-a", AnnotatorUID: "u1", Priority: "High", ReviewStatus: labels.ReviewPending, Timestamp: exportTime},
			{LabelID: "l2", ItemID: "req-a", AnnotatorUID: "u2", Priority: "High", ReviewStatus: labels.ReviewAgree, Timestamp: exportTime.Add(time.Minute)},
		},
		"req-b": {
			{LabelID: "l3", ItemID: "req-b", AnnotatorUID: "u1", Priority: "Low", ReviewStatus: labels.ReviewPending, Timestamp: exportTime.Add(2 * time.Minute)},
		},
	}

	rows, summary := export.Build(snap, all, 2, export.Options{})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if summary.Items != 3 || summary.Labeled != 1 || summary.NeedsReview != 1 || summary.Unlabeled != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Labels != 3 || summary.Annotators != 2 {
		t.Fatalf("unexpected label counts: %+v", summary)
	}
	for _, row := range rows[:2] {
		if row.ConsensusStatus != consensus.StatusLabeled {
			t.Fatalf("req-a rows should carry labeled status, got %s", row.ConsensusStatus)
		}
	}
	if rows[2].ConsensusStatus != consensus.StatusNeedsReview {
		t.Fatalf("req-b row should carry needs_review, got %s", rows[2].ConsensusStatus)
	}
	// Ordered by timestamp.
	if rows[0].LabelID != "l1" || rows[2].LabelID != "l3" {
		t.Fatalf("rows out of order: %s..%s", rows[0].LabelID, rows[2].LabelID)
	}
}

func TestBuildSinceFilterKeepsSummaryWhole(t *testing.T) {
	snap := snapshotOf(t, "req-a")
	all := map[string][]labels.Label{
		"req-a": {
			{LabelID: "old", ItemID: "req-a", AnnotatorUID: "u1", Timestamp: exportTime},
			{LabelID: "new", ItemID: "req-a", AnnotatorUID: "u2", Timestamp: exportTime.Add(time.Hour)},
		},
	}
	rows, summary := export.Build(snap, all, 2, export.Options{Since: exportTime.Add(30 * time.Minute)})
	if len(rows) != 1 || rows[0].LabelID != "new" {
		t.Fatalf("since filter should keep only the newer label, got %d rows", len(rows))
	}
	if summary.Labels != 2 {
		t.Fatalf("summary should count all labels regardless of since, got %d", summary.Labels)
	}
}

func TestFlattenFeaturesAndGoaWindow(t *testing.T) {
	snap := snapshotOf(t, "req-a")
	all := map[string][]labels.Label{
		"req-a": {{
			LabelID:      "l1",
			ItemID:       "req-a",
			AnnotatorUID: "u1",
			Timestamp:    exportTime,
			Features: labels.Features{
				LyingFaceDown: true,
				Blocking:      true,
				TentsCount:    4,
				GoaWindow:     "respond_sub2h",
			},
			FollowUpNeed: []string{"outreach", "cleanup"},
		}},
	}
	rows, _ := export.Build(snap, all, 1, export.Options{})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.ObservedConditions != "Person lying face down;Blocking right-of-way" {
		t.Fatalf("unexpected observed conditions: %q", row.ObservedConditions)
	}
	if row.GoaWindowLabel != "Respond within 2h to avoid GOA" {
		t.Fatalf("unexpected goa label: %q", row.GoaWindowLabel)
	}
	if row.FollowUpNeed != "outreach;cleanup" {
		t.Fatalf("unexpected follow up: %q", row.FollowUpNeed)
	}
}

func TestWriteCSVHeaderAndRows(t *testing.T) {
	rows := []export.Row{
		{LabelID: "l1", RequestID: "req-a", AnnotatorUID: "u1", ReviewStatus: "pending", Timestamp: exportTime, ConsensusStatus: consensus.StatusNeedsReview},
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "label_id,request_id,annotator_uid") {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "needs_review") {
		t.Fatalf("row missing consensus status: %s", lines[1])
	}

	buf.Reset()
	if err := export.WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV empty: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "label_id,") {
		t.Fatal("empty export should still write the header")
	}
}

func TestWriteJSONL(t *testing.T) {
	rows := []export.Row{
		{LabelID: "l1", RequestID: "req-a", AnnotatorUID: "u1", Timestamp: exportTime},
		{LabelID: "l2", RequestID: "req-b", AnnotatorUID: "u2", Timestamp: exportTime},
	}
	var buf bytes.Buffer
	if err := export.WriteJSONL(&buf, rows); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 jsonl lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"label_id":"l1"`) {
		t.Fatalf("unexpected jsonl line: %s", lines[0])
	}
}
