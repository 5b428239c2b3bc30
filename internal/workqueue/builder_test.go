package workqueue_test

import (
	"testing"
	"time"

	"sflabel/internal/dataset"
	"sflabel/internal/workqueue"
)

func poolOf(n int, evidenceEvery int) []dataset.Item {
	items := make([]dataset.Item, 0, n)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		items = append(items, dataset.Item{
			RequestID: itemID(i),
			HasPhoto:  evidenceEvery > 0 && i%evidenceEvery == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return items
}

func itemID(i int) string {
	return "req-" + string(rune('a'+i/26)) + string(rune('a'+i%26))
}

func TestBuildBaseOrderIsDeterministic(t *testing.T) {
	items := poolOf(50, 3)
	first := workqueue.BuildBaseOrder(items, "annotator-1")
	second := workqueue.BuildBaseOrder(items, "annotator-1")
	if len(first) != len(items) {
		t.Fatalf("expected %d ids, got %d", len(items), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("orders diverge at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestBuildBaseOrderEvidenceLeads(t *testing.T) {
	items := poolOf(30, 2)
	evidence := make(map[string]bool, len(items))
	evidenceCount := 0
	for _, item := range items {
		evidence[item.RequestID] = item.HasPhoto
		if item.HasPhoto {
			evidenceCount++
		}
	}

	order := workqueue.BuildBaseOrder(items, "annotator-1")
	for i, id := range order {
		want := i < evidenceCount
		if evidence[id] != want {
			t.Fatalf("position %d (%s): evidence=%v, want evidence group first", i, id, evidence[id])
		}
	}
}

func TestBuildBaseOrderDecorrelatesAnnotators(t *testing.T) {
	items := poolOf(60, 4)
	a := workqueue.BuildBaseOrder(items, "annotator-a")
	b := workqueue.BuildBaseOrder(items, "annotator-b")

	same := 0
	for i := range a {
		if a[i] == b[i] {
			same++
		}
	}
	if same == len(a) {
		t.Fatal("different annotators received identical orderings")
	}
}

func TestBuildBaseOrderCoversAllItemsExactlyOnce(t *testing.T) {
	items := poolOf(40, 5)
	order := workqueue.BuildBaseOrder(items, "annotator-1")
	seen := make(map[string]int, len(order))
	for _, id := range order {
		seen[id]++
	}
	for _, item := range items {
		if seen[item.RequestID] != 1 {
			t.Fatalf("item %s appears %d times", item.RequestID, seen[item.RequestID])
		}
	}
}

func TestSeedIsStable(t *testing.T) {
	if workqueue.Seed("alice") != workqueue.Seed("alice") {
		t.Fatal("seed must be stable for one uid")
	}
	if workqueue.Seed("alice") == workqueue.Seed("bob") {
		t.Fatal("distinct uids should produce distinct seeds")
	}
}
