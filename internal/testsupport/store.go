package testsupport

import (
	"testing"

	"sflabel/internal/config"
	"sflabel/internal/labelstore"
	"sflabel/internal/workqueue"
)

// MustOpenLabelStore opens a labelstore.Store for tests and registers cleanup.
func MustOpenLabelStore(t testing.TB, cfg *config.Config) *labelstore.Store {
	t.Helper()

	store, err := labelstore.Open(cfg)
	if err != nil {
		t.Fatalf("labelstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenQueueStore opens a workqueue.Store for tests and registers cleanup.
func MustOpenQueueStore(t testing.TB, cfg *config.Config) *workqueue.Store {
	t.Helper()

	store, err := workqueue.OpenStore(cfg)
	if err != nil {
		t.Fatalf("workqueue.OpenStore: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
