package workqueue

import "time"

// Record is one persisted work queue, keyed by (annotator_uid,
// dataset_hash). Created lazily on first access per key; records for an old
// dataset hash are abandoned, never migrated.
type Record struct {
	AnnotatorUID string
	DatasetHash  string
	BaseOrder    []string
	Cursor       int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BaseIndex returns the position of an item id in the base order, or -1.
func (r *Record) BaseIndex(itemID string) int {
	for i, id := range r.BaseOrder {
		if id == itemID {
			return i
		}
	}
	return -1
}
