package workqueue

import (
	"context"
	"fmt"
	"log/slog"

	"sflabel/internal/dataset"
	"sflabel/internal/logging"
)

// Tracker owns the persisted cursor of one annotator over one dataset
// snapshot. The base order is materialized on first access and then treated
// as authoritative for the lifetime of the dataset hash; it is deliberately
// not re-derived on later reads, so resuming a session always walks the
// exact order the annotator saw before.
type Tracker struct {
	store  *Store
	record *Record
	logger *slog.Logger
}

// NewTracker loads or lazily creates the queue record for the annotator and
// snapshot.
func NewTracker(ctx context.Context, store *Store, annotatorUID string, snap *dataset.Snapshot, logger *slog.Logger) (*Tracker, error) {
	log := logging.NewComponentLogger(logger, "workqueue")

	record, err := store.Get(ctx, annotatorUID, snap.Hash)
	if err != nil {
		return nil, err
	}
	if record == nil {
		order := BuildBaseOrder(snap.Items, annotatorUID)
		if err := store.Upsert(ctx, annotatorUID, snap.Hash, order, 0); err != nil {
			return nil, err
		}
		record = &Record{
			AnnotatorUID: annotatorUID,
			DatasetHash:  snap.Hash,
			BaseOrder:    order,
			Cursor:       0,
		}
		log.Info("built work queue",
			logging.String(logging.FieldAnnotator, annotatorUID),
			logging.String(logging.FieldDatasetHash, snap.Hash),
			logging.Int("items", len(order)),
		)
	}

	return &Tracker{store: store, record: record, logger: log}, nil
}

// BaseOrder returns the full deterministic ordering before any filter.
func (t *Tracker) BaseOrder() []string {
	return t.record.BaseOrder
}

// Cursor returns the persisted resume index into the base order.
func (t *Tracker) Cursor() int {
	return t.record.Cursor
}

// BaseIndex returns the base-order position of an item id, or -1.
func (t *Tracker) BaseIndex(itemID string) int {
	return t.record.BaseIndex(itemID)
}

// Working projects the filtered subsequence out of the base order,
// preserving relative order. The keep predicate carries the session's
// filter and eligibility checks.
func (t *Tracker) Working(keep func(itemID string) bool) []string {
	var working []string
	for _, id := range t.record.BaseOrder {
		if keep(id) {
			working = append(working, id)
		}
	}
	return working
}

// Resume maps the persisted cursor into the working subsequence: the first
// working element whose base index is at or past the cursor, else the first
// working element. Completed items stay behind the cursor while items that
// become newly visible under a relaxed filter are never permanently
// skipped.
func (t *Tracker) Resume(working []string) (string, bool) {
	if len(working) == 0 {
		return "", false
	}
	for _, id := range working {
		if t.record.BaseIndex(id) >= t.record.Cursor {
			return id, true
		}
	}
	return working[0], true
}

// Advance moves the cursor past the given item on skip or successful
// submit and persists it. The cursor never moves backward through Advance.
func (t *Tracker) Advance(ctx context.Context, itemID string) error {
	index := t.record.BaseIndex(itemID)
	if index < 0 {
		return fmt.Errorf("item %s not in base order", itemID)
	}
	next := index + 1
	if next <= t.record.Cursor {
		return nil
	}
	if err := t.store.UpdatePosition(ctx, t.record.AnnotatorUID, t.record.DatasetHash, next); err != nil {
		return err
	}
	t.record.Cursor = next
	return nil
}

// Retreat moves to the element before current in the working subsequence
// and persists that element's base index as the cursor. This is the one
// ordinary action allowed to move the stored cursor backward.
func (t *Tracker) Retreat(ctx context.Context, working []string, currentID string) (string, error) {
	if len(working) == 0 {
		return "", fmt.Errorf("empty working subsequence")
	}
	position := 0
	for i, id := range working {
		if id == currentID {
			position = i
			break
		}
	}
	if position > 0 {
		position--
	}
	target := working[position]
	index := t.record.BaseIndex(target)
	if index < 0 {
		return "", fmt.Errorf("item %s not in base order", target)
	}
	if err := t.store.UpdatePosition(ctx, t.record.AnnotatorUID, t.record.DatasetHash, index); err != nil {
		return "", err
	}
	t.record.Cursor = index
	return target, nil
}

// RestoreCursor sets the persisted cursor to an explicit value. Used by the
// session undo to put the queue back where it was before a submission.
func (t *Tracker) RestoreCursor(ctx context.Context, cursor int) error {
	if cursor < 0 {
		cursor = 0
	}
	if err := t.store.UpdatePosition(ctx, t.record.AnnotatorUID, t.record.DatasetHash, cursor); err != nil {
		return err
	}
	t.record.Cursor = cursor
	return nil
}

// Reset returns the cursor to the start of the queue.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.RestoreCursor(ctx, 0); err != nil {
		return err
	}
	t.logger.Info("queue reset",
		logging.String(logging.FieldAnnotator, t.record.AnnotatorUID),
		logging.String(logging.FieldDatasetHash, t.record.DatasetHash),
	)
	return nil
}
