package workqueue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sflabel/internal/config"
	"sflabel/internal/services"
)

// Store persists per-annotator queue positions backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore initializes or connects to the queue database and applies
// migrations.
func OpenStore(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.QueueDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get fetches the queue record for one (annotator, dataset hash) key. Nil
// when no record exists yet.
func (s *Store) Get(ctx context.Context, annotatorUID, datasetHash string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT annotator_uid, dataset_hash, base_order, cursor, created_at, updated_at
         FROM work_queues WHERE annotator_uid = ? AND dataset_hash = ?`,
		annotatorUID,
		datasetHash,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "queuestore", "get", "get queue record", err)
	}
	return record, nil
}

// Upsert writes the full queue record for a key, replacing any existing one.
func (s *Store) Upsert(ctx context.Context, annotatorUID, datasetHash string, baseOrder []string, cursor int) error {
	orderJSON, err := json.Marshal(baseOrder)
	if err != nil {
		return fmt.Errorf("marshal base order: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO work_queues (annotator_uid, dataset_hash, base_order, cursor, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(annotator_uid, dataset_hash)
         DO UPDATE SET base_order = excluded.base_order, cursor = excluded.cursor, updated_at = excluded.updated_at`,
		annotatorUID,
		datasetHash,
		string(orderJSON),
		cursor,
		now,
		now,
	)
	if err != nil {
		return services.Wrap(services.ErrTransient, "queuestore", "upsert", "upsert queue record", err)
	}
	return nil
}

// UpdatePosition persists only the cursor for an existing record.
func (s *Store) UpdatePosition(ctx context.Context, annotatorUID, datasetHash string, cursor int) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE work_queues SET cursor = ?, updated_at = ?
         WHERE annotator_uid = ? AND dataset_hash = ?`,
		cursor,
		time.Now().UTC().Format(time.RFC3339Nano),
		annotatorUID,
		datasetHash,
	)
	if err != nil {
		return services.Wrap(services.ErrTransient, "queuestore", "update_position", "update cursor", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "queuestore", "update_position", "queue record missing", nil)
	}
	return nil
}

// PruneStale removes every record whose dataset hash differs from the
// current one. Stale queues are abandoned, not migrated.
func (s *Store) PruneStale(ctx context.Context, currentHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM work_queues WHERE dataset_hash != ?`, currentHash)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "queuestore", "prune", "prune stale queues", err)
	}
	return res.RowsAffected()
}

// List returns every persisted queue record, newest update first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT annotator_uid, dataset_hash, base_order, cursor, created_at, updated_at
         FROM work_queues ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "queuestore", "list", "list queue records", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		annotatorUID string
		datasetHash  string
		orderJSON    string
		cursor       int
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(&annotatorUID, &datasetHash, &orderJSON, &cursor, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	record := &Record{
		AnnotatorUID: annotatorUID,
		DatasetHash:  datasetHash,
		Cursor:       cursor,
	}
	if err := json.Unmarshal([]byte(orderJSON), &record.BaseOrder); err != nil {
		return nil, fmt.Errorf("unmarshal base order: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		record.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		record.UpdatedAt = ts
	}
	return record, nil
}
