package labelstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sflabel/internal/config"
	"sflabel/internal/labels"
	"sflabel/internal/services"
)

// Store is the append-only label multimap backed by SQLite. Records are
// never updated in place; the only delete path is the session undo.
type Store struct {
	db     *sql.DB
	path   string
	backup *backupWriter
}

// Open initializes or connects to the label database and applies migrations.
// When file backup is enabled in the config, every appended label is also
// mirrored into a day-keyed JSONL file.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.LabelDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
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

	if cfg.Annotation.EnableFileBackup {
		store.backup = newBackupWriter(cfg.LabelBackupDir())
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

// Append inserts a new label record and returns its id. A missing label id
// is assigned; a missing timestamp is set to now. Append never updates an
// existing row, so a retried call after a transient failure creates a fresh
// record rather than silently overwriting one.
func (s *Store) Append(ctx context.Context, label labels.Label) (string, error) {
	if strings.TrimSpace(label.ItemID) == "" {
		return "", services.Wrap(services.ErrValidation, "labelstore", "append", "item id is required", nil)
	}
	if strings.TrimSpace(label.AnnotatorUID) == "" {
		return "", services.Wrap(services.ErrValidation, "labelstore", "append", "annotator uid is required", nil)
	}
	if label.LabelID == "" {
		label.LabelID = uuid.NewString()
	}
	if label.Timestamp.IsZero() {
		label.Timestamp = time.Now().UTC()
	}
	if label.ReviewStatus == "" {
		label.ReviewStatus = labels.ReviewPending
	}
	if !label.ReviewStatus.Valid() {
		return "", services.Wrap(services.ErrValidation, "labelstore", "append", fmt.Sprintf("unknown review status %q", label.ReviewStatus), nil)
	}

	featuresJSON, err := json.Marshal(label.Features)
	if err != nil {
		return "", fmt.Errorf("marshal features: %w", err)
	}
	followUpJSON, err := json.Marshal(label.FollowUpNeed)
	if err != nil {
		return "", fmt.Errorf("marshal follow_up_need: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO labels (
            label_id, item_id, annotator_uid, annotator, role, timestamp,
            priority, review_status, review_notes, notes, features_json,
            outcome_alignment, follow_up_json, revision_of
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		label.LabelID,
		label.ItemID,
		label.AnnotatorUID,
		nullableString(label.Annotator),
		nullableString(label.Role),
		label.Timestamp.UTC().Format(time.RFC3339Nano),
		nullableString(label.Priority),
		string(label.ReviewStatus),
		nullableString(label.ReviewNotes),
		nullableString(label.Notes),
		string(featuresJSON),
		nullableString(label.OutcomeAlignment),
		string(followUpJSON),
		nullableString(label.RevisionOf),
	)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "labelstore", "append", "insert label", err)
	}

	if s.backup != nil {
		if err := s.backup.write(label); err != nil {
			// The store row is already committed; a backup miss loses no
			// authoritative data.
			return label.LabelID, services.Wrap(services.ErrTransient, "labelstore", "backup", "append backup line", err)
		}
	}

	return label.LabelID, nil
}

// Query returns every label ever submitted for an item, oldest first.
func (s *Store) Query(ctx context.Context, itemID string) ([]labels.Label, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+labelColumns+` FROM labels WHERE item_id = ? ORDER BY timestamp, label_id`,
		itemID,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "labelstore", "query", "query labels", err)
	}
	defer rows.Close()

	var out []labels.Label
	for rows.Next() {
		label, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, label)
	}
	return out, rows.Err()
}

// QueryAll returns the full label multimap keyed by item id.
func (s *Store) QueryAll(ctx context.Context) (map[string][]labels.Label, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+labelColumns+` FROM labels ORDER BY timestamp, label_id`,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "labelstore", "query_all", "query labels", err)
	}
	defer rows.Close()

	out := make(map[string][]labels.Label)
	for rows.Next() {
		label, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		out[label.ItemID] = append(out[label.ItemID], label)
	}
	return out, rows.Err()
}

// Delete removes a label by id, reporting whether a row existed. Used only
// by the session undo path.
func (s *Store) Delete(ctx context.Context, labelID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM labels WHERE label_id = ?`, labelID)
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "labelstore", "delete", "delete label", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Count returns the total number of stored labels.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM labels`).Scan(&count); err != nil {
		return 0, services.Wrap(services.ErrTransient, "labelstore", "count", "count labels", err)
	}
	return count, nil
}

const labelColumns = "label_id, item_id, annotator_uid, annotator, role, timestamp, priority, review_status, review_notes, notes, features_json, outcome_alignment, follow_up_json, revision_of"

func scanLabel(scanner interface{ Scan(dest ...any) error }) (labels.Label, error) {
	var (
		labelID          string
		itemID           string
		annotatorUID     string
		annotator        sql.NullString
		role             sql.NullString
		timestampRaw     string
		priority         sql.NullString
		reviewStatus     string
		reviewNotes      sql.NullString
		notes            sql.NullString
		featuresJSON     sql.NullString
		outcomeAlignment sql.NullString
		followUpJSON     sql.NullString
		revisionOf       sql.NullString
	)

	if err := scanner.Scan(
		&labelID,
		&itemID,
		&annotatorUID,
		&annotator,
		&role,
		&timestampRaw,
		&priority,
		&reviewStatus,
		&reviewNotes,
		&notes,
		&featuresJSON,
		&outcomeAlignment,
		&followUpJSON,
		&revisionOf,
	); err != nil {
		return labels.Label{}, fmt.Errorf("scan label: %w", err)
	}

	label := labels.Label{
		LabelID:          labelID,
		ItemID:           itemID,
		AnnotatorUID:     annotatorUID,
		Annotator:        annotator.String,
		Role:             role.String,
		Priority:         priority.String,
		ReviewStatus:     labels.ReviewStatus(reviewStatus),
		ReviewNotes:      reviewNotes.String,
		Notes:            notes.String,
		OutcomeAlignment: outcomeAlignment.String,
		RevisionOf:       revisionOf.String,
	}

	if ts, err := parseTimeString(timestampRaw); err == nil {
		label.Timestamp = ts
	}
	if featuresJSON.Valid && featuresJSON.String != "" {
		if err := json.Unmarshal([]byte(featuresJSON.String), &label.Features); err != nil {
			return labels.Label{}, fmt.Errorf("unmarshal features for %s: %w", labelID, err)
		}
	}
	if followUpJSON.Valid && followUpJSON.String != "" && followUpJSON.String != "null" {
		if err := json.Unmarshal([]byte(followUpJSON.String), &label.FollowUpNeed); err != nil {
			return labels.Label{}, fmt.Errorf("unmarshal follow_up_need for %s: %w", labelID, err)
		}
	}
	return label, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
