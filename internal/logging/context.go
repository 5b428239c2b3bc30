package logging

import (
	"context"
	"log/slog"

	"sflabel/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItemID is the standardized structured logging key for work item identifiers.
	FieldItemID = "item_id"
	// FieldAnnotator is the standardized structured logging key for annotator uids.
	FieldAnnotator = "annotator_uid"
	// FieldSessionID is the standardized structured logging key for session correlation ids.
	FieldSessionID = "session_id"
	// FieldLabelID is the standardized structured logging key for label identifiers.
	FieldLabelID = "label_id"
	// FieldDatasetHash is the standardized structured logging key for dataset fingerprints.
	FieldDatasetHash = "dataset_hash"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldItemID, id))
	}
	if uid, ok := services.AnnotatorFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldAnnotator, uid))
	}
	if sid, ok := services.SessionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSessionID, sid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
