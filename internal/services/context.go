package services

import "context"

type contextKey string

const (
	itemIDKey    contextKey = "itemID"
	annotatorKey contextKey = "annotatorUID"
	sessionKey   contextKey = "sessionID"
)

// WithItemID attaches the current work item id to the context for logging.
func WithItemID(ctx context.Context, itemID string) context.Context {
	return context.WithValue(ctx, itemIDKey, itemID)
}

// ItemIDFromContext extracts the current work item id, if present.
func ItemIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(itemIDKey).(string)
	return value, ok && value != ""
}

// WithAnnotator attaches the acting annotator uid to the context.
func WithAnnotator(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, annotatorKey, uid)
}

// AnnotatorFromContext extracts the acting annotator uid, if present.
func AnnotatorFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(annotatorKey).(string)
	return value, ok && value != ""
}

// WithSessionID attaches a session correlation id to the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// SessionIDFromContext extracts the session correlation id, if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(sessionKey).(string)
	return value, ok && value != ""
}
