// Package labels defines the annotation record shared by the stores,
// consensus evaluation, and sessions.
//
// A label set for an item only grows; the single most-recent label may be
// removed again through the session's undo. "Current" per annotator always
// means the label with the maximum timestamp among that annotator's
// submissions for the item.
package labels
