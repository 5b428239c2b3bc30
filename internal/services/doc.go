// Package services defines the shared error taxonomy and context helpers
// used across session components.
//
// Store failures are wrapped with ErrTransient at the component boundary so
// a session can report them without partial state changes. ErrConflict is
// the one class deliberately downgraded from error to expected control flow:
// losing the last eligibility slot to a concurrent annotator advances the
// session instead of failing it.
package services
