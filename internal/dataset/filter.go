package dataset

import (
	"strings"

	"sflabel/internal/consensus"
	"sflabel/internal/labels"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// Filter projects the working subsequence out of a base order. The zero
// value passes every item.
type Filter struct {
	// Evidence restricts to items with (true) or without (false) photo
	// evidence; nil means no restriction.
	Evidence *bool
	// Status keeps items whose derived consensus status matches; StatusAll
	// or empty keeps everything.
	Status string
	// Keywords must all be present on the item.
	Keywords []string
	// Tags must all be present on the item.
	Tags []string
	// Search is a case-insensitive substring match over the request id,
	// text, notes, subtype, keywords, and label notes.
	Search string
	// OnlyMine keeps items the acting annotator has already labeled.
	OnlyMine bool
	// RequireRichContext keeps items with photos or responder notes.
	RequireRichContext bool
}

// Match reports whether the item passes the filter, given the item's label
// set, its derived consensus status, and the acting annotator.
func (f Filter) Match(item Item, set []labels.Label, status consensus.Status, annotatorUID string) bool {
	if f.Evidence != nil && item.HasEvidence() != *f.Evidence {
		return false
	}
	for _, kw := range f.Keywords {
		if !contains(item.Keywords, kw) {
			return false
		}
	}
	for _, tag := range f.Tags {
		if !contains(item.Tags, tag) {
			return false
		}
	}
	if f.Status != "" && f.Status != StatusAll && string(status) != f.Status {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		if !strings.Contains(haystack(item, set), search) {
			return false
		}
	}
	if f.RequireRichContext && !item.HasRichContext() {
		return false
	}
	if f.OnlyMine && !contains(labels.UniqueAnnotators(set), annotatorUID) {
		return false
	}
	return true
}

func contains(values []string, needle string) bool {
	for _, v := range values {
		if v == needle {
			return true
		}
	}
	return false
}

func haystack(item Item, set []labels.Label) string {
	parts := []string{
		item.RequestID,
		item.Text,
		item.StatusNotes,
		item.ResolutionNotes,
		item.ServiceSubtype,
		item.CreatedAt.Format("2006-01-02"),
	}
	parts = append(parts, item.Keywords...)
	for _, label := range set {
		parts = append(parts, label.Notes)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
