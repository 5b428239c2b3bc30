package consensus

import (
	"strings"

	"sflabel/internal/labels"
)

// Status classifies an item's label set.
type Status string

const (
	StatusUnlabeled   Status = "unlabeled"
	StatusNeedsReview Status = "needs_review"
	StatusLabeled     Status = "labeled"
)

// DeriveRequired returns the distinct-annotator quorum for completion.
// Without an override the rule models two-person review: max(1, min(cap, 2)).
// Overrides above the cap clamp down to the cap.
func DeriveRequired(cap, override int) int {
	if override > 0 {
		if override > cap && cap > 0 {
			return cap
		}
		return override
	}
	required := cap
	if required > 2 {
		required = 2
	}
	if required < 1 {
		required = 1
	}
	return required
}

// Evaluate derives the consensus status of an item from its label set.
// required is the distinct-annotator quorum, normally DeriveRequired's value.
//
// The checks form an ordered decision list; the first match wins. Any
// disagreement or priority conflict forces re-review regardless of quorum,
// and an explicit agreement is needed before an item counts as settled.
func Evaluate(set []labels.Label, required int) Status {
	if len(set) == 0 {
		return StatusUnlabeled
	}
	for _, label := range set {
		if label.ReviewStatus == labels.ReviewDisagree {
			return StatusNeedsReview
		}
	}
	priorities := make(map[string]struct{})
	for _, label := range set {
		if p := strings.TrimSpace(label.Priority); p != "" {
			priorities[p] = struct{}{}
		}
	}
	if len(priorities) > 1 {
		return StatusNeedsReview
	}
	if len(labels.UniqueAnnotators(set)) < required {
		return StatusNeedsReview
	}
	agreed := false
	for _, label := range set {
		if label.ReviewStatus == labels.ReviewAgree {
			agreed = true
			break
		}
	}
	if !agreed {
		return StatusNeedsReview
	}
	return StatusLabeled
}

// Eligible reports whether the annotator may add a label to the item.
// Contributors may always revise their own prior label; new annotators are
// admitted only while fewer than cap distinct uids have contributed.
func Eligible(set []labels.Label, annotatorUID string, cap int) bool {
	uids := labels.UniqueAnnotators(set)
	for _, uid := range uids {
		if uid == annotatorUID {
			return true
		}
	}
	return len(uids) < cap
}
