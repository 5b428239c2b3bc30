package labels

import (
	"sort"
	"strings"
	"time"
)

// ReviewStatus captures an annotator's stance toward the prior label on an
// item. Pending is the default for first-pass labels.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewAgree    ReviewStatus = "agree"
	ReviewDisagree ReviewStatus = "disagree"
)

// Valid reports whether the value is one of the known review states.
func (r ReviewStatus) Valid() bool {
	switch r {
	case ReviewPending, ReviewAgree, ReviewDisagree:
		return true
	}
	return false
}

// Features is the explicitly-typed payload sub-record carried by each label.
// Consensus evaluation never inspects it; it exists so downstream export and
// reporting can rely on fixed fields instead of a loose map.
type Features struct {
	LyingFaceDown     bool   `json:"lying_face_down"`
	SafetyIssue       bool   `json:"safety_issue"`
	Drugs             bool   `json:"drugs"`
	Blocking          bool   `json:"blocking"`
	OnRamp            bool   `json:"on_ramp"`
	PropaneOrFlame    bool   `json:"propane_or_flame"`
	ChildrenPresent   bool   `json:"children_present"`
	Wheelchair        bool   `json:"wheelchair"`
	NumPeopleBin      string `json:"num_people_bin,omitempty"`
	SizeFeetBin       string `json:"size_feet_bin,omitempty"`
	TentsCount        int    `json:"tents_count"`
	GoaWindow         string `json:"goa_window,omitempty"`
	RoutingDepartment string `json:"routing_department,omitempty"`
	RoutingOther      string `json:"routing_other,omitempty"`
}

// Label is an append-only annotation fact. Labels are never mutated in
// place; a revision is a new label whose RevisionOf points at the prior one.
type Label struct {
	LabelID          string       `json:"label_id"`
	ItemID           string       `json:"item_id"`
	AnnotatorUID     string       `json:"annotator_uid"`
	Annotator        string       `json:"annotator,omitempty"`
	Role             string       `json:"role,omitempty"`
	Timestamp        time.Time    `json:"timestamp"`
	Priority         string       `json:"priority,omitempty"`
	ReviewStatus     ReviewStatus `json:"review_status"`
	ReviewNotes      string       `json:"review_notes,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	Features         Features     `json:"features"`
	OutcomeAlignment string       `json:"outcome_alignment,omitempty"`
	FollowUpNeed     []string     `json:"follow_up_need,omitempty"`
	RevisionOf       string       `json:"revision_of,omitempty"`
}

// SortByTime returns the labels ordered by submission timestamp, oldest
// first. The input slice is not modified.
func SortByTime(in []Label) []Label {
	out := make([]Label, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// UniqueAnnotators returns the distinct contributing annotator uids in
// first-contribution order. Empty uids are skipped.
func UniqueAnnotators(in []Label) []string {
	seen := make(map[string]struct{}, len(in))
	var uids []string
	for _, label := range SortByTime(in) {
		uid := strings.TrimSpace(label.AnnotatorUID)
		if uid == "" {
			continue
		}
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		uids = append(uids, uid)
	}
	return uids
}

// LatestForAnnotator returns the annotator's current label for an item: the
// one with the maximum timestamp among their submissions. Nil when the
// annotator has not contributed.
func LatestForAnnotator(in []Label, uid string) *Label {
	var latest *Label
	for i := range in {
		if in[i].AnnotatorUID != uid {
			continue
		}
		if latest == nil || in[i].Timestamp.After(latest.Timestamp) {
			latest = &in[i]
		}
	}
	if latest == nil {
		return nil
	}
	cp := *latest
	return &cp
}

// LatestExcluding returns the most recent label submitted by anyone other
// than uid. A non-nil result puts the acting annotator into review mode.
func LatestExcluding(in []Label, uid string) *Label {
	var latest *Label
	for i := range in {
		if in[i].AnnotatorUID == uid {
			continue
		}
		if latest == nil || in[i].Timestamp.After(latest.Timestamp) {
			latest = &in[i]
		}
	}
	if latest == nil {
		return nil
	}
	cp := *latest
	return &cp
}
