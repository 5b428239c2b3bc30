package export

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sflabel/internal/consensus"
	"sflabel/internal/dataset"
	"sflabel/internal/labels"
)

// goaWindowLabels maps the stored goa_window values onto their analyst
// facing descriptions. Unrecognized values fall back to "unknown".
var goaWindowLabels = map[string]string{
	"unknown":          "Unsure",
	"respond_sub2h":    "Respond within 2h to avoid GOA",
	"respond_2_6h":     "Respond within 6h to avoid GOA",
	"respond_6_24h":    "Respond within 24h to avoid GOA",
	"respond_over_24h": "Low GOA risk (>24h)",
}

// observedConditions pairs feature flags with their export descriptions, in
// the column order analysts expect.
var observedConditions = []struct {
	label string
	set   func(labels.Features) bool
}{
	{"Person lying face down", func(f labels.Features) bool { return f.LyingFaceDown }},
	{"Immediate safety issue", func(f labels.Features) bool { return f.SafetyIssue }},
	{"Drug use or paraphernalia", func(f labels.Features) bool { return f.Drugs }},
	{"Blocking right-of-way", func(f labels.Features) bool { return f.Blocking }},
	{"Near freeway on/off ramp", func(f labels.Features) bool { return f.OnRamp }},
	{"Propane, open flame, or generator", func(f labels.Features) bool { return f.PropaneOrFlame }},
	{"Children present", func(f labels.Features) bool { return f.ChildrenPresent }},
	{"Mobility device mentioned", func(f labels.Features) bool { return f.Wheelchair }},
}

// Row is one flattened export record: a single label joined with its item's
// derived consensus status.
type Row struct {
	LabelID            string           `json:"label_id"`
	RequestID          string           `json:"request_id"`
	AnnotatorUID       string           `json:"annotator_uid"`
	Annotator          string           `json:"annotator,omitempty"`
	Role               string           `json:"role,omitempty"`
	Priority           string           `json:"priority,omitempty"`
	TentsCount         int              `json:"tents_count"`
	GoaWindow          string           `json:"goa_window"`
	GoaWindowLabel     string           `json:"goa_window_label"`
	RoutingDepartment  string           `json:"routing_department,omitempty"`
	RoutingOther       string           `json:"routing_other,omitempty"`
	NumPeopleBin       string           `json:"num_people_bin,omitempty"`
	SizeFeetBin        string           `json:"size_feet_bin,omitempty"`
	ObservedConditions string           `json:"observed_conditions,omitempty"`
	OutcomeAlignment   string           `json:"outcome_alignment,omitempty"`
	FollowUpNeed       string           `json:"follow_up_need,omitempty"`
	Notes              string           `json:"notes,omitempty"`
	ReviewStatus       string           `json:"review_status"`
	ReviewNotes        string           `json:"review_notes,omitempty"`
	Timestamp          time.Time        `json:"timestamp"`
	ConsensusStatus    consensus.Status `json:"consensus_status"`
}

// Summary aggregates an export run for operator reporting.
type Summary struct {
	Items       int
	Unlabeled   int
	NeedsReview int
	Labeled     int
	Labels      int
	Annotators  int
}

// Options narrows what Build includes.
type Options struct {
	// Since drops labels submitted before the given instant. The zero
	// value keeps everything.
	Since time.Time
}

// Build flattens every label into a Row joined with its item's consensus
// status and computes the summary over the whole snapshot. Rows are ordered
// by timestamp then label id so repeated exports of the same data are
// byte-identical.
func Build(snap *dataset.Snapshot, all map[string][]labels.Label, required int, opts Options) ([]Row, Summary) {
	summary := Summary{Items: len(snap.Items)}
	uids := make(map[string]struct{})

	var rows []Row
	for i := range snap.Items {
		item := snap.Items[i]
		set := all[item.RequestID]
		status := consensus.Evaluate(set, required)
		switch status {
		case consensus.StatusUnlabeled:
			summary.Unlabeled++
		case consensus.StatusNeedsReview:
			summary.NeedsReview++
		case consensus.StatusLabeled:
			summary.Labeled++
		}
		for _, label := range set {
			uids[label.AnnotatorUID] = struct{}{}
			summary.Labels++
			if !opts.Since.IsZero() && label.Timestamp.Before(opts.Since) {
				continue
			}
			rows = append(rows, flatten(label, status))
		}
	}
	summary.Annotators = len(uids)

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.Before(rows[j].Timestamp)
		}
		return rows[i].LabelID < rows[j].LabelID
	})
	return rows, summary
}

func flatten(label labels.Label, status consensus.Status) Row {
	var observed []string
	for _, condition := range observedConditions {
		if condition.set(label.Features) {
			observed = append(observed, condition.label)
		}
	}
	window, windowLabel := resolveGoaWindow(label.Features.GoaWindow)
	return Row{
		LabelID:            label.LabelID,
		RequestID:          label.ItemID,
		AnnotatorUID:       label.AnnotatorUID,
		Annotator:          label.Annotator,
		Role:               label.Role,
		Priority:           label.Priority,
		TentsCount:         label.Features.TentsCount,
		GoaWindow:          window,
		GoaWindowLabel:     windowLabel,
		RoutingDepartment:  label.Features.RoutingDepartment,
		RoutingOther:       label.Features.RoutingOther,
		NumPeopleBin:       label.Features.NumPeopleBin,
		SizeFeetBin:        label.Features.SizeFeetBin,
		ObservedConditions: strings.Join(observed, ";"),
		OutcomeAlignment:   label.OutcomeAlignment,
		FollowUpNeed:       strings.Join(label.FollowUpNeed, ";"),
		Notes:              label.Notes,
		ReviewStatus:       string(label.ReviewStatus),
		ReviewNotes:        label.ReviewNotes,
		Timestamp:          label.Timestamp.UTC(),
		ConsensusStatus:    status,
	}
}

// resolveGoaWindow normalizes the stored value and pairs it with its
// description. Values outside the known set keep a titled form of the raw
// string so nothing is silently dropped.
func resolveGoaWindow(raw string) (string, string) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		normalized = "unknown"
	}
	if label, ok := goaWindowLabels[normalized]; ok {
		return normalized, label
	}
	titled := cases.Title(language.Und).String(strings.ReplaceAll(normalized, "_", " "))
	return normalized, titled
}
