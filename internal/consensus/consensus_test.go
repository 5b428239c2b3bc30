package consensus_test

import (
	"fmt"
	"testing"
	"time"

	"sflabel/internal/consensus"
	"sflabel/internal/labels"
)

func label(uid, priority string, review labels.ReviewStatus, offset time.Duration) labels.Label {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return labels.Label{
		LabelID:      fmt.Sprintf("label-%s-%d", uid, offset),
		ItemID:       "item-1",
		AnnotatorUID: uid,
		Timestamp:    base.Add(offset),
		Priority:     priority,
		ReviewStatus: review,
	}
}

func TestEvaluateEmptySetIsUnlabeled(t *testing.T) {
	if got := consensus.Evaluate(nil, 2); got != consensus.StatusUnlabeled {
		t.Fatalf("expected unlabeled, got %s", got)
	}
}

func TestEvaluateSingleAnnotatorNeedsReview(t *testing.T) {
	set := []labels.Label{label("a", "High", labels.ReviewPending, 0)}
	if got := consensus.Evaluate(set, 2); got != consensus.StatusNeedsReview {
		t.Fatalf("expected needs_review, got %s", got)
	}
}

func TestEvaluateTwoAgreeingAnnotatorsLabeled(t *testing.T) {
	set := []labels.Label{
		label("a", "High", labels.ReviewAgree, 0),
		label("b", "High", labels.ReviewAgree, time.Hour),
	}
	if got := consensus.Evaluate(set, 2); got != consensus.StatusLabeled {
		t.Fatalf("expected labeled, got %s", got)
	}
}

func TestEvaluatePriorityConflictOverridesQuorum(t *testing.T) {
	// cap=3 scenario: two agreeing High labels settle the item, a third
	// annotator with Low priority reopens it even though quorum grew.
	set := []labels.Label{
		label("a", "High", labels.ReviewAgree, 0),
		label("b", "High", labels.ReviewAgree, time.Hour),
	}
	if got := consensus.Evaluate(set, consensus.DeriveRequired(3, 0)); got != consensus.StatusLabeled {
		t.Fatalf("expected labeled before conflict, got %s", got)
	}
	set = append(set, label("c", "Low", labels.ReviewPending, 2*time.Hour))
	if got := consensus.Evaluate(set, consensus.DeriveRequired(3, 0)); got != consensus.StatusNeedsReview {
		t.Fatalf("expected needs_review after conflict, got %s", got)
	}
}

func TestEvaluateDisagreementForcesReview(t *testing.T) {
	cases := [][]labels.Label{
		{label("a", "High", labels.ReviewDisagree, 0)},
		{
			label("a", "High", labels.ReviewAgree, 0),
			label("b", "High", labels.ReviewAgree, time.Hour),
			label("c", "High", labels.ReviewDisagree, 2*time.Hour),
		},
	}
	for i, set := range cases {
		if got := consensus.Evaluate(set, 1); got != consensus.StatusNeedsReview {
			t.Fatalf("case %d: expected needs_review, got %s", i, got)
		}
	}
}

func TestEvaluateRequiresExplicitAgreement(t *testing.T) {
	set := []labels.Label{
		label("a", "High", labels.ReviewPending, 0),
		label("b", "High", labels.ReviewPending, time.Hour),
	}
	if got := consensus.Evaluate(set, 2); got != consensus.StatusNeedsReview {
		t.Fatalf("expected needs_review without agreement, got %s", got)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	set := []labels.Label{
		label("a", "High", labels.ReviewAgree, 0),
		label("b", "High", labels.ReviewAgree, time.Hour),
	}
	first := consensus.Evaluate(set, 2)
	second := consensus.Evaluate(set, 2)
	if first != second {
		t.Fatalf("evaluation not stable: %s then %s", first, second)
	}
}

func TestEvaluateBlankPrioritiesDoNotConflict(t *testing.T) {
	set := []labels.Label{
		label("a", "High", labels.ReviewAgree, 0),
		label("b", "", labels.ReviewAgree, time.Hour),
	}
	if got := consensus.Evaluate(set, 2); got != consensus.StatusLabeled {
		t.Fatalf("expected labeled, got %s", got)
	}
}

func TestDeriveRequired(t *testing.T) {
	cases := []struct {
		cap, override, want int
	}{
		{3, 0, 2},
		{1, 0, 1},
		{2, 0, 2},
		{0, 0, 1},
		{3, 3, 3},
		{2, 5, 2},
	}
	for _, tc := range cases {
		if got := consensus.DeriveRequired(tc.cap, tc.override); got != tc.want {
			t.Fatalf("DeriveRequired(%d, %d) = %d, want %d", tc.cap, tc.override, got, tc.want)
		}
	}
}

func TestEligibleCapEnforcement(t *testing.T) {
	set := []labels.Label{
		label("a", "High", labels.ReviewPending, 0),
		label("b", "High", labels.ReviewPending, time.Hour),
		label("c", "High", labels.ReviewPending, 2*time.Hour),
	}
	for _, uid := range []string{"a", "b", "c"} {
		if !consensus.Eligible(set, uid, 3) {
			t.Fatalf("contributor %s should always be eligible to revise", uid)
		}
	}
	if consensus.Eligible(set, "d", 3) {
		t.Fatal("new annotator should be blocked once cap is consumed")
	}
	if !consensus.Eligible(set, "d", 4) {
		t.Fatal("new annotator should be admitted below cap")
	}
}

func TestEligibleRevisionDoesNotConsumeSlot(t *testing.T) {
	set := []labels.Label{
		label("a", "High", labels.ReviewPending, 0),
		label("a", "Low", labels.ReviewPending, time.Hour),
	}
	if got := len(labels.UniqueAnnotators(set)); got != 1 {
		t.Fatalf("expected one distinct annotator, got %d", got)
	}
	if !consensus.Eligible(set, "b", 2) {
		t.Fatal("second annotator should still fit under cap 2")
	}
}
