package main

import (
	"testing"
	"time"

	"sflabel/internal/consensus"
	"sflabel/internal/labels"
	"sflabel/internal/testsupport"
)

func TestRequiredQuorumDerivesFromDefaultConfig(t *testing.T) {
	st := &stores{cfg: testsupport.NewConfig(t)}
	if st.cfg.RequiredUnique() != 0 {
		t.Fatalf("default override = %d, want 0 (derive)", st.cfg.RequiredUnique())
	}
	if got := st.requiredQuorum(); got != 2 {
		t.Fatalf("derived quorum = %d, want 2 with cap %d", got, st.cfg.Cap())
	}

	st = &stores{cfg: testsupport.NewConfig(t, testsupport.WithCap(1))}
	if got := st.requiredQuorum(); got != 1 {
		t.Fatalf("derived quorum = %d, want 1 with cap 1", got)
	}
}

func TestReadPathQuorumHoldsBackLoneAgreement(t *testing.T) {
	st := &stores{cfg: testsupport.NewConfig(t)}
	set := []labels.Label{{
		LabelID:      "l1",
		ItemID:       "req-a",
		AnnotatorUID: "solo",
		Priority:     "High",
		ReviewStatus: labels.ReviewAgree,
		Timestamp:    time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC),
	}}

	// The raw override (0 = derive) must never reach Evaluate: it would
	// make the quorum check vacuous and report this lone label as settled.
	if got := consensus.Evaluate(set, st.cfg.RequiredUnique()); got != consensus.StatusLabeled {
		t.Fatalf("sanity: vacuous quorum evaluates to %s", got)
	}
	if got := consensus.Evaluate(set, st.requiredQuorum()); got != consensus.StatusNeedsReview {
		t.Fatalf("single annotator under derived quorum = %s, want needs_review", got)
	}
}
