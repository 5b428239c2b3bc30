package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"sflabel/internal/consensus"
	"sflabel/internal/dataset"
	"sflabel/internal/identity"
	"sflabel/internal/labels"
	"sflabel/internal/labelstore"
	"sflabel/internal/logging"
	"sflabel/internal/services"
	"sflabel/internal/workqueue"
)

// Session is the explicit per-annotator state for one labeling run: the
// annotator identity, the position tracker, the current filter, the pending
// undo context, and any prefill restored by an undo. Nothing in here is
// shared between sessions; all cross-session coordination happens through
// the label and queue stores.
type Session struct {
	id        string
	annotator identity.Annotator
	snap      *dataset.Snapshot
	store     *labelstore.Store
	tracker   *workqueue.Tracker
	cap       int
	required  int
	filter    dataset.Filter
	logger    *slog.Logger

	current string
	undo    *undoContext
	prefill *labels.Label
}

// undoContext captures exactly what is needed to reverse the most recent
// submission. Overwritten by each submit, cleared by undo.
type undoContext struct {
	labelID        string
	itemID         string
	previousCursor int
	previousLabel  *labels.Label
}

// View is the session's read model for its current work item.
type View struct {
	Item   dataset.Item
	Labels []labels.Label
	Status consensus.Status
	// ReviewTarget is the most recent label by another annotator. When
	// non-nil the session is in review mode and a submission must take an
	// explicit agree or disagree stance on it.
	ReviewTarget *labels.Label
	// OwnLabel is the acting annotator's current label on the item, nil on
	// a first pass.
	OwnLabel *labels.Label
	// Prefill is a label snapshot restored by undo, to be re-surfaced as
	// the starting point of the next edit. Nil otherwise.
	Prefill *labels.Label
	// WorkingIndex and WorkingTotal locate the item in the filtered
	// working subsequence.
	WorkingIndex int
	WorkingTotal int
}

// ReviewMode reports whether a submission on this item must review a prior
// annotator's label.
func (v *View) ReviewMode() bool {
	return v != nil && v.ReviewTarget != nil
}

// Draft is the annotator's input to Submit.
type Draft struct {
	Priority         string
	ReviewStatus     labels.ReviewStatus
	ReviewNotes      string
	Notes            string
	Features         labels.Features
	OutcomeAlignment string
	FollowUpNeed     []string
}

// SubmitOutcome reports what a Submit call actually did.
type SubmitOutcome struct {
	LabelID string
	ItemID  string
	Status  consensus.Status
	// SkippedConflict is set when the commit-time eligibility re-check
	// found the item claimed by concurrent annotators. The draft was not
	// stored and the cursor advanced past the item; this is not an error.
	SkippedConflict bool
	// Conflict classifies the lost race under services.ErrConflict. It is
	// carried in the outcome rather than returned: losing the last slot is
	// an expected coordination result, not a fault.
	Conflict error
}

// New opens a session for the annotator over the dataset snapshot. The
// queue record is loaded or lazily built through the tracker.
func New(ctx context.Context, annotator identity.Annotator, snap *dataset.Snapshot, store *labelstore.Store, queues *workqueue.Store, annotatorCap, requiredOverride int, logger *slog.Logger) (*Session, error) {
	tracker, err := workqueue.NewTracker(ctx, queues, annotator.UID, snap, logger)
	if err != nil {
		return nil, err
	}
	return &Session{
		id:        uuid.NewString(),
		annotator: annotator,
		snap:      snap,
		store:     store,
		tracker:   tracker,
		cap:       annotatorCap,
		required:  consensus.DeriveRequired(annotatorCap, requiredOverride),
		logger:    logging.NewComponentLogger(logger, "session"),
	}, nil
}

// ID returns the session correlation id.
func (s *Session) ID() string { return s.id }

// Annotator returns the acting annotator.
func (s *Session) Annotator() identity.Annotator { return s.annotator }

// SetFilter replaces the working-subsequence filter. The base order and
// cursor are untouched; the next Current call re-maps the cursor into the
// new projection.
func (s *Session) SetFilter(filter dataset.Filter) {
	s.filter = filter
	s.current = ""
}

// Current resolves the session's current work item: the filtered working
// subsequence is projected from the base order and the persisted cursor is
// mapped into it. A nil view with a nil error means the working queue is
// empty under the current filter.
func (s *Session) Current(ctx context.Context) (*View, error) {
	all, err := s.store.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	working := s.working(all)
	currentID, ok := s.tracker.Resume(working)
	if !ok {
		s.current = ""
		return nil, nil
	}
	s.current = currentID
	return s.view(currentID, working, all), nil
}

// Submit validates the draft against the item resolved by the last Current
// call, re-reads that item's label set to re-check eligibility at commit
// time, appends the label, and advances the cursor. The previous undo
// context is overwritten.
func (s *Session) Submit(ctx context.Context, draft Draft) (SubmitOutcome, error) {
	ctx = services.WithSessionID(services.WithAnnotator(ctx, s.annotator.UID), s.id)

	if s.current == "" {
		view, err := s.Current(ctx)
		if err != nil {
			return SubmitOutcome{}, err
		}
		if view == nil {
			return SubmitOutcome{}, services.Wrap(services.ErrValidation, "session", "submit", "no current item under the active filter", nil)
		}
	}
	itemID := s.current
	ctx = services.WithItemID(ctx, itemID)
	log := logging.WithContext(ctx, s.logger)

	// Fresh read: the label set may have grown since this item was shown.
	set, err := s.store.Query(ctx, itemID)
	if err != nil {
		return SubmitOutcome{}, err
	}
	if err := validateDraft(draft, set, s.annotator.UID); err != nil {
		return SubmitOutcome{}, err
	}

	// Two sessions may both pass the working-queue filter for the last
	// open slot on an item; the loser finds out here and moves on.
	if !consensus.Eligible(set, s.annotator.UID, s.cap) {
		if err := s.tracker.Advance(ctx, itemID); err != nil {
			return SubmitOutcome{}, err
		}
		s.current = ""
		conflict := services.Wrap(services.ErrConflict, "session", "submit", "item "+itemID+" is fully assigned", nil)
		log.Info("item claimed concurrently, advancing past it", logging.Error(conflict))
		return SubmitOutcome{ItemID: itemID, SkippedConflict: true, Conflict: conflict}, nil
	}

	previousCursor := s.tracker.Cursor()
	ownBefore := labels.LatestForAnnotator(set, s.annotator.UID)

	label := labels.Label{
		ItemID:           itemID,
		AnnotatorUID:     s.annotator.UID,
		Annotator:        s.annotator.DisplayName,
		Role:             s.annotator.Role,
		Priority:         strings.TrimSpace(draft.Priority),
		ReviewStatus:     draft.ReviewStatus,
		ReviewNotes:      strings.TrimSpace(draft.ReviewNotes),
		Notes:            draft.Notes,
		Features:         draft.Features,
		OutcomeAlignment: draft.OutcomeAlignment,
		FollowUpNeed:     draft.FollowUpNeed,
	}
	if ownBefore != nil {
		label.RevisionOf = ownBefore.LabelID
	}

	labelID, err := s.store.Append(ctx, label)
	if err != nil {
		return SubmitOutcome{}, err
	}

	s.undo = &undoContext{
		labelID:        labelID,
		itemID:         itemID,
		previousCursor: previousCursor,
		previousLabel:  ownBefore,
	}
	s.prefill = nil

	if err := s.tracker.Advance(ctx, itemID); err != nil {
		return SubmitOutcome{}, err
	}
	s.current = ""

	label.LabelID = labelID
	status := consensus.Evaluate(append(append([]labels.Label{}, set...), label), s.required)
	log.Info("label submitted",
		logging.String(logging.FieldLabelID, labelID),
		logging.String("status", string(status)),
	)
	return SubmitOutcome{LabelID: labelID, ItemID: itemID, Status: status}, nil
}

// Skip advances past the current item without labeling it.
func (s *Session) Skip(ctx context.Context) error {
	if s.current == "" {
		view, err := s.Current(ctx)
		if err != nil || view == nil {
			return err
		}
	}
	itemID := s.current
	s.current = ""
	return s.tracker.Advance(ctx, itemID)
}

// Previous moves back to the prior element of the working subsequence and
// persists that position.
func (s *Session) Previous(ctx context.Context) (*View, error) {
	all, err := s.store.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	working := s.working(all)
	currentID, ok := s.tracker.Resume(working)
	if !ok {
		return nil, nil
	}
	targetID, err := s.tracker.Retreat(ctx, working, currentID)
	if err != nil {
		return nil, err
	}
	s.current = targetID
	return s.view(targetID, working, all), nil
}

// Undo reverses the most recent submission: the label is deleted, the
// cursor returns to its pre-submission value, and the annotator's prior
// label snapshot is re-surfaced as prefill. Without a pending context Undo
// is a no-op. If the label was already removed by someone else the cursor
// is left untouched and the caller gets a not-found failure.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	if s.undo == nil {
		return false, nil
	}
	pending := s.undo

	deleted, err := s.store.Delete(ctx, pending.labelID)
	if err != nil {
		return false, err
	}
	if !deleted {
		s.undo = nil
		return false, services.Wrap(services.ErrNotFound, "session", "undo", "label "+pending.labelID+" already removed", nil)
	}
	if err := s.tracker.RestoreCursor(ctx, pending.previousCursor); err != nil {
		return false, err
	}
	s.prefill = pending.previousLabel
	s.undo = nil
	s.current = ""
	s.logger.Info("submission undone", logging.Args(
		logging.String(logging.FieldLabelID, pending.labelID),
		logging.String(logging.FieldItemID, pending.itemID),
		logging.String(logging.FieldAnnotator, s.annotator.UID),
	)...)
	return true, nil
}

// UndoLatest reverses the annotator's most recent stored submission,
// reconstructing the context from the store instead of session memory so it
// works across process restarts. The latest label by this annotator is
// deleted, the cursor returns to that item's base position, and the
// superseded label, if any, becomes the prefill. Returns the undone item id
// and false when the annotator has no stored labels.
func (s *Session) UndoLatest(ctx context.Context) (string, bool, error) {
	all, err := s.store.QueryAll(ctx)
	if err != nil {
		return "", false, err
	}
	var latest *labels.Label
	for itemID := range all {
		if candidate := labels.LatestForAnnotator(all[itemID], s.annotator.UID); candidate != nil {
			if latest == nil || candidate.Timestamp.After(latest.Timestamp) {
				latest = candidate
			}
		}
	}
	if latest == nil {
		return "", false, nil
	}

	deleted, err := s.store.Delete(ctx, latest.LabelID)
	if err != nil {
		return "", false, err
	}
	if !deleted {
		return "", false, services.Wrap(services.ErrNotFound, "session", "undo", "label "+latest.LabelID+" already removed", nil)
	}
	if index := s.tracker.BaseIndex(latest.ItemID); index >= 0 {
		if err := s.tracker.RestoreCursor(ctx, index); err != nil {
			return "", false, err
		}
	}
	s.prefill = nil
	if latest.RevisionOf != "" {
		for i := range all[latest.ItemID] {
			if all[latest.ItemID][i].LabelID == latest.RevisionOf {
				snapshot := all[latest.ItemID][i]
				s.prefill = &snapshot
				break
			}
		}
	}
	s.undo = nil
	s.current = ""
	s.logger.Info("latest submission undone", logging.Args(
		logging.String(logging.FieldLabelID, latest.LabelID),
		logging.String(logging.FieldItemID, latest.ItemID),
		logging.String(logging.FieldAnnotator, s.annotator.UID),
	)...)
	return latest.ItemID, true, nil
}

// CanUndo reports whether an undo context is pending.
func (s *Session) CanUndo() bool { return s.undo != nil }

// Reset returns the cursor to the start of the base order.
func (s *Session) Reset(ctx context.Context) error {
	s.current = ""
	return s.tracker.Reset(ctx)
}

// working projects the filtered, eligibility-gated subsequence out of the
// base order, preserving relative order.
func (s *Session) working(all map[string][]labels.Label) []string {
	return s.tracker.Working(func(itemID string) bool {
		item := s.snap.ItemByID(itemID)
		if item == nil {
			return false
		}
		set := all[itemID]
		if !consensus.Eligible(set, s.annotator.UID, s.cap) {
			return false
		}
		status := consensus.Evaluate(set, s.required)
		return s.filter.Match(*item, set, status, s.annotator.UID)
	})
}

func (s *Session) view(itemID string, working []string, all map[string][]labels.Label) *View {
	item := s.snap.ItemByID(itemID)
	if item == nil {
		return nil
	}
	set := all[itemID]
	index := 0
	for i, id := range working {
		if id == itemID {
			index = i
			break
		}
	}
	view := &View{
		Item:         *item,
		Labels:       labels.SortByTime(set),
		Status:       consensus.Evaluate(set, s.required),
		ReviewTarget: labels.LatestExcluding(set, s.annotator.UID),
		OwnLabel:     labels.LatestForAnnotator(set, s.annotator.UID),
		WorkingIndex: index,
		WorkingTotal: len(working),
	}
	if s.prefill != nil && s.prefill.ItemID == itemID {
		view.Prefill = s.prefill
	}
	return view
}

// validateDraft enforces the submission rules: reviewing another
// annotator's label demands an explicit agree or disagree stance with
// reviewer notes, and a disagreement always carries notes.
func validateDraft(draft Draft, set []labels.Label, annotatorUID string) error {
	status := draft.ReviewStatus
	if status == "" {
		status = labels.ReviewPending
	}
	if !status.Valid() {
		return services.Wrap(services.ErrValidation, "session", "submit", "unknown review status "+string(status), nil)
	}
	reviewTarget := labels.LatestExcluding(set, annotatorUID)
	if reviewTarget != nil {
		if status != labels.ReviewAgree && status != labels.ReviewDisagree {
			return services.Wrap(services.ErrValidation, "session", "submit", "reviewing a prior label requires an agree or disagree stance", nil)
		}
		if strings.TrimSpace(draft.ReviewNotes) == "" {
			return services.Wrap(services.ErrValidation, "session", "submit", "reviewer notes are required", nil)
		}
	}
	if status == labels.ReviewDisagree && strings.TrimSpace(draft.ReviewNotes) == "" {
		return services.Wrap(services.ErrValidation, "session", "submit", "disagreement requires reviewer notes", nil)
	}
	return nil
}
