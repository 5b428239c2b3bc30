package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sflabel/internal/dataset"
	"sflabel/internal/labels"
	"sflabel/internal/services"
	"sflabel/internal/session"
)

// filterFlags carries the working-queue filter options shared by the
// annotate subcommands.
type filterFlags struct {
	evidence     string
	status       string
	keywords     []string
	tags         []string
	search       string
	onlyMine     bool
	richContext  bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.evidence, "evidence", "", "Filter by photo evidence: yes or no")
	flags.StringVar(&f.status, "status", dataset.StatusAll, "Filter by consensus status: all, unlabeled, needs_review, labeled")
	flags.StringSliceVar(&f.keywords, "keyword", nil, "Require a keyword (repeatable)")
	flags.StringSliceVar(&f.tags, "tag", nil, "Require a tag (repeatable)")
	flags.StringVar(&f.search, "search", "", "Case-insensitive substring search")
	flags.BoolVar(&f.onlyMine, "mine", false, "Only items you have already labeled")
	flags.BoolVar(&f.richContext, "rich", false, "Only items with photos or responder notes")
}

func (f *filterFlags) build() (dataset.Filter, error) {
	filter := dataset.Filter{
		Status:             strings.TrimSpace(f.status),
		Keywords:           f.keywords,
		Tags:               f.tags,
		Search:             f.search,
		OnlyMine:           f.onlyMine,
		RequireRichContext: f.richContext,
	}
	switch strings.ToLower(strings.TrimSpace(f.evidence)) {
	case "":
	case "yes", "true":
		v := true
		filter.Evidence = &v
	case "no", "false":
		v := false
		filter.Evidence = &v
	default:
		return dataset.Filter{}, fmt.Errorf("invalid --evidence value %q (want yes or no)", f.evidence)
	}
	return filter, nil
}

func newAnnotateCommand(ctx *commandContext) *cobra.Command {
	annotateCmd := &cobra.Command{
		Use:   "annotate",
		Short: "Work through the labeling queue",
	}

	annotateCmd.AddCommand(newAnnotateNextCommand(ctx))
	annotateCmd.AddCommand(newAnnotateSkipCommand(ctx))
	annotateCmd.AddCommand(newAnnotatePrevCommand(ctx))
	annotateCmd.AddCommand(newAnnotateSubmitCommand(ctx))
	annotateCmd.AddCommand(newAnnotateUndoCommand(ctx))

	return annotateCmd
}

func newAnnotateNextCommand(ctx *commandContext) *cobra.Command {
	var filter filterFlags

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the current work item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(st *stores, sess *session.Session) error {
				built, err := filter.build()
				if err != nil {
					return err
				}
				sess.SetFilter(built)
				view, err := sess.Current(cmd.Context())
				if err != nil {
					return err
				}
				printView(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}

	filter.register(cmd)
	return cmd
}

func newAnnotateSkipCommand(ctx *commandContext) *cobra.Command {
	var filter filterFlags

	cmd := &cobra.Command{
		Use:   "skip",
		Short: "Advance past the current item without labeling it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(st *stores, sess *session.Session) error {
				built, err := filter.build()
				if err != nil {
					return err
				}
				sess.SetFilter(built)
				if err := sess.Skip(cmd.Context()); err != nil {
					return err
				}
				view, err := sess.Current(cmd.Context())
				if err != nil {
					return err
				}
				printView(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}

	filter.register(cmd)
	return cmd
}

func newAnnotatePrevCommand(ctx *commandContext) *cobra.Command {
	var filter filterFlags

	cmd := &cobra.Command{
		Use:   "prev",
		Short: "Move back to the previous item in the working queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(st *stores, sess *session.Session) error {
				built, err := filter.build()
				if err != nil {
					return err
				}
				sess.SetFilter(built)
				view, err := sess.Previous(cmd.Context())
				if err != nil {
					return err
				}
				printView(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}

	filter.register(cmd)
	return cmd
}

func newAnnotateSubmitCommand(ctx *commandContext) *cobra.Command {
	var filter filterFlags
	var priority string
	var review string
	var reviewNotes string
	var notes string
	var tents int
	var goaWindow string
	var routing string
	var observed []string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a label for the current item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(st *stores, sess *session.Session) error {
				built, err := filter.build()
				if err != nil {
					return err
				}
				sess.SetFilter(built)

				draft := session.Draft{
					Priority:     priority,
					ReviewStatus: labels.ReviewStatus(strings.ToLower(strings.TrimSpace(review))),
					ReviewNotes:  reviewNotes,
					Notes:        notes,
				}
				draft.Features.TentsCount = tents
				draft.Features.GoaWindow = goaWindow
				draft.Features.RoutingDepartment = routing
				if err := applyObserved(&draft.Features, observed); err != nil {
					return err
				}

				outcome, err := sess.Submit(cmd.Context(), draft)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				if outcome.SkippedConflict {
					fmt.Fprintf(out, "Item %s was fully assigned by other annotators; skipped ahead.\n", outcome.ItemID)
					return nil
				}
				fmt.Fprintf(out, "Stored label %s for item %s; item status is now %s.\n",
					outcome.LabelID, outcome.ItemID, statusBadge(outcome.Status, colorize))
				return nil
			})
		},
	}

	filter.register(cmd)
	flags := cmd.Flags()
	flags.StringVar(&priority, "priority", "", "Priority assessment")
	flags.StringVar(&review, "review", "", "Review stance toward a prior label: agree or disagree")
	flags.StringVar(&reviewNotes, "review-notes", "", "Reviewer notes (required when reviewing)")
	flags.StringVar(&notes, "notes", "", "Free-form notes")
	flags.IntVar(&tents, "tents", 0, "Observed tent count")
	flags.StringVar(&goaWindow, "goa-window", "", "Gone-on-arrival response window")
	flags.StringVar(&routing, "routing", "", "Suggested routing department")
	flags.StringSliceVar(&observed, "observed", nil, "Observed conditions (repeatable): lying_face_down, safety_issue, drugs, blocking, on_ramp, propane_or_flame, children_present, wheelchair")
	return cmd
}

func newAnnotateUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Reverse your most recent submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(st *stores, sess *session.Session) error {
				itemID, done, err := sess.UndoLatest(cmd.Context())
				if errors.Is(err, services.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), "The label was already removed; the queue position was left untouched.")
					return nil
				}
				if err != nil {
					return err
				}
				if !done {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to undo.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Last submission undone; the cursor returned to item %s.\n", itemID)
				return nil
			})
		},
	}
}

// applyObserved maps condition names onto their feature flags.
func applyObserved(features *labels.Features, observed []string) error {
	for _, name := range observed {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "lying_face_down":
			features.LyingFaceDown = true
		case "safety_issue":
			features.SafetyIssue = true
		case "drugs":
			features.Drugs = true
		case "blocking":
			features.Blocking = true
		case "on_ramp":
			features.OnRamp = true
		case "propane_or_flame":
			features.PropaneOrFlame = true
		case "children_present":
			features.ChildrenPresent = true
		case "wheelchair":
			features.Wheelchair = true
		case "":
		default:
			return fmt.Errorf("unknown observed condition %q", name)
		}
	}
	return nil
}

func printView(out io.Writer, view *session.View) {
	colorize := shouldColorize(out)
	if view == nil {
		fmt.Fprintln(out, "Working queue is empty under the active filter.")
		return
	}
	fmt.Fprintln(out, sectionHeader("Item "+view.Item.RequestID, colorize))
	fmt.Fprintf(out, "Position:   %d of %d\n", view.WorkingIndex+1, view.WorkingTotal)
	fmt.Fprintf(out, "Status:     %s\n", statusBadge(view.Status, colorize))
	fmt.Fprintf(out, "Evidence:   %s\n", yesNo(view.Item.HasEvidence()))
	if !view.Item.CreatedAt.IsZero() {
		fmt.Fprintf(out, "Created:    %s\n", view.Item.CreatedAt.Format("2006-01-02 15:04"))
	}
	if view.Item.ServiceSubtype != "" {
		fmt.Fprintf(out, "Subtype:    %s\n", view.Item.ServiceSubtype)
	}
	if text := strings.TrimSpace(view.Item.Text); text != "" {
		fmt.Fprintf(out, "Report:     %s\n", text)
	}
	if view.ReviewMode() {
		fmt.Fprintf(out, "Review:     prior label by %s (priority %q) requires an agree or disagree stance\n",
			view.ReviewTarget.AnnotatorUID, view.ReviewTarget.Priority)
	}
	if view.OwnLabel != nil {
		fmt.Fprintf(out, "Yours:      label %s (priority %q); a new submission revises it\n",
			view.OwnLabel.LabelID, view.OwnLabel.Priority)
	}
	if view.Prefill != nil {
		fmt.Fprintf(out, "Prefill:    restored from undone revision of label %s\n", view.Prefill.LabelID)
	}
	fmt.Fprintf(out, "Labels:     %d\n", len(view.Labels))
}
