package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sflabel/internal/consensus"
)

func newLabelsCommand(ctx *commandContext) *cobra.Command {
	labelsCmd := &cobra.Command{
		Use:   "labels",
		Short: "Inspect stored labels",
	}

	labelsCmd.AddCommand(newLabelsListCommand(ctx))

	return labelsCmd
}

func newLabelsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <item-id>",
		Short: "List the labels for one item and its consensus status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID := args[0]
			return ctx.withStores(func(st *stores) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				if st.snap.ItemByID(itemID) == nil {
					return fmt.Errorf("item %s is not in the dataset snapshot", itemID)
				}
				set, err := st.labels.Query(cmd.Context(), itemID)
				if err != nil {
					return err
				}
				required := st.requiredQuorum()
				status := consensus.Evaluate(set, required)

				fmt.Fprintf(out, "Item %s: %s (%d label(s), quorum %d)\n",
					itemID, statusBadge(status, colorize), len(set), required)
				if len(set) == 0 {
					return nil
				}

				rows := make([][]string, 0, len(set))
				for _, label := range set {
					annotator := label.Annotator
					if annotator == "" {
						annotator = label.AnnotatorUID
					}
					rows = append(rows, []string{
						label.LabelID,
						annotator,
						label.Priority,
						string(label.ReviewStatus),
						label.ReviewNotes,
						label.Timestamp.UTC().Format(time.RFC3339),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Label", "Annotator", "Priority", "Review", "Review notes", "Submitted"},
					rows,
				))
				return nil
			})
		},
	}
}
