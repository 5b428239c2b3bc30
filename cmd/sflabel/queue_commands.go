package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sflabel/internal/session"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage per-annotator work queues",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueResetCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show persisted queue records and, with an identity, the current position",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStores(func(st *stores) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				records, err := st.queues.List(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintln(out, sectionHeader("Work queues", colorize))
				if len(records) == 0 {
					fmt.Fprintln(out, "No queue records yet; they are created on first annotate call.")
				} else {
					rows := make([][]string, 0, len(records))
					for _, record := range records {
						stale := record.DatasetHash != st.snap.Hash
						rows = append(rows, []string{
							record.AnnotatorUID,
							shortHash(record.DatasetHash),
							strconv.Itoa(len(record.BaseOrder)),
							strconv.Itoa(record.Cursor),
							yesNo(stale),
							record.UpdatedAt.UTC().Format(time.RFC3339),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Annotator", "Dataset", "Items", "Cursor", "Stale", "Updated"},
						rows, 2, 3,
					))
				}

				if !ctx.hasIdentity() {
					return nil
				}
				sess, err := ctx.newSession(cmd.Context(), st)
				if err != nil {
					return err
				}
				view, err := sess.Current(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, sectionHeader("Current position", colorize))
				if view == nil {
					fmt.Fprintln(out, "Working queue is empty under the active filter.")
					return nil
				}
				fmt.Fprintf(out, "Item %s (%d of %d), status %s\n",
					view.Item.RequestID, view.WorkingIndex+1, view.WorkingTotal,
					statusBadge(view.Status, colorize))
				return nil
			})
		},
	}
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Return the annotator's cursor to the start of the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(st *stores, sess *session.Session) error {
				if err := sess.Reset(cmd.Context()); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Queue cursor reset to the start.")
				if prune {
					removed, err := st.queues.PruneStale(cmd.Context(), st.snap.Hash)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Pruned %d stale queue record(s).\n", removed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "Also remove queue records for older dataset snapshots")
	return cmd
}

func shortHash(hash string) string {
	hash = strings.TrimSpace(hash)
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
