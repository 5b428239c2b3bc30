package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var uidFlag string
	var emailFlag string
	var nameFlag string
	var roleFlag string

	ctx := newCommandContext(&configFlag, &uidFlag, &emailFlag, &nameFlag, &roleFlag)

	rootCmd := &cobra.Command{
		Use:           "sflabel",
		Short:         "Multi-annotator labeling coordination for SF 311 encampment reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&uidFlag, "uid", "", "Stable annotator uid (overrides --email derivation)")
	rootCmd.PersistentFlags().StringVar(&emailFlag, "email", "", "Annotator email used to derive a stable uid")
	rootCmd.PersistentFlags().StringVar(&nameFlag, "name", "", "Annotator display name")
	rootCmd.PersistentFlags().StringVar(&roleFlag, "role", "", "Annotator role")

	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newAnnotateCommand(ctx))
	rootCmd.AddCommand(newLabelsCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
