package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sflabel/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var prefix string
	var since string
	var noCSV bool
	var noJSON bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export labels joined with consensus status to CSV and JSONL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if noCSV && noJSON {
				return fmt.Errorf("--no-csv and --no-json together leave nothing to write")
			}

			var sinceTime time.Time
			if trimmed := strings.TrimSpace(since); trimmed != "" {
				parsed, err := time.Parse(time.RFC3339, trimmed)
				if err != nil {
					return fmt.Errorf("parse --since %q (want RFC 3339): %w", since, err)
				}
				sinceTime = parsed
			}

			return ctx.withStores(func(st *stores) error {
				all, err := st.labels.QueryAll(cmd.Context())
				if err != nil {
					return err
				}
				rows, summary := export.Build(st.snap, all, st.requiredQuorum(), export.Options{Since: sinceTime})

				base := strings.TrimSpace(outputDir)
				if base == "" {
					base = filepath.Join(st.cfg.Paths.DataDir, "exports")
				}
				folder := strings.TrimSpace(prefix)
				if folder == "" {
					folder = time.Now().UTC().Format("20060102")
				}
				dir := filepath.Join(base, folder)
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create export directory %q: %w", dir, err)
				}

				if !noCSV {
					if err := writeExportFile(filepath.Join(dir, "labels.csv"), func(f *os.File) error {
						return export.WriteCSV(f, rows)
					}); err != nil {
						return err
					}
				}
				if !noJSON {
					if err := writeExportFile(filepath.Join(dir, "labels.jsonl"), func(f *os.File) error {
						return export.WriteJSONL(f, rows)
					}); err != nil {
						return err
					}
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Exported %d label(s) to %s\n", len(rows), dir)
				fmt.Fprintf(out, "Items: %d total, %d labeled, %d needs review, %d unlabeled; %d annotator(s)\n",
					summary.Items, summary.Labeled, summary.NeedsReview, summary.Unlabeled, summary.Annotators)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&outputDir, "output-dir", "", "Directory for export folders (default: <data_dir>/exports)")
	flags.StringVar(&prefix, "prefix", "", "Subfolder name (default: current UTC date YYYYMMDD)")
	flags.StringVar(&since, "since", "", "Only export labels submitted at or after this RFC 3339 timestamp")
	flags.BoolVar(&noCSV, "no-csv", false, "Skip the CSV file")
	flags.BoolVar(&noJSON, "no-json", false, "Skip the JSONL file")
	return cmd
}

func writeExportFile(path string, write func(*os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
