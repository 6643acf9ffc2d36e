package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"festadmin/internal/content"
	"festadmin/internal/logging"
	"festadmin/internal/migration"
)

func newMigrateMediaCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var collections []string
	var workers int
	var output string
	var showDiffs bool

	cmd := &cobra.Command{
		Use:   "migrate-media",
		Short: "Rewrite stored media fields into canonical form",
		Long: "Normalize, validate, and repair the media fields of every record in the\n" +
			"configured collections. Records whose canonical form differs from what is\n" +
			"stored are written back; --dry-run only reports what would change.\n\n" +
			"The command exits 0 whenever the run completes, including runs with\n" +
			"per-record write failures. It fails when a collection cannot be read.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") && workers < 1 {
				return fmt.Errorf("--workers must be at least 1")
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Migration.Workers
			}

			runID := migration.NewRunID()
			runLog, err := logging.OpenRunLog(ctx.log(), cfg.Paths.LogDir, runID)
			if err != nil {
				return err
			}
			defer runLog.Close()
			logging.PruneRunLogs(runLog.Logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, runLog.Path)

			if !dryRun {
				lock, err := migration.AcquireLock(cfg.Migration.LockFile)
				if err != nil {
					return err
				}
				defer lock.Release()
			}

			return ctx.withRepository(cmd.Context(), func(repo content.Repository) error {
				var write migration.WriteFunc
				if !dryRun {
					write = repo.WriteMedia
				}
				report, runErr := migration.Migrate(cmd.Context(), repo, write, migration.Options{
					DryRun:      dryRun,
					Collections: resolveCollections(collections, cfg),
					Workers:     workers,
					Logger:      runLog.Logger,
					RunID:       runID,
				})

				handled, err := writeStructured(cmd, format, report)
				if err != nil {
					return err
				}
				if !handled {
					renderMigrationReport(cmd.OutOrStdout(), report, showDiffs, shouldColorize(cmd.OutOrStdout()))
					fmt.Fprintf(cmd.OutOrStdout(), "Run log: %s\n", runLog.Path)
				}
				return runErr
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing")
	cmd.Flags().StringArrayVar(&collections, "collection", nil, "Collection to migrate (repeatable; defaults to migration.collections)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Records processed concurrently (defaults to migration.workers)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, or yaml")
	cmd.Flags().BoolVar(&showDiffs, "diffs", false, "Print per-record changes in table output")
	return cmd
}

func renderMigrationReport(out io.Writer, report *migration.Report, showDiffs, colorize bool) {
	mode := "apply"
	if report.DryRun {
		mode = "dry run"
	}
	status := paint("completed", ansiGreen, colorize)
	if report.Cancelled {
		status = paint("cancelled", ansiYellow, colorize)
	}
	fmt.Fprintf(out, "Media migration %s (%s), run %s, %s\n", status, mode, report.RunID, report.Duration.Round(time.Millisecond))

	rows := make([][]string, 0, len(report.Collections)+1)
	for _, c := range report.Collections {
		rows = append(rows, []string{
			collectionLabel(c.Name),
			strconv.Itoa(c.Total),
			strconv.Itoa(c.Changed),
			strconv.Itoa(c.Unchanged),
			strconv.Itoa(c.Written),
			strconv.Itoa(c.Failed),
		})
	}
	rows = append(rows, []string{
		"Total",
		strconv.Itoa(report.TotalRecords),
		strconv.Itoa(report.RecordsChanged),
		strconv.Itoa(report.RecordsUnchanged),
		strconv.Itoa(report.RecordsWritten),
		strconv.Itoa(len(report.WriteFailures)),
	})
	fmt.Fprintln(out, renderTable(
		[]string{"Collection", "Records", "Changed", "Unchanged", "Written", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	if report.DryRun && report.RecordsChanged > 0 {
		fmt.Fprintf(out, "%d record(s) would be rewritten; rerun without --dry-run to apply.\n", report.RecordsChanged)
	}

	if len(report.WriteFailures) > 0 {
		fmt.Fprintln(out, paint("Write failures:", ansiRed, colorize))
		for _, f := range report.WriteFailures {
			fmt.Fprintf(out, "  %s/%s: %s\n", f.Collection, f.ID, f.Error)
		}
	}

	if showDiffs {
		renderRecordDiffs(out, report.PerRecordDiffs)
	}
}

func renderRecordDiffs(out io.Writer, diffs []migration.RecordDiff) {
	if len(diffs) == 0 {
		fmt.Fprintln(out, "No record changes.")
		return
	}
	fmt.Fprintln(out, "Changes:")
	for _, d := range diffs {
		fmt.Fprintf(out, "  %s/%s\n", d.Collection, d.ID)
		for _, ch := range d.Changes {
			fmt.Fprintf(out, "    %s: %s -> %s\n", ch.Field, compactValue(ch.Before), compactValue(ch.After))
		}
		for _, issue := range d.Issues {
			fmt.Fprintf(out, "    repaired: %s\n", issue)
		}
		for _, skip := range d.Skips {
			fmt.Fprintf(out, "    dropped: %s\n", skip)
		}
	}
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
