package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"festadmin/internal/content"
	"festadmin/internal/migration"
	"festadmin/internal/services"
)

func newCheckMediaCommand(ctx *commandContext) *cobra.Command {
	var collections []string
	var output string
	var strict bool

	cmd := &cobra.Command{
		Use:   "check-media",
		Short: "Report legacy or invalid media fields without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withRepository(cmd.Context(), func(repo content.Repository) error {
				report, auditErr := migration.Audit(cmd.Context(), repo, resolveCollections(collections, cfg))
				handled, err := writeStructured(cmd, format, report)
				if err != nil {
					return err
				}
				if !handled {
					renderAuditReport(cmd.OutOrStdout(), report, shouldColorize(cmd.OutOrStdout()))
				}
				if auditErr != nil {
					return auditErr
				}
				if strict && !report.Clean() {
					return services.Wrap(services.ErrValidation, "cli", "check-media",
						fmt.Sprintf("%d record(s) need migration", len(report.Findings)), nil)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&collections, "collection", nil, "Collection to check (repeatable; defaults to migration.collections)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, or yaml")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any record needs migration")
	return cmd
}

func renderAuditReport(out io.Writer, report *migration.AuditReport, colorize bool) {
	rows := make([][]string, 0, len(report.Collections))
	for _, c := range report.Collections {
		rows = append(rows, []string{
			collectionLabel(c.Collection),
			strconv.Itoa(c.Total),
			strconv.Itoa(c.Canonical),
			strconv.Itoa(c.Tagged),
			strconv.Itoa(c.Mixed),
			strconv.Itoa(c.Malformed),
			strconv.Itoa(c.Invalid),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Collection", "Records", "Canonical", "Tagged", "Mixed", "Malformed", "Invalid"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	if report.Clean() {
		fmt.Fprintln(out, paint("All media fields are canonical and valid.", ansiGreen, colorize))
		return
	}

	findings := make([][]string, 0, len(report.Findings))
	for _, f := range report.Findings {
		notes := append(append([]string(nil), f.Issues...), f.Skips...)
		findings = append(findings, []string{f.Collection, f.ID, string(f.Shape), joinOrDash(notes)})
	}
	fmt.Fprintln(out, paint(fmt.Sprintf("%d record(s) need migration:", len(report.Findings)), ansiYellow, colorize))
	fmt.Fprintln(out, renderTable(
		[]string{"Collection", "ID", "Shape", "Notes"},
		findings,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))
}
