package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/pathex/pkg/pathex/dataset"
	"github.com/cognicore/pathex/pkg/pathex/report"
)

func newReportCmd(a *app) *cobra.Command {
	var reports, section string
	cmd := &cobra.Command{
		Use:   "report <index>",
		Short: "Show the sections and authors of one report",
		Long: `Show the impression, electronic signature and authors of the report at
the given zero-based position of the (optionally section-filtered) export.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}
			path, err := a.reportsPath(reports)
			if err != nil {
				return err
			}
			s, err := a.section(section)
			if err != nil {
				return err
			}
			all, err := dataset.LoadReports(path, string(s), dataset.WithLogger(a.log))
			if err != nil {
				return err
			}
			if idx < 0 || idx >= len(all) {
				return fmt.Errorf("index %d out of range: %d reports", idx, len(all))
			}
			r := all[idx]

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "file\t%s\n", r.File)
			fmt.Fprintf(tw, "accession\t%s\n", r.OrigAccession)
			fmt.Fprintf(tw, "section\t%s\n", report.SectionOf(r.File))
			fmt.Fprintf(tw, "impression\t%s\n", orNone(r.Impression()))
			fmt.Fprintf(tw, "signature\t%s\n", orNone(r.ElectronicSignature()))

			dictator, signer, err := r.Authors()
			switch {
			case errors.Is(err, report.ErrNoAuthors), errors.Is(err, report.ErrNoSignature):
				fmt.Fprintf(tw, "authors\t-\n")
			case err != nil:
				return err
			default:
				fmt.Fprintf(tw, "dictated by\t%s\n", dictator)
				fmt.Fprintf(tw, "signed by\t%s\n", signer)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&reports, "reports", "", "reports CSV (overrides data.reports)")
	cmd.Flags().StringVar(&section, "section", "", "body section filter")
	return cmd
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
