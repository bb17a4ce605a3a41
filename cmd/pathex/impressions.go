package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/pathex/pkg/pathex/dataset"
	"github.com/cognicore/pathex/pkg/pathex/impressions"
)

func newImpressionsCmd(a *app) *cobra.Command {
	var reports, section, outDir string
	cmd := &cobra.Command{
		Use:   "impressions",
		Short: "Export impression sections for annotation",
		Long: `Write the impression section and accession numbers of every report
to impressions_<section>.csv, one file per body section.

Examples:
  # Every body section
  pathex impressions --reports sdr.csv --out-dir impressions

  # Only MSK
  pathex impressions --section MSK`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.reportsPath(reports)
			if err != nil {
				return err
			}
			s, err := a.section(section)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = a.cfg.Data.OutDir
			}

			opt := dataset.WithLogger(a.log)
			var saved []impressions.Saved
			if s == "" {
				saved, err = impressions.SaveAll(cmd.Context(), path, outDir, opt)
			} else {
				var one impressions.Saved
				one, err = impressions.SaveSection(cmd.Context(), path, outDir, s, opt)
				saved = append(saved, one)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SECTION\tROWS\tFILE")
			for _, sv := range saved {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", sv.Section, sv.Rows, sv.Path)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&reports, "reports", "", "reports CSV (overrides data.reports)")
	cmd.Flags().StringVar(&section, "section", "", "only this body section")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "output directory (overrides data.out_dir)")
	return cmd
}
