package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/pathex/pkg/pathex/config"
	"github.com/cognicore/pathex/pkg/pathex/dataset"
	"github.com/cognicore/pathex/pkg/pathex/ingest"
	"github.com/cognicore/pathex/pkg/pathex/stoplist"
)

func newStopwordsCmd(a *app) *cobra.Command {
	var (
		reports string
		labels  string
		section string
		out     string
		th      = stoplist.DefaultThresholds()
	)
	cmd := &cobra.Command{
		Use:   "stopwords",
		Short: "Suggest boilerplate stopwords from report impressions",
		Long: `Count how many impressions each token appears in and suggest tokens above
--min-df percent as stopwords. Tokens of the pathology labels are never
suggested. With --out the current stoplist plus the suggestions is written
as a YAML stoplist usable as data.stoplist. With match.tokens set the
suggestions are stems; the stemming tokenizer drops every inflection of them.

Examples:
  pathex stopwords --reports sdr.csv --min-df 50
  pathex stopwords --section MSK --out stoplist.yaml`,
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
			with, _, err := dataset.LoadReportsWithImpression(path, string(s), dataset.WithLogger(a.log))
			if err != nil {
				return err
			}
			cfg := *a.cfg
			if labels != "" {
				cfg.Data.Labels = labels
			}
			comp, err := config.NewLoader(&cfg, a.log).Load()
			if err != nil {
				return err
			}

			docs := make([][]string, 0, len(with))
			for _, r := range with {
				docs = append(docs, comp.Tokenizer.Tokenize(r.Impression()))
			}

			base := ingest.DefaultStopwords()
			if a.cfg.Data.Stoplist != "" {
				sl, err := config.LoadStoplist(a.cfg.Data.Stoplist)
				if err != nil {
					return err
				}
				base = sl.Terms
			}
			mgr := stoplist.NewManager(base)
			for _, label := range comp.Labels {
				mgr.Protect(comp.Tokenizer.Tokenize(label)...)
			}
			cands := mgr.SuggestCandidates(stoplist.Collect(docs), len(docs), th)
			a.log.Info("suggested stopwords",
				zap.Int("documents", len(docs)),
				zap.Int("candidates", len(cands)))

			if out != "" {
				mgr.Accept(cands)
				if err := config.SaveStoplist(out, mgr.All()); err != nil {
					return fmt.Errorf("write stoplist: %w", err)
				}
			}

			if a.jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(cands)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TOKEN\tDF%\tIDF")
			for _, c := range cands {
				fmt.Fprintf(tw, "%s\t%.1f\t%.3f\n", c.Token, c.Reason.DFPercent, c.Reason.IDF)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&reports, "reports", "", "reports CSV (overrides data.reports)")
	cmd.Flags().StringVar(&labels, "labels", "", "labels CSV (overrides data.labels)")
	cmd.Flags().StringVar(&section, "section", "", "only this body section")
	cmd.Flags().StringVar(&out, "out", "", "write the extended stoplist to this YAML file")
	cmd.Flags().Float64Var(&th.DFPercent, "min-df", th.DFPercent, "document frequency percent above which a token is suggested")
	cmd.Flags().IntVar(&th.MinDocs, "min-docs", th.MinDocs, "minimum number of impressions before suggesting")
	return cmd
}
