package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/pathex/pkg/pathex"
	"github.com/cognicore/pathex/pkg/pathex/config"
	"github.com/cognicore/pathex/pkg/pathex/dataset"
	"github.com/cognicore/pathex/pkg/pathex/eval"
	"github.com/cognicore/pathex/pkg/pathex/report"
	"github.com/cognicore/pathex/pkg/pathex/store"
	"github.com/cognicore/pathex/pkg/pathex/store/sqlite"
)

type predictFlags struct {
	reports   string
	labels    string
	strategy  string
	lookIn    string
	section   string
	threshold float64
	noStore   bool
}

func newPredictCmd(a *app) *cobra.Command {
	var f predictFlags
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the pathology of every report",
		Long: `Predict the pathology of every report and record the run.

With look-in "impression" only reports that have an impression section are
matched. Strategies can be chained, the first one that finds a pathology
wins.

Examples:
  # Exact matching on MSK impressions
  pathex predict --reports sdr.csv --labels labels.csv --section MSK

  # Negation-aware matching, falling back to fuzzy matching
  pathex predict --strategy negation,fuzzy --threshold 90`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPredict(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.reports, "reports", "", "reports CSV (overrides data.reports)")
	cmd.Flags().StringVar(&f.labels, "labels", "", "labels CSV (overrides data.labels)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "matching strategy or comma-separated chain")
	cmd.Flags().StringVar(&f.lookIn, "look-in", "", "impression or report")
	cmd.Flags().StringVar(&f.section, "section", "", "body section filter, e.g. MSK")
	cmd.Flags().Float64Var(&f.threshold, "threshold", -1, "fuzzy threshold 0-100")
	cmd.Flags().BoolVar(&f.noStore, "no-store", false, "do not record the run in the database")
	return cmd
}

func (a *app) runPredict(cmd *cobra.Command, f predictFlags) error {
	ctx := cmd.Context()
	cfg := *a.cfg
	if f.labels != "" {
		cfg.Data.Labels = f.labels
	}
	if f.strategy != "" {
		cfg.Match.Strategy = f.strategy
	}
	if f.lookIn != "" {
		cfg.Match.LookIn = f.lookIn
	}
	if f.threshold >= 0 {
		cfg.Match.Threshold = f.threshold
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	lookIn, _ := report.ParseLookIn(cfg.Match.LookIn)

	path, err := a.reportsPath(f.reports)
	if err != nil {
		return err
	}
	section, err := a.section(f.section)
	if err != nil {
		return err
	}

	// look-in report keeps every row in file order so Seq matches the
	// index used by "pathex report"
	var reports []*report.Report
	if lookIn == report.LookInReport {
		reports, err = dataset.LoadReports(path, string(section), dataset.WithLogger(a.log))
	} else {
		reports, _, err = dataset.LoadReportsWithImpression(path, string(section), dataset.WithLogger(a.log))
	}
	if err != nil {
		return err
	}

	comp, err := config.NewLoader(&cfg, a.log).Load()
	if err != nil {
		return err
	}
	matcher, err := config.NewMatcher(ctx, cfg.Match, comp, a.log)
	if err != nil {
		return err
	}

	var st store.Store
	if !f.noStore {
		st, err = sqlite.OpenSQLite(ctx, cfg.Data.DB)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
	}
	ex, err := pathex.New(pathex.Options{
		Store:   st,
		Matcher: matcher,
		Logger:  a.log,
		LookIn:  lookIn,
		Section: string(section),
	})
	if err != nil {
		if st != nil {
			st.Close()
		}
		return err
	}
	defer ex.Close()

	res, err := ex.Predict(ctx, reports)
	if err != nil {
		return err
	}
	a.log.Debug("predicted", zap.String("run", res.RunID), zap.Int("reports", len(reports)))
	return a.printSummary(cmd.OutOrStdout(), res.RunID, matcher.Name(), res.Summary)
}

func (a *app) printSummary(w io.Writer, runID, strategy string, s eval.Summary) error {
	if a.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			RunID    string `json:"run_id,omitempty"`
			Strategy string `json:"strategy,omitempty"`
			eval.Summary
		}{runID, strategy, s})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if runID != "" {
		fmt.Fprintf(tw, "run\t%s\n", runID)
	}
	if strategy != "" {
		fmt.Fprintf(tw, "strategy\t%s\n", strategy)
	}
	fmt.Fprintf(tw, "reports\t%d\n", s.Total)
	fmt.Fprintf(tw, "with ground truth\t%d\n", s.WithTruth)
	fmt.Fprintf(tw, "correct\t%d\n", s.Correct)
	fmt.Fprintf(tw, "accuracy\t%.3f\n", s.Accuracy)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "LABEL\tCOUNT")
	for _, lc := range s.Labels {
		fmt.Fprintf(tw, "%s\t%d\n", lc.Label, lc.Count)
	}
	return tw.Flush()
}
