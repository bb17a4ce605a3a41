package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/pathex/pkg/pathex/eval"
	"github.com/cognicore/pathex/pkg/pathex/store"
	"github.com/cognicore/pathex/pkg/pathex/store/sqlite"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded prediction runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sqlite.OpenSQLite(cmd.Context(), a.cfg.Data.DB)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(runs)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSTRATEGY\tLOOK IN\tSECTION\tCREATED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Strategy, r.LookIn, r.Section, r.CreatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs (0 for all)")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [run-id]",
		Short: "Summarize a recorded run (latest when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := sqlite.OpenSQLite(ctx, a.cfg.Data.DB)
			if err != nil {
				return err
			}
			defer st.Close()

			var run store.Run
			if len(args) == 1 {
				run, err = st.GetRun(ctx, args[0])
			} else {
				run, err = latestRun(cmd, st)
			}
			if err != nil {
				return err
			}

			s, err := summarizeRun(cmd, st, run.ID)
			if err != nil {
				return err
			}
			return a.printSummary(cmd.OutOrStdout(), run.ID, run.Strategy, s)
		},
	}
}

func latestRun(cmd *cobra.Command, st store.Store) (store.Run, error) {
	runs, err := st.ListRuns(cmd.Context(), 1)
	if err != nil {
		return store.Run{}, err
	}
	if len(runs) == 0 {
		return store.Run{}, errors.New("no runs recorded")
	}
	return runs[0], nil
}

// summarizeRun rebuilds the evaluation of a stored run from its
// predictions and the stored ground truth.
func summarizeRun(cmd *cobra.Command, st store.Store, runID string) (eval.Summary, error) {
	ctx := cmd.Context()
	preds, err := st.PredictionsForRun(ctx, runID)
	if err != nil {
		return eval.Summary{}, err
	}
	counts, err := st.LabelCounts(ctx, runID)
	if err != nil {
		return eval.Summary{}, err
	}

	s := eval.Summary{Total: len(preds)}
	for _, p := range preds {
		r, err := st.GetReport(ctx, p.ReportID)
		if err != nil {
			return eval.Summary{}, err
		}
		if r.GroundTruth == "" {
			continue
		}
		s.WithTruth++
		if strings.EqualFold(r.GroundTruth, p.Label) {
			s.Correct++
		}
	}
	if s.WithTruth > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.WithTruth)
	}
	for _, lc := range counts {
		s.Labels = append(s.Labels, eval.LabelCount{Label: lc.Label, Count: lc.Count})
	}
	return s, nil
}
