// Package pathex extracts pathology labels from radiology reports and
// records each prediction run.
package pathex

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/pathex/internal/logging"
	"github.com/cognicore/pathex/pkg/pathex/eval"
	"github.com/cognicore/pathex/pkg/pathex/match"
	"github.com/cognicore/pathex/pkg/pathex/report"
	"github.com/cognicore/pathex/pkg/pathex/store"
)

// ErrNoMatcher is returned by New without a matcher.
var ErrNoMatcher = errors.New("pathex: matcher is required")

// Extractor runs a matcher over reports and stores the results.
type Extractor struct {
	store   store.Store
	matcher match.Matcher
	log     *zap.Logger
	lookIn  report.LookIn
	section string
}

// Options configures an Extractor. Store is optional; without it runs are
// not persisted and RunResult.RunID is empty.
type Options struct {
	Store   store.Store
	Matcher match.Matcher
	Logger  *zap.Logger
	LookIn  report.LookIn
	Section string
}

// New creates an Extractor with the given dependencies
func New(opts Options) (*Extractor, error) {
	if opts.Matcher == nil {
		return nil, ErrNoMatcher
	}
	if opts.LookIn == "" {
		opts.LookIn = report.LookInImpression
	}
	if _, err := report.ParseLookIn(string(opts.LookIn)); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Extractor{
		store:   opts.Store,
		matcher: opts.Matcher,
		log:     opts.Logger,
		lookIn:  opts.LookIn,
		section: opts.Section,
	}, nil
}

// Close releases the store.
func (e *Extractor) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// RunResult is the outcome of one Predict call.
type RunResult struct {
	RunID       string
	Predictions []match.Prediction
	Summary     eval.Summary
}

// Predict labels every report, setting Report.Predicted, and records the
// run when a store is configured.
func (e *Extractor) Predict(ctx context.Context, reports []*report.Report) (RunResult, error) {
	var res RunResult
	for i, r := range reports {
		if err := r.Validate(); err != nil {
			return res, fmt.Errorf("report %d: %w", i, err)
		}
	}

	if e.store != nil {
		run, err := e.store.CreateRun(ctx, store.Run{
			Strategy: e.matcher.Name(),
			LookIn:   string(e.lookIn),
			Section:  e.section,
		})
		if err != nil {
			return res, fmt.Errorf("create run: %w", err)
		}
		res.RunID = run.ID
	}
	log := e.log.With(zap.String("run", res.RunID), zap.String("strategy", e.matcher.Name()))

	missing := 0
	for i, r := range reports {
		if e.lookIn == report.LookInImpression && !r.HasImpression() {
			missing++
			log.Debug("report has no impression section", zap.Int("report", i), zap.String("accession", r.OrigAccession))
		}
	}

	preds, err := match.RunDetailed(ctx, e.matcher, reports, e.lookIn)
	if err != nil {
		return res, err
	}
	res.Predictions = preds
	for i, p := range preds {
		log.Log(logging.TraceLevel, "matched report",
			zap.Int("report", i),
			zap.String("label", p.Label),
			zap.Float64("score", p.Score),
			zap.Bool("negated", p.Negated),
			zap.String("evidence", p.Evidence))
		if e.store != nil {
			if err := e.save(ctx, res.RunID, i, reports[i], p); err != nil {
				return res, err
			}
		}
	}

	if missing > 0 {
		log.Warn("reports without impression section", zap.Int("count", missing))
	}

	res.Summary = eval.Summarize(reports)
	if res.Summary.WithTruth < res.Summary.Total {
		log.Warn("ground truth not assigned for every report",
			zap.Int("with_ground_truth", res.Summary.WithTruth), zap.Int("total", res.Summary.Total))
	}
	log.Info("prediction run finished",
		zap.Int("reports", res.Summary.Total),
		zap.Int("correct", res.Summary.Correct),
		zap.Float64("accuracy", res.Summary.Accuracy),
	)
	return res, nil
}

func (e *Extractor) save(ctx context.Context, runID string, seq int, r *report.Report, p match.Prediction) error {
	id, err := e.store.UpsertReport(ctx, store.Report{
		OrigAccession: r.OrigAccession,
		AnonAccession: r.AnonAccession,
		File:          r.File,
		Text:          r.Text,
		GroundTruth:   r.GroundTruth,
	})
	if err != nil {
		return fmt.Errorf("store report %d: %w", seq, err)
	}
	err = e.store.SavePrediction(ctx, store.Prediction{
		RunID:    runID,
		ReportID: id,
		Seq:      seq,
		Label:    p.Label,
		Score:    p.Score,
		Strategy: p.Strategy,
		Negated:  p.Negated,
		Evidence: p.Evidence,
	})
	if err != nil {
		return fmt.Errorf("store prediction %d: %w", seq, err)
	}
	return nil
}
