package pathex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/pathex/internal/logging"
	"github.com/cognicore/pathex/pkg/pathex/match"
	"github.com/cognicore/pathex/pkg/pathex/report"
	"github.com/cognicore/pathex/pkg/pathex/store"
	"github.com/cognicore/pathex/pkg/pathex/store/memstore"
)

func sampleReports() []*report.Report {
	a := report.New("impression: healing stress fracture. technique: xr", "stress fracture")
	a.OrigAccession = "A1"
	b := report.New("impression: enchondroma of the femur.", "osteochondroma")
	b.OrigAccession = "A2"
	c := report.New("findings: enchondroma only in the body", "")
	c.OrigAccession = "A3"
	return []*report.Report{a, b, c}
}

func newExact(t *testing.T) match.Matcher {
	t.Helper()
	m, err := match.NewExact([]string{"enchondroma", "stress fracture"}, nil)
	require.NoError(t, err)
	return m
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrNoMatcher)

	_, err = New(Options{Matcher: newExact(t), LookIn: "body"})
	assert.ErrorIs(t, err, report.ErrInvalidLookIn)
}

func TestPredictWithoutStore(t *testing.T) {
	ex, err := New(Options{Matcher: newExact(t)})
	require.NoError(t, err)
	defer ex.Close()

	reports := sampleReports()
	res, err := ex.Predict(context.Background(), reports)
	require.NoError(t, err)

	assert.Empty(t, res.RunID)
	require.Len(t, res.Predictions, 3)
	assert.Equal(t, "stress fracture", reports[0].Predicted)
	assert.Equal(t, "enchondroma", reports[1].Predicted)
	assert.Equal(t, match.NoPathology, reports[2].Predicted, "no impression section to look in")

	assert.Equal(t, 3, res.Summary.Total)
	assert.Equal(t, 2, res.Summary.WithTruth)
	assert.Equal(t, 1, res.Summary.Correct)
}

func TestPredictRecordsRun(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	log, logs := logging.NewObserved()

	ex, err := New(Options{Store: st, Matcher: newExact(t), Logger: log, LookIn: report.LookInReport, Section: "MSK"})
	require.NoError(t, err)

	res, err := ex.Predict(ctx, sampleReports())
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)

	run, err := st.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "exact", run.Strategy)
	assert.Equal(t, "report", run.LookIn)
	assert.Equal(t, "MSK", run.Section)

	preds, err := st.PredictionsForRun(ctx, res.RunID)
	require.NoError(t, err)
	require.Len(t, preds, 3)
	assert.Equal(t, "enchondroma", preds[2].Label, "full text is searched")

	counts, err := st.LabelCounts(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, []store.LabelCount{
		{Label: "enchondroma", Count: 2},
		{Label: "stress fracture", Count: 1},
	}, counts)

	assert.Equal(t, 1, logs.FilterMessage("prediction run finished").Len())
	assert.Zero(t, logs.FilterMessage("reports without impression section").Len())
}

func TestPredictWarnsOnMissingImpression(t *testing.T) {
	log, logs := logging.NewObserved()
	ex, err := New(Options{Matcher: newExact(t), Logger: log})
	require.NoError(t, err)

	_, err = ex.Predict(context.Background(), sampleReports())
	require.NoError(t, err)
	entries := logs.FilterMessage("reports without impression section").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 1, entries[0].ContextMap()["count"])
}

func TestPredictLogLevels(t *testing.T) {
	log, logs := logging.NewObserved()
	ex, err := New(Options{Matcher: newExact(t), Logger: log})
	require.NoError(t, err)

	_, err = ex.Predict(context.Background(), sampleReports())
	require.NoError(t, err)

	truth := logs.FilterMessage("ground truth not assigned for every report").All()
	require.Len(t, truth, 1)
	assert.Equal(t, zapcore.WarnLevel, truth[0].Level)
	assert.EqualValues(t, 2, truth[0].ContextMap()["with_ground_truth"])

	matched := logs.FilterMessage("matched report").All()
	require.Len(t, matched, 3)
	assert.Equal(t, logging.TraceLevel, matched[0].Level)
	assert.Equal(t, "stress fracture", matched[0].ContextMap()["label"])
}

func TestPredictRejectsEmptyReport(t *testing.T) {
	ex, err := New(Options{Matcher: newExact(t)})
	require.NoError(t, err)
	_, err = ex.Predict(context.Background(), []*report.Report{report.New("  ", "")})
	assert.ErrorIs(t, err, report.ErrEmptyText)
}
