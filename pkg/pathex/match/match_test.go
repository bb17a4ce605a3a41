package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/pathex/pkg/pathex/fuzz"
	"github.com/cognicore/pathex/pkg/pathex/ingest"
	"github.com/cognicore/pathex/pkg/pathex/lexicon"
	"github.com/cognicore/pathex/pkg/pathex/negex"
	"github.com/cognicore/pathex/pkg/pathex/report"
	"github.com/cognicore/pathex/pkg/pathex/vectors"
)

var labels = []string{"Enchondroma", "stress fracture", "fracture", "osteoarthritis", " fracture "}

func TestNormalizeLabels(t *testing.T) {
	assert.Equal(t, []string{"enchondroma", "stress fracture", "fracture", "osteoarthritis"}, NormalizeLabels(labels))
	assert.Empty(t, NormalizeLabels([]string{"", "  "}))
}

func TestExactFirstLabelInListOrder(t *testing.T) {
	m, err := NewExact(labels, nil)
	require.NoError(t, err)
	ctx := context.Background()

	p, err := m.Match(ctx, "Impression: Healing STRESS FRACTURE of the tibia.")
	require.NoError(t, err)
	assert.Equal(t, "stress fracture", p.Label)
	assert.Equal(t, "exact", p.Strategy)
	assert.True(t, p.Found())

	p, err = m.Match(ctx, "fracture adjacent to an enchondroma")
	require.NoError(t, err)
	assert.Equal(t, "enchondroma", p.Label, "list order beats text order")

	p, err = m.Match(ctx, "normal knee")
	require.NoError(t, err)
	assert.Equal(t, NoPathology, p.Label)
	assert.False(t, p.Found())
}

func TestExactSynonymPredictsCanonical(t *testing.T) {
	lex := lexicon.New()
	lex.AddSynonymGroup("osteoarthritis", []string{"degenerative joint disease", "djd"})
	m, err := NewExact(labels, lex)
	require.NoError(t, err)

	p, err := m.Match(context.Background(), "mild degenerative joint disease")
	require.NoError(t, err)
	assert.Equal(t, "osteoarthritis", p.Label)
	assert.Equal(t, "degenerative joint disease", p.Evidence)
}

func TestConstructorsRejectEmptyLabels(t *testing.T) {
	_, err := NewExact(nil, nil)
	assert.ErrorIs(t, err, ErrNoLabels)
	_, err = NewFuzzy([]string{" "}, 85)
	assert.ErrorIs(t, err, ErrNoLabels)
	_, err = NewNegation(nil, nil, negex.ClinicalTermset())
	assert.ErrorIs(t, err, ErrNoLabels)
}

func TestFuzzyThreshold(t *testing.T) {
	_, err := NewFuzzy(labels, 101)
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	m, err := NewFuzzy(labels, DefaultFuzzyThreshold)
	require.NoError(t, err)
	assert.Equal(t, "partial_ratio", m.Scorer())

	p, err := m.Match(context.Background(), "known enchondrome of the femur")
	require.NoError(t, err)
	assert.Equal(t, "enchondroma", p.Label)
	assert.GreaterOrEqual(t, p.Score, 85.0)

	p, err = m.Match(context.Background(), "unremarkable")
	require.NoError(t, err)
	assert.Equal(t, NoPathology, p.Label)
	assert.Less(t, p.Score, 85.0)
}

func TestFuzzyTiesGoToEarlierLabel(t *testing.T) {
	m, err := NewFuzzy([]string{"stress fracture", "fracture"}, 80)
	require.NoError(t, err)

	// both labels score 100 against the text
	p, err := m.Match(context.Background(), "healing stress fracture")
	require.NoError(t, err)
	assert.Equal(t, "stress fracture", p.Label)
	assert.Equal(t, 100.0, p.Score)
}

func TestFuzzyCustomScorer(t *testing.T) {
	m, err := NewFuzzy([]string{"fracture"}, 90, WithScorer("ratio", fuzz.Ratio))
	require.NoError(t, err)
	p, err := m.Match(context.Background(), "healing fracture of the tibia")
	require.NoError(t, err)
	assert.Equal(t, NoPathology, p.Label, "whole-string ratio is diluted by context")
}

func TestFuzzyTokens(t *testing.T) {
	tok := ingest.NewTokenizer(ingest.DefaultStopwords())
	m, err := NewFuzzy([]string{"enchondroma"}, 85, WithTokens(tok))
	require.NoError(t, err)
	assert.Equal(t, "fuzzy_tokens", m.Name())

	p, err := m.Match(context.Background(), "There is an enchondroma in 2 places.")
	require.NoError(t, err)
	assert.Equal(t, "enchondroma", p.Label)
	assert.Equal(t, "enchondroma", p.Evidence)
	assert.Equal(t, 100.0, p.Score)
}

func testModel(t *testing.T) *vectors.Model {
	t.Helper()
	m, err := vectors.NewModel(map[string][]float32{
		"stress":    {1, 0, 0},
		"fracture":  {1, 0.2, 0},
		"break":     {0.9, 0.3, 0},
		"tumor":     {0, 1, 0},
		"cartilage": {0, 0, 1},
		"tibia":     {0.1, 0.1, 0.1},
	})
	require.NoError(t, err)
	return m
}

func TestVectorPredictsBestLabel(t *testing.T) {
	ctx := context.Background()
	m, err := NewVector(ctx, testModel(t), []string{"stress fracture", "tumor", "enchondroma"}, DefaultVectorThreshold)
	require.NoError(t, err)
	assert.Equal(t, []string{"enchondroma"}, m.Skipped())

	p, err := m.Match(ctx, "break of the tibia")
	require.NoError(t, err)
	assert.Equal(t, "stress fracture", p.Label)
	assert.Greater(t, p.Score, DefaultVectorThreshold)
	assert.Equal(t, "vector", p.Strategy)

	p, err = m.Match(ctx, "cartilage")
	require.NoError(t, err)
	assert.Equal(t, NoPathology, p.Label)

	p, err = m.Match(ctx, "nothing known here")
	require.NoError(t, err)
	assert.Equal(t, NoPathology, p.Label)
}

func TestVectorRejectsUnembeddableLabels(t *testing.T) {
	_, err := NewVector(context.Background(), testModel(t), []string{"enchondroma"}, 0.5)
	assert.ErrorIs(t, err, ErrNoLabels)

	_, err = NewVector(context.Background(), testModel(t), []string{"tumor"}, 2)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestNegationSkipsNegatedMentions(t *testing.T) {
	lex := lexicon.New()
	lex.AddSynonymGroup("osteoarthritis", []string{"djd"})
	m, err := NewNegation(labels, lex, negex.ClinicalTermset())
	require.NoError(t, err)
	ctx := context.Background()

	p, err := m.Match(ctx, "No obvious acute fracture or stress fracture. Mild DJD.")
	require.NoError(t, err)
	assert.Equal(t, "osteoarthritis", p.Label)
	assert.Equal(t, "djd", p.Evidence)
	assert.False(t, p.Negated)

	p, err = m.Match(ctx, "No obvious acute fracture or stress fracture.")
	require.NoError(t, err)
	assert.Equal(t, NoPathology, p.Label)
	assert.True(t, p.Negated)

	p, err = m.Match(ctx, "Unremarkable study.")
	require.NoError(t, err)
	assert.Equal(t, NoPathology, p.Label)
	assert.False(t, p.Negated)
}

type fixed struct {
	name string
	p    Prediction
}

func (f fixed) Name() string { return f.name }
func (f fixed) Match(context.Context, string) (Prediction, error) {
	return f.p, nil
}

func TestChain(t *testing.T) {
	neg := fixed{"negation", Prediction{Label: NoPathology, Negated: true}}
	miss := fixed{"miss", Prediction{Label: NoPathology}}
	hit := fixed{"hit", Prediction{Label: "cyst", Strategy: "hit"}}

	c := NewChain(miss, hit)
	assert.Equal(t, "chain(miss,hit)", c.Name())
	p, err := c.Match(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "cyst", p.Label)

	p, err = NewChain(neg, miss).Match(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, NoPathology, p.Label)
	assert.True(t, p.Negated)
}

const kneeReport = `clinical indication: knee pain
impression: healing stress fracture of the proximal tibia.
electronic signature: signed by dr house 01/02/2020`

func TestRunSetsPredictions(t *testing.T) {
	m, err := NewExact(labels, nil)
	require.NoError(t, err)

	reports := []*report.Report{
		report.New(kneeReport, "stress fracture"),
		report.New("no impression here, only fracture", ""),
	}

	got, err := Run(context.Background(), m, reports, report.LookInImpression)
	require.NoError(t, err)
	assert.Equal(t, []string{"stress fracture", NoPathology}, got)
	assert.Equal(t, "stress fracture", reports[0].Predicted)

	got, err = Run(context.Background(), m, reports, report.LookInReport)
	require.NoError(t, err)
	assert.Equal(t, []string{"stress fracture", "fracture"}, got)

	_, err = Run(context.Background(), m, reports, report.LookIn("body"))
	assert.ErrorIs(t, err, report.ErrInvalidLookIn)
}

func TestRunHonoursCancellation(t *testing.T) {
	m, err := NewExact(labels, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, m, []*report.Report{report.New(kneeReport, "")}, report.LookInReport)
	assert.ErrorIs(t, err, context.Canceled)
}
