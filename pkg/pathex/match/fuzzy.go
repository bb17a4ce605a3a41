package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/pathex/pkg/pathex/fuzz"
	"github.com/cognicore/pathex/pkg/pathex/ingest"
)

// DefaultFuzzyThreshold is the minimum score for a fuzzy prediction.
const DefaultFuzzyThreshold = 85

// Fuzzy predicts the label scoring highest against the text, provided the
// score reaches the threshold. Ties go to the earlier label.
type Fuzzy struct {
	labels     []string
	threshold  float64
	scorer     fuzz.Scorer
	scorerName string
	tokenizer  *ingest.Tokenizer
}

// FuzzyOption configures a Fuzzy matcher.
type FuzzyOption func(*Fuzzy)

// WithScorer replaces the default partial-ratio scorer.
func WithScorer(name string, s fuzz.Scorer) FuzzyOption {
	return func(f *Fuzzy) {
		f.scorerName = name
		f.scorer = s
	}
}

// WithTokens scores labels against individual tokens of the text instead
// of the whole text. A label's score is its best Ratio over the tokens.
func WithTokens(tok *ingest.Tokenizer) FuzzyOption {
	return func(f *Fuzzy) { f.tokenizer = tok }
}

// NewFuzzy builds a fuzzy matcher with a threshold in [0,100].
func NewFuzzy(labels []string, threshold float64, opts ...FuzzyOption) (*Fuzzy, error) {
	labels = NormalizeLabels(labels)
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("%w: fuzzy threshold %.1f not in [0,100]", ErrInvalidThreshold, threshold)
	}
	f := &Fuzzy{
		labels:     labels,
		threshold:  threshold,
		scorer:     fuzz.PartialRatio,
		scorerName: "partial_ratio",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Fuzzy) Name() string {
	if f.tokenizer != nil {
		return "fuzzy_tokens"
	}
	return "fuzzy"
}

// Scorer returns the configured scorer name.
func (f *Fuzzy) Scorer() string { return f.scorerName }

func (f *Fuzzy) Match(ctx context.Context, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	text = strings.ToLower(text)

	var tokens []string
	if f.tokenizer != nil {
		tokens = f.tokenizer.Tokenize(text)
	}

	best := none(f.Name())
	bestScore := -1.0
	for _, label := range f.labels {
		score, evidence := f.score(label, text, tokens)
		if score > bestScore {
			bestScore = score
			if score >= f.threshold && score > 0 {
				best = Prediction{Label: label, Score: score, Strategy: f.Name(), Evidence: evidence}
			}
		}
	}
	if !best.Found() && bestScore > 0 {
		best.Score = bestScore
	}
	return best, nil
}

func (f *Fuzzy) score(label, text string, tokens []string) (float64, string) {
	if f.tokenizer == nil {
		return f.scorer(label, text), label
	}
	best, evidence := 0.0, ""
	for _, tok := range tokens {
		if s := fuzz.Ratio(label, tok); s > best {
			best, evidence = s, tok
		}
	}
	return best, evidence
}
