package match

import (
	"context"
	"strings"

	"github.com/cognicore/pathex/pkg/pathex/lexicon"
)

type variant struct {
	text  string
	label string
}

// Exact predicts the first label, in list order, that occurs verbatim in
// the text. A lexicon synonym occurring in the text predicts its label.
type Exact struct {
	labels []string
	groups [][]variant
}

// NewExact builds an exact matcher. lex may be nil.
func NewExact(labels []string, lex *lexicon.Lexicon) (*Exact, error) {
	labels = NormalizeLabels(labels)
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}
	e := &Exact{labels: labels, groups: make([][]variant, len(labels))}
	for i, l := range labels {
		e.groups[i] = []variant{{text: l, label: l}}
		if lex == nil {
			continue
		}
		for _, v := range lex.Variants(l) {
			if v != l {
				e.groups[i] = append(e.groups[i], variant{text: v, label: l})
			}
		}
	}
	return e, nil
}

func (e *Exact) Name() string { return "exact" }

// Labels returns the normalized label list.
func (e *Exact) Labels() []string { return e.labels }

func (e *Exact) Match(ctx context.Context, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	text = strings.ToLower(text)
	for _, group := range e.groups {
		for _, v := range group {
			if strings.Contains(text, v.text) {
				return Prediction{Label: v.label, Score: 1, Strategy: e.Name(), Evidence: v.text}, nil
			}
		}
	}
	return none(e.Name()), nil
}
