package match

import (
	"context"

	"github.com/cognicore/pathex/pkg/pathex/lexicon"
	"github.com/cognicore/pathex/pkg/pathex/negex"
)

// Negation finds label mentions and discards negated ones. The first
// affirmed mention in text order predicts its label. When every mention
// is negated the prediction is NoPathology with Negated set.
type Negation struct {
	terms    []string
	canon    map[string]string
	detector *negex.Detector
}

// NewNegation builds a negation-aware matcher. lex may be nil.
func NewNegation(labels []string, lex *lexicon.Lexicon, ts negex.Termset) (*Negation, error) {
	labels = NormalizeLabels(labels)
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}
	n := &Negation{canon: make(map[string]string), detector: negex.New(ts)}
	add := func(term, label string) {
		if _, ok := n.canon[term]; ok {
			return
		}
		n.canon[term] = label
		n.terms = append(n.terms, term)
	}
	for _, l := range labels {
		add(l, l)
	}
	if lex != nil {
		for _, l := range labels {
			for _, v := range lex.Variants(l) {
				add(v, l)
			}
		}
	}
	return n, nil
}

func (n *Negation) Name() string { return "negation" }

func (n *Negation) Match(ctx context.Context, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	mentions := n.detector.Annotate(text, n.terms)
	for _, m := range mentions {
		if !m.Negated {
			return Prediction{Label: n.canon[m.Term], Score: 1, Strategy: n.Name(), Evidence: m.Term}, nil
		}
	}
	p := none(n.Name())
	if len(mentions) > 0 {
		p.Negated = true
		p.Evidence = mentions[0].Trigger + " " + mentions[0].Term
	}
	return p, nil
}
