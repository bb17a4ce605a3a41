package match

import (
	"context"
	"strings"
)

// Chain runs matchers in order and returns the first pathology found.
type Chain struct {
	matchers []Matcher
}

// NewChain builds a chain of matchers.
func NewChain(matchers ...Matcher) *Chain {
	return &Chain{matchers: matchers}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.matchers))
	for i, m := range c.matchers {
		names[i] = m.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *Chain) Match(ctx context.Context, text string) (Prediction, error) {
	last := none(c.Name())
	for _, m := range c.matchers {
		p, err := m.Match(ctx, text)
		if err != nil {
			return Prediction{}, err
		}
		if p.Found() {
			return p, nil
		}
		if p.Negated {
			last = p
		}
	}
	return last, nil
}
