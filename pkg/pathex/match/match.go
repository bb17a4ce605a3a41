// Package match predicts a pathology label for a piece of report text.
//
// Every strategy returns NoPathology when it finds nothing, so strategies
// compose with Chain and their outputs compare directly with the expert
// ground truth.
package match

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cognicore/pathex/pkg/pathex/report"
)

// NoPathology is the label predicted when no pathology is found.
const NoPathology = "NO PATHOLOGY"

var (
	ErrNoLabels         = errors.New("match: label list is empty")
	ErrInvalidThreshold = errors.New("match: threshold out of range")
)

// Prediction is the outcome of matching one text.
type Prediction struct {
	Label    string
	Score    float64
	Strategy string
	// Negated is set when the text mentions a label only in negated form.
	Negated bool
	// Evidence is the text fragment or label variant that decided the match.
	Evidence string
}

// Found reports whether a pathology was predicted.
func (p Prediction) Found() bool {
	return p.Label != "" && p.Label != NoPathology
}

func none(strategy string) Prediction {
	return Prediction{Label: NoPathology, Strategy: strategy}
}

// Matcher maps text to a prediction.
type Matcher interface {
	Name() string
	Match(ctx context.Context, text string) (Prediction, error)
}

// Run predicts every report, stores the label on the report, and returns
// the labels in report order.
func Run(ctx context.Context, m Matcher, reports []*report.Report, lookIn report.LookIn) ([]string, error) {
	preds, err := RunDetailed(ctx, m, reports, lookIn)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(preds))
	for i, p := range preds {
		labels[i] = p.Label
	}
	return labels, nil
}

// RunDetailed is Run returning full predictions.
func RunDetailed(ctx context.Context, m Matcher, reports []*report.Report, lookIn report.LookIn) ([]Prediction, error) {
	out := make([]Prediction, 0, len(reports))
	for i, r := range reports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := r.LookIn(lookIn)
		if err != nil {
			return nil, err
		}
		p, err := m.Match(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("match report %d: %w", i, err)
		}
		r.Predicted = p.Label
		out = append(out, p)
	}
	return out, nil
}

// NormalizeLabels lowercases and trims labels, dropping blanks and
// duplicates while keeping list order.
func NormalizeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.Join(strings.Fields(strings.ToLower(l)), " ")
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
