// Package eval scores predictions against expert labels.
package eval

import (
	"sort"

	"github.com/cognicore/pathex/pkg/pathex/report"
)

// LabelCount is how often a label was predicted.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary aggregates a batch of predicted reports.
type Summary struct {
	Total       int          `json:"total"`
	WithTruth   int          `json:"with_ground_truth"`
	Correct     int          `json:"correct"`
	Accuracy    float64      `json:"accuracy"`
	Unpredicted int          `json:"unpredicted"`
	Labels      []LabelCount `json:"labels"`
}

// Summarize counts predictions and, for reports with a ground truth,
// correct ones. Accuracy is over reports that have both a ground truth and
// a prediction; it is 0 when there are none.
func Summarize(reports []*report.Report) Summary {
	s := Summary{Total: len(reports)}
	counts := make(map[string]int)
	scored := 0
	for _, r := range reports {
		if r.Predicted == "" {
			s.Unpredicted++
		} else {
			counts[r.Predicted]++
		}
		if r.GroundTruth == "" {
			continue
		}
		s.WithTruth++
		ok, err := r.IsPredictionRight()
		if err != nil {
			continue
		}
		scored++
		if ok {
			s.Correct++
		}
	}
	if scored > 0 {
		s.Accuracy = float64(s.Correct) / float64(scored)
	}
	s.Labels = SortCounts(counts)
	return s
}

// SortCounts orders label counts by count descending, then label.
func SortCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for l, n := range counts {
		out = append(out, LabelCount{Label: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
