// Package dataset loads the labels, reports and RadLex exports the
// extractor works on.
package dataset

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/pathex/pkg/pathex/ingest"
	"github.com/cognicore/pathex/pkg/pathex/report"
)

// Column names of the merged reports export.
const (
	ColReport          = "Report"
	ColFile            = "file"
	ColWeek            = "Week"
	ColDay             = "Day"
	ColModality        = "Modality"
	ColExamDescription = "Exam Description"
	ColReason          = "Reason/Diagnosis/History/Findings"
	ColOrigAccession   = "Original Accession"
	ColAnonAccession   = "Anonymized Accession"
	ColAnonAccession1  = "Anonymized Accession.1"
	ColAnonAccession2  = "Anonymized Accession.2"
	// ColPathology optionally carries the expert label of a report.
	ColPathology = "Pathology"

	ColLabels = "labels"

	ColPreferredLabel = "Preferred Label"
	ColSynonyms       = "Synonyms"
)

type options struct {
	log *zap.Logger
}

// Option configures a loader.
type Option func(*options)

// WithLogger sets the logger used to report load totals.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LoadLabels reads the pathology labels column, lowercased, in file order.
func LoadLabels(path string) ([]string, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(ColLabels); err != nil {
		return nil, fmt.Errorf("labels %s: %w", path, err)
	}

	labels := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		if l := strings.ToLower(strings.TrimSpace(t.get(row, ColLabels))); l != "" {
			labels = append(labels, l)
		}
	}
	return labels, nil
}

// LoadReports reads the merged reports export. A non-empty section keeps
// only rows whose file column contains it. Rows without report text are
// skipped.
func LoadReports(path string, section string, opts ...Option) ([]*report.Report, error) {
	o := buildOptions(opts)
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(ColReport); err != nil {
		return nil, fmt.Errorf("reports %s: %w", path, err)
	}

	var out []*report.Report
	skipped := 0
	for _, row := range t.rows {
		file := t.get(row, ColFile)
		if section != "" && !strings.Contains(file, section) {
			continue
		}
		text := cell(t.get(row, ColReport))
		if strings.TrimSpace(text) == "" {
			skipped++
			continue
		}

		r := report.New(text, cell(t.get(row, ColPathology)))
		r.File = file
		r.Week = cell(t.get(row, ColWeek))
		r.Day = cell(t.get(row, ColDay))
		r.Modality = cell(t.get(row, ColModality))
		r.ExamDescription = cell(t.get(row, ColExamDescription))
		r.Reason = cell(t.get(row, ColReason))
		r.OrigAccession = strings.TrimSpace(t.get(row, ColOrigAccession))
		r.AnonAccession = strings.TrimSpace(t.get(row, ColAnonAccession))
		r.AnonAccession1 = strings.TrimSpace(t.get(row, ColAnonAccession1))
		r.AnonAccession2 = strings.TrimSpace(t.get(row, ColAnonAccession2))
		out = append(out, r)
	}
	if skipped > 0 {
		o.log.Warn("skipped rows without report text", zap.String("path", path), zap.Int("rows", skipped))
	}
	return out, nil
}

// cell flattens HTML markup some exports carry inside report cells.
func cell(s string) string {
	if strings.ContainsRune(s, '<') && strings.ContainsRune(s, '>') {
		return ingest.StripHTML(s)
	}
	return s
}

// LoadReportsWithImpression loads reports and splits them by whether they
// have an impression section.
func LoadReportsWithImpression(path string, section string, opts ...Option) (with, without []*report.Report, err error) {
	o := buildOptions(opts)
	reports, err := LoadReports(path, section, opts...)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range reports {
		if r.HasImpression() {
			with = append(with, r)
		} else {
			without = append(without, r)
		}
	}
	o.log.Info("loaded reports",
		zap.String("section", section),
		zap.Int("total", len(reports)),
		zap.Int("with_impression", len(with)),
		zap.Int("without_impression", len(without)),
	)
	return with, without, nil
}

// FilterImpress keeps reports whose text mentions "impress". It is a
// looser test than HasImpression and also admits "impressions" headers.
func FilterImpress(reports []*report.Report) []*report.Report {
	var out []*report.Report
	for _, r := range reports {
		if strings.Contains(r.Text, "impress") {
			out = append(out, r)
		}
	}
	return out
}

// LoadRadLexSynonyms reads a RadLex CSV export into preferred label ->
// synonyms. Synonyms are pipe separated.
func LoadRadLexSynonyms(path string) (map[string][]string, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(ColPreferredLabel, ColSynonyms); err != nil {
		return nil, fmt.Errorf("radlex %s: %w", path, err)
	}

	out := make(map[string][]string, len(t.rows))
	for _, row := range t.rows {
		label := strings.ToLower(strings.TrimSpace(t.get(row, ColPreferredLabel)))
		if label == "" {
			continue
		}
		var syns []string
		for _, s := range strings.Split(t.get(row, ColSynonyms), "|") {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				syns = append(syns, s)
			}
		}
		if _, ok := out[label]; !ok {
			out[label] = syns
		}
	}
	return out, nil
}
