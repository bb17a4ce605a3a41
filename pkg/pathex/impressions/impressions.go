// Package impressions exports report impressions with their accession
// numbers, one CSV per body section, for the annotation tool.
package impressions

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/pathex/pkg/pathex/dataset"
	"github.com/cognicore/pathex/pkg/pathex/report"
)

// Header is the column row of an impressions file.
var Header = []string{"impression", "orig_acc", "anon_acc", "anon_acc_1", "anon_acc_2"}

// Row is one exported impression. The accession numbers re-identify the
// report in the source spreadsheets.
type Row struct {
	Impression string
	OrigAcc    string
	AnonAcc    string
	AnonAcc1   string
	AnonAcc2   string
}

// Saved describes one written file.
type Saved struct {
	Section report.BodySection
	Path    string
	Rows    int
}

// FromReport builds the row of a report.
func FromReport(r *report.Report) Row {
	return Row{
		Impression: r.Impression(),
		OrigAcc:    r.OrigAccession,
		AnonAcc:    r.AnonAccession,
		AnonAcc1:   r.AnonAccession1,
		AnonAcc2:   r.AnonAccession2,
	}
}

// FromReports builds rows in report order.
func FromReports(reports []*report.Report) []Row {
	rows := make([]Row, len(reports))
	for i, r := range reports {
		rows[i] = FromReport(r)
	}
	return rows
}

// Write emits rows as CSV with Header first.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Impression, r.OrigAcc, r.AnonAcc, r.AnonAcc1, r.AnonAcc2}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName is the output name of a section's impressions.
func FileName(section report.BodySection) string {
	return "impressions_" + strings.ToLower(string(section)) + ".csv"
}

// SaveSection writes the impressions of the reports of one section that
// have an impression section.
func SaveSection(ctx context.Context, reportsPath, outDir string, section report.BodySection, opts ...dataset.Option) (Saved, error) {
	if err := ctx.Err(); err != nil {
		return Saved{}, err
	}
	with, _, err := dataset.LoadReportsWithImpression(reportsPath, string(section), opts...)
	if err != nil {
		return Saved{}, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(outDir, FileName(section))
	f, err := os.Create(path)
	if err != nil {
		return Saved{}, fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, FromReports(with)); err != nil {
		f.Close()
		return Saved{}, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Saved{}, err
	}
	return Saved{Section: section, Path: path, Rows: len(with)}, nil
}

// SaveAll runs SaveSection for every body section.
func SaveAll(ctx context.Context, reportsPath, outDir string, opts ...dataset.Option) ([]Saved, error) {
	var out []Saved
	for _, s := range report.AllBodySections() {
		saved, err := SaveSection(ctx, reportsPath, outDir, s, opts...)
		if err != nil {
			return out, fmt.Errorf("section %s: %w", s, err)
		}
		out = append(out, saved)
	}
	return out, nil
}
