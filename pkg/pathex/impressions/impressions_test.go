package impressions

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/pathex/pkg/pathex/report"
)

const reportsCSV = `Report,file,Original Accession,Anonymized Accession,Anonymized Accession.1,Anonymized Accession.2
"Impression: stress fracture. Technique: two views",MSK_1.xlsx,A1,X1,Y1,Z1
"No impression section",MSK_1.xlsx,A2,X2,,
"Impression: small nodule",Chest_1.xlsx,A3,X3,,
`

func TestWrite(t *testing.T) {
	r := report.New("impression: enchondroma technique: xr", "")
	r.OrigAccession = "A1"
	r.AnonAccession = "X1"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FromReports([]*report.Report{r})))
	assert.Equal(t, "impression,orig_acc,anon_acc,anon_acc_1,anon_acc_2\nenchondroma,A1,X1,,\n", buf.String())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "impressions_msk.csv", FileName(report.MSK))
	assert.Equal(t, "impressions_nuc med.csv", FileName(report.NucMed))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSaveSection(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "reports.csv")
	require.NoError(t, os.WriteFile(in, []byte(reportsCSV), 0o644))
	out := filepath.Join(dir, "out")

	saved, err := SaveSection(context.Background(), in, out, report.MSK)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Rows)
	assert.Equal(t, filepath.Join(out, "impressions_msk.csv"), saved.Path)

	rows := readCSV(t, saved.Path)
	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"stress fracture.", "A1", "X1", "Y1", "Z1"}, rows[1])
}

func TestSaveAll(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "reports.csv")
	require.NoError(t, os.WriteFile(in, []byte(reportsCSV), 0o644))

	saved, err := SaveAll(context.Background(), in, dir)
	require.NoError(t, err)
	require.Len(t, saved, len(report.AllBodySections()))

	rows := map[report.BodySection]int{}
	for _, s := range saved {
		rows[s.Section] = s.Rows
		assert.FileExists(t, s.Path)
	}
	assert.Equal(t, 1, rows[report.MSK])
	assert.Equal(t, 1, rows[report.Chest])
	assert.Equal(t, 0, rows[report.Neuro])
}

func TestSaveSectionCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SaveSection(ctx, "unused.csv", t.TempDir(), report.MSK)
	assert.ErrorIs(t, err, context.Canceled)
}
