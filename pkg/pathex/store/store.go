package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Store persists reports, prediction runs and their predictions.
type Store interface {
	Close() error

	// Reports are keyed by original accession and text hash, so reloading
	// the same export does not duplicate them.
	UpsertReport(ctx context.Context, r Report) (int64, error)
	GetReport(ctx context.Context, id int64) (Report, error)

	// Runs
	CreateRun(ctx context.Context, r Run) (Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Predictions
	SavePrediction(ctx context.Context, p Prediction) error
	PredictionsForRun(ctx context.Context, runID string) ([]Prediction, error)
	LabelCounts(ctx context.Context, runID string) ([]LabelCount, error)
}

// Report is a stored radiology report.
type Report struct {
	ID            int64
	OrigAccession string
	AnonAccession string
	File          string
	Text          string
	TextHash      string
	GroundTruth   string
}

// Run is one execution of a matcher over a batch of reports.
type Run struct {
	ID        string
	Strategy  string
	LookIn    string
	Section   string
	CreatedAt time.Time
}

// Prediction is the label a run assigned to a report. Seq keeps the
// batch order.
type Prediction struct {
	RunID    string
	ReportID int64
	Seq      int
	Label    string
	Score    float64
	Strategy string
	Negated  bool
	Evidence string
}

// LabelCount is how often a run predicted a label.
type LabelCount struct {
	Label string
	Count int
}

// HashText returns the hex SHA-256 of whitespace-normalised text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(strings.Join(strings.Fields(text), " ")))
	return hex.EncodeToString(sum[:])
}
