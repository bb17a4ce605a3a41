package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/pathex/pkg/pathex/internalerr"
	"github.com/cognicore/pathex/pkg/pathex/store"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode and foreign keys
// enabled and creates the schema when missing.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; predictions of a run are written in order
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS reports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	orig_accession TEXT NOT NULL DEFAULT '',
	anon_accession TEXT NOT NULL DEFAULT '',
	file TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL,
	text_hash TEXT NOT NULL,
	ground_truth TEXT NOT NULL DEFAULT '',
	UNIQUE(orig_accession, text_hash)
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	strategy TEXT NOT NULL,
	look_in TEXT NOT NULL,
	section TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS predictions (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	report_id INTEGER NOT NULL,
	label TEXT NOT NULL,
	score REAL NOT NULL DEFAULT 0,
	strategy TEXT NOT NULL DEFAULT '',
	negated INTEGER NOT NULL DEFAULT 0,
	evidence TEXT NOT NULL DEFAULT '',
	PRIMARY KEY(run_id, seq),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE,
	FOREIGN KEY(report_id) REFERENCES reports(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_predictions_label ON predictions(run_id, label);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertReport inserts a report or refreshes the stored copy with the same
// accession and text.
func (s *sqliteStore) UpsertReport(ctx context.Context, r store.Report) (int64, error) {
	if r.Text == "" {
		return 0, fmt.Errorf("%w: report text is empty", internalerr.ErrInvalidInput)
	}
	if r.TextHash == "" {
		r.TextHash = store.HashText(r.Text)
	}

	const stmt = `
INSERT INTO reports (orig_accession, anon_accession, file, text, text_hash, ground_truth)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(orig_accession, text_hash) DO UPDATE SET
	anon_accession=excluded.anon_accession,
	file=excluded.file,
	ground_truth=excluded.ground_truth
RETURNING id;
`
	var id int64
	err := s.db.QueryRowContext(ctx, stmt,
		r.OrigAccession, r.AnonAccession, r.File, r.Text, r.TextHash, r.GroundTruth,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert report: %w", err)
	}
	return id, nil
}

// GetReport returns a report by ID.
func (s *sqliteStore) GetReport(ctx context.Context, id int64) (store.Report, error) {
	var r store.Report
	err := s.db.QueryRowContext(ctx, `
SELECT id, orig_accession, anon_accession, file, text, text_hash, ground_truth
FROM reports WHERE id=?`, id).Scan(
		&r.ID, &r.OrigAccession, &r.AnonAccession, &r.File, &r.Text, &r.TextHash, &r.GroundTruth,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Report{}, fmt.Errorf("report %d: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Report{}, err
	}
	return r, nil
}

// CreateRun stores a run, assigning an ID and creation time when unset.
func (s *sqliteStore) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	if r.Strategy == "" {
		return store.Run{}, fmt.Errorf("%w: run strategy is empty", internalerr.ErrInvalidInput)
	}
	if r.ID == "" {
		r.ID = store.NewRunID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, strategy, look_in, section, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Strategy, r.LookIn, r.Section, r.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		if isConstraint(err) {
			return store.Run{}, fmt.Errorf("run %s: %w", r.ID, internalerr.ErrDuplicate)
		}
		return store.Run{}, fmt.Errorf("create run: %w", err)
	}
	return r, nil
}

// GetRun returns a run by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, strategy, look_in, section, created_at FROM runs WHERE id=?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r, err
}

// ListRuns returns runs newest first. limit <= 0 returns all runs.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, strategy, look_in, section, created_at FROM runs
ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		r       store.Run
		created string
	)
	if err := sc.Scan(&r.ID, &r.Strategy, &r.LookIn, &r.Section, &created); err != nil {
		return store.Run{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return store.Run{}, fmt.Errorf("run %s created_at: %w", r.ID, err)
	}
	r.CreatedAt = t
	return r, nil
}

// SavePrediction records the prediction of one report in a run.
func (s *sqliteStore) SavePrediction(ctx context.Context, p store.Prediction) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO predictions (run_id, seq, report_id, label, score, strategy, negated, evidence)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id, seq) DO UPDATE SET
	report_id=excluded.report_id,
	label=excluded.label,
	score=excluded.score,
	strategy=excluded.strategy,
	negated=excluded.negated,
	evidence=excluded.evidence`,
		p.RunID, p.Seq, p.ReportID, p.Label, p.Score, p.Strategy, boolToInt(p.Negated), p.Evidence,
	)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("prediction %s/%d: %w", p.RunID, p.Seq, internalerr.ErrNotFound)
		}
		return fmt.Errorf("save prediction: %w", err)
	}
	return nil
}

// PredictionsForRun returns a run's predictions in batch order.
func (s *sqliteStore) PredictionsForRun(ctx context.Context, runID string) ([]store.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, seq, report_id, label, score, strategy, negated, evidence
FROM predictions WHERE run_id=? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Prediction
	for rows.Next() {
		var (
			p       store.Prediction
			negated int
		)
		if err := rows.Scan(&p.RunID, &p.Seq, &p.ReportID, &p.Label, &p.Score, &p.Strategy, &negated, &p.Evidence); err != nil {
			return nil, err
		}
		p.Negated = negated != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// LabelCounts counts a run's predicted labels, most frequent first.
func (s *sqliteStore) LabelCounts(ctx context.Context, runID string) ([]store.LabelCount, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT label, COUNT(*) AS n FROM predictions WHERE run_id=?
GROUP BY label ORDER BY n DESC, label ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.LabelCount
	for rows.Next() {
		var lc store.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isConstraint reports whether err is a SQLite constraint violation.
func isConstraint(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "constraint")
}
