package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/pathex/pkg/pathex/internalerr"
	"github.com/cognicore/pathex/pkg/pathex/store"
)

type reportKey struct {
	accession string
	hash      string
}

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu          sync.RWMutex
	nextID      int64
	reports     map[int64]store.Report
	reportIndex map[reportKey]int64
	runs        map[string]store.Run
	predictions map[string]map[int]store.Prediction
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		nextID:      1,
		reports:     make(map[int64]store.Report),
		reportIndex: make(map[reportKey]int64),
		runs:        make(map[string]store.Run),
		predictions: make(map[string]map[int]store.Prediction),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertReport inserts or updates a report, keyed by accession and text hash.
func (s *Store) UpsertReport(ctx context.Context, r store.Report) (int64, error) {
	if r.Text == "" {
		return 0, fmt.Errorf("%w: report text is empty", internalerr.ErrInvalidInput)
	}
	if r.TextHash == "" {
		r.TextHash = store.HashText(r.Text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := reportKey{accession: r.OrigAccession, hash: r.TextHash}
	id, ok := s.reportIndex[key]
	if ok {
		// the stored text stays; only metadata is refreshed
		r.Text = s.reports[id].Text
	} else {
		id = s.nextID
		s.nextID++
		s.reportIndex[key] = id
	}
	r.ID = id
	s.reports[id] = r
	return id, nil
}

// GetReport returns a report by ID.
func (s *Store) GetReport(ctx context.Context, id int64) (store.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return store.Report{}, fmt.Errorf("report %d: %w", id, internalerr.ErrNotFound)
	}
	return r, nil
}

// CreateRun stores a run, assigning an ID and creation time when unset.
func (s *Store) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[r.ID]; exists {
		return store.Run{}, fmt.Errorf("run %s: %w", r.ID, internalerr.ErrDuplicate)
	}
	s.runs[r.ID] = r
	return r, nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r, nil
}

// ListRuns returns runs newest first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SavePrediction records the prediction of one report in a run.
func (s *Store) SavePrediction(ctx context.Context, p store.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[p.RunID]; !ok {
		return fmt.Errorf("run %s: %w", p.RunID, internalerr.ErrNotFound)
	}
	if _, ok := s.reports[p.ReportID]; !ok {
		return fmt.Errorf("report %d: %w", p.ReportID, internalerr.ErrNotFound)
	}
	byRun := s.predictions[p.RunID]
	if byRun == nil {
		byRun = make(map[int]store.Prediction)
		s.predictions[p.RunID] = byRun
	}
	byRun[p.Seq] = p
	return nil
}

// PredictionsForRun returns a run's predictions in batch order.
func (s *Store) PredictionsForRun(ctx context.Context, runID string) ([]store.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byRun := s.predictions[runID]
	out := make([]store.Prediction, 0, len(byRun))
	for _, p := range byRun {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// LabelCounts counts a run's predicted labels, most frequent first.
func (s *Store) LabelCounts(ctx context.Context, runID string) ([]store.LabelCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range s.predictions[runID] {
		counts[p.Label]++
	}
	out := make([]store.LabelCount, 0, len(counts))
	for l, n := range counts {
		out = append(out, store.LabelCount{Label: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

var _ store.Store = (*Store)(nil)
