// Package sqlite persists ensemble and sweep summary statistics. Raw walk
// histories are never stored; only the reduced statistics of each run.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnsembleRun is a persisted ensemble aggregation result.
type EnsembleRun struct {
	RunID       string          `json:"run_id"`
	N           int             `json:"n"`
	Method      string          `json:"method"`
	Trials      int             `json:"trials"`
	Seed        int64           `json:"seed"`
	SuccessRate float64         `json:"success_rate"`
	SuccessNorm float64         `json:"success_norm"`
	FailNorm    float64         `json:"fail_norm"`
	BothNorm    float64         `json:"both_norm"`
	ParamsJSON  json.RawMessage `json:"params_json,omitempty"`
	CreatedAt   int64           `json:"created_at"`
}

// SweepRun is a persisted scaling sweep result. SeriesJSON holds the per-N
// statistics arrays for chart rendering.
type SweepRun struct {
	RunID      string          `json:"run_id"`
	NMin       int             `json:"n_min"`
	NMax       int             `json:"n_max"`
	NStep      int             `json:"n_step"`
	Trials     int             `json:"trials"`
	Seed       int64           `json:"seed"`
	Slope      float64         `json:"slope"`
	Intercept  float64         `json:"intercept"`
	Nu         float64         `json:"nu"`
	SeriesJSON json.RawMessage `json:"series_json"`
	CreatedAt  int64           `json:"created_at"`
}

// RunStore provides persistence for simulation run summaries.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// InsertEnsembleRun persists an ensemble result. If RunID is empty, a UUID
// is generated.
func (s *RunStore) InsertEnsembleRun(run *EnsembleRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var paramsStr interface{}
	if len(run.ParamsJSON) > 0 {
		paramsStr = string(run.ParamsJSON)
	}

	err := retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO saw_ensemble_runs (
				run_id, n, method, trials, seed,
				success_rate, success_norm, fail_norm, both_norm,
				params_json, created_unix_nanos
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.N, run.Method, run.Trials, run.Seed,
			run.SuccessRate, run.SuccessNorm, run.FailNorm, run.BothNorm,
			paramsStr, run.CreatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("inserting ensemble run %s: %w", run.RunID, err)
	}
	return nil
}

// ListEnsembleRuns returns the most recent ensemble runs, newest first.
func (s *RunStore) ListEnsembleRuns(limit int) ([]*EnsembleRun, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT run_id, n, method, trials, seed,
		       success_rate, success_norm, fail_norm, both_norm,
		       params_json, created_unix_nanos
		FROM saw_ensemble_runs
		ORDER BY created_unix_nanos DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query ensemble runs: %w", err)
	}
	defer rows.Close()

	var runs []*EnsembleRun
	for rows.Next() {
		var r EnsembleRun
		var paramsStr sql.NullString
		if err := rows.Scan(
			&r.RunID, &r.N, &r.Method, &r.Trials, &r.Seed,
			&r.SuccessRate, &r.SuccessNorm, &r.FailNorm, &r.BothNorm,
			&paramsStr, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ensemble run: %w", err)
		}
		if paramsStr.Valid {
			r.ParamsJSON = json.RawMessage(paramsStr.String)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// GetEnsembleRun returns a single ensemble run by ID.
func (s *RunStore) GetEnsembleRun(runID string) (*EnsembleRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, n, method, trials, seed,
		       success_rate, success_norm, fail_norm, both_norm,
		       params_json, created_unix_nanos
		FROM saw_ensemble_runs
		WHERE run_id = ?`, runID)

	var r EnsembleRun
	var paramsStr sql.NullString
	err := row.Scan(
		&r.RunID, &r.N, &r.Method, &r.Trials, &r.Seed,
		&r.SuccessRate, &r.SuccessNorm, &r.FailNorm, &r.BothNorm,
		&paramsStr, &r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("ensemble run %s not found", runID)
		}
		return nil, fmt.Errorf("scan ensemble run: %w", err)
	}
	if paramsStr.Valid {
		r.ParamsJSON = json.RawMessage(paramsStr.String)
	}
	return &r, nil
}

// InsertSweepRun persists a scaling sweep result. If RunID is empty, a UUID
// is generated.
func (s *RunStore) InsertSweepRun(run *SweepRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	err := retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO saw_sweep_runs (
				run_id, n_min, n_max, n_step, trials, seed,
				slope, intercept, nu, series_json, created_unix_nanos
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.NMin, run.NMax, run.NStep, run.Trials, run.Seed,
			run.Slope, run.Intercept, run.Nu, string(run.SeriesJSON), run.CreatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("inserting sweep run %s: %w", run.RunID, err)
	}
	return nil
}

// ListSweepRuns returns the most recent sweep runs, newest first.
func (s *RunStore) ListSweepRuns(limit int) ([]*SweepRun, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT run_id, n_min, n_max, n_step, trials, seed,
		       slope, intercept, nu, series_json, created_unix_nanos
		FROM saw_sweep_runs
		ORDER BY created_unix_nanos DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sweep runs: %w", err)
	}
	defer rows.Close()

	var runs []*SweepRun
	for rows.Next() {
		var r SweepRun
		var seriesStr string
		if err := rows.Scan(
			&r.RunID, &r.NMin, &r.NMax, &r.NStep, &r.Trials, &r.Seed,
			&r.Slope, &r.Intercept, &r.Nu, &seriesStr, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sweep run: %w", err)
		}
		r.SeriesJSON = json.RawMessage(seriesStr)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// GetSweepRun returns a single sweep run by ID.
func (s *RunStore) GetSweepRun(runID string) (*SweepRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, n_min, n_max, n_step, trials, seed,
		       slope, intercept, nu, series_json, created_unix_nanos
		FROM saw_sweep_runs
		WHERE run_id = ?`, runID)

	var r SweepRun
	var seriesStr string
	err := row.Scan(
		&r.RunID, &r.NMin, &r.NMax, &r.NStep, &r.Trials, &r.Seed,
		&r.Slope, &r.Intercept, &r.Nu, &seriesStr, &r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sweep run %s not found", runID)
		}
		return nil, fmt.Errorf("scan sweep run: %w", err)
	}
	r.SeriesJSON = json.RawMessage(seriesStr)
	return &r, nil
}
