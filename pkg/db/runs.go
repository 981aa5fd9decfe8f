package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/HowieRosier/pdf-redactor/models"
)

// Phase names recorded with each job result.
const (
	PhaseExtract = "extract"
	PhaseRedact  = "redact"
)

// Run is one stored pipeline invocation.
type Run struct {
	RunID        int64
	PDFDir       string
	XMLDir       string
	OutputDir    string
	ServiceURL   string
	Workers      int
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	TotalSeconds sql.NullFloat64
}

// StoredResult is one persisted job outcome.
type StoredResult struct {
	ResultID int64
	RunID    int64
	Phase    string
	ItemName string
	Success  bool
	Message  string
}

// CreateRun inserts a new run row and returns its ID.
func (db *DB) CreateRun(cfg *models.RedactionConfig) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO runs (pdf_dir, xml_dir, output_dir, service_url, workers) VALUES (?, ?, ?, ?, ?)`,
		cfg.PDFDir, cfg.XMLDir, cfg.OutputDir, cfg.ServiceURL, cfg.Workers,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// RecordResult persists one job outcome under a run.
func (db *DB) RecordResult(runID int64, phase string, result models.JobResult) error {
	_, err := db.Exec(
		`INSERT INTO job_results (run_id, phase, item_name, success, message) VALUES (?, ?, ?, ?, ?)`,
		runID, phase, result.ItemName, result.Success, result.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}
	return nil
}

// FinishRun stamps a run as completed with its total duration.
func (db *DB) FinishRun(runID int64, total time.Duration) error {
	_, err := db.Exec(
		`UPDATE runs SET finished_at = CURRENT_TIMESTAMP, total_seconds = ? WHERE run_id = ?`,
		total.Seconds(), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// GetRunByID returns one run.
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	run := &Run{}
	err := db.QueryRow(
		`SELECT run_id, pdf_dir, xml_dir, output_dir, service_url, workers, started_at, finished_at, total_seconds
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&run.RunID, &run.PDFDir, &run.XMLDir, &run.OutputDir, &run.ServiceURL,
		&run.Workers, &run.StartedAt, &run.FinishedAt, &run.TotalSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	return run, nil
}

// GetLatestRunID returns the most recent run's ID, or an error if the
// database holds no runs yet.
func (db *DB) GetLatestRunID() (int64, error) {
	var runID int64
	err := db.QueryRow(`SELECT run_id FROM runs ORDER BY run_id DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no runs recorded yet")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get latest run: %w", err)
	}
	return runID, nil
}

// GetRunResults returns all stored job outcomes for a run, in insertion
// order.
func (db *DB) GetRunResults(runID int64) ([]StoredResult, error) {
	rows, err := db.Query(
		`SELECT result_id, run_id, phase, item_name, success, message
		 FROM job_results WHERE run_id = ? ORDER BY result_id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run results: %w", err)
	}
	defer rows.Close()

	var results []StoredResult
	for rows.Next() {
		var r StoredResult
		if err := rows.Scan(&r.ResultID, &r.RunID, &r.Phase, &r.ItemName, &r.Success, &r.Message); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
