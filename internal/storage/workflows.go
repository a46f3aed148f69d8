package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mobisense-org/cognitive-workflow/internal/types"
)

// WorkflowDB archives completed workflows in SQLite
type WorkflowDB struct {
	db *sql.DB
}

// NewWorkflowDB opens (and if needed creates) the workflow archive database
func NewWorkflowDB(dbPath string) (*WorkflowDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS workflows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		audio_filename TEXT NOT NULL,
		severity TEXT,
		primary_action TEXT,
		confidence REAL,
		summary TEXT,
		local_path TEXT,
		drive_url TEXT,
		completed_at DATETIME NOT NULL,
		processing_seconds REAL
	);

	CREATE INDEX IF NOT EXISTS idx_completed_at ON workflows(completed_at);
	CREATE INDEX IF NOT EXISTS idx_severity ON workflows(severity);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %v", err)
	}

	return &WorkflowDB{db: db}, nil
}

// SaveWorkflow inserts one completed workflow row
func (wdb *WorkflowDB) SaveWorkflow(result *types.WorkflowResult) error {
	query := `
	INSERT INTO workflows (job_id, audio_filename, severity, primary_action, confidence, summary, local_path, drive_url, completed_at, processing_seconds)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var severity, primaryAction string
	var confidence float64
	if result.Judgment != nil {
		severity = result.Judgment.Severity
		primaryAction = result.Judgment.PrimaryAction
		confidence = result.Judgment.ConfidenceScore
	}

	_, err := wdb.db.Exec(query, result.JobID, result.AudioFilename, severity, primaryAction,
		confidence, result.Summary, result.LocalPath, result.DriveURL,
		result.CompletedAt, result.ProcessingSeconds)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %v", err)
	}

	return nil
}

// GetWorkflow retrieves one archived workflow by job ID
func (wdb *WorkflowDB) GetWorkflow(jobID string) (map[string]interface{}, error) {
	query := `
	SELECT job_id, audio_filename, severity, primary_action, confidence, summary, local_path, drive_url, completed_at, processing_seconds
	FROM workflows WHERE job_id = ?
	`

	row := wdb.db.QueryRow(query, jobID)
	return scanWorkflow(row.Scan)
}

// ListWorkflows returns archived workflows, most recent first
func (wdb *WorkflowDB) ListWorkflows(limit int) ([]map[string]interface{}, error) {
	query := `
	SELECT job_id, audio_filename, severity, primary_action, confidence, summary, local_path, drive_url, completed_at, processing_seconds
	FROM workflows ORDER BY completed_at DESC LIMIT ?
	`

	rows, err := wdb.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %v", err)
	}
	defer rows.Close()

	var workflows []map[string]interface{}
	for rows.Next() {
		wf, err := scanWorkflow(rows.Scan)
		if err != nil {
			continue
		}
		workflows = append(workflows, wf)
	}

	return workflows, rows.Err()
}

func scanWorkflow(scan func(dest ...any) error) (map[string]interface{}, error) {
	var (
		jobID, filename, severity, action, local, driveURL, summary string
		confidence, processingSeconds                               float64
		completedAt                                                 time.Time
	)

	err := scan(&jobID, &filename, &severity, &action, &confidence, &summary,
		&local, &driveURL, &completedAt, &processingSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow row: %v", err)
	}

	return map[string]interface{}{
		"job_id":             jobID,
		"audio_filename":     filename,
		"severity":           severity,
		"primary_action":     action,
		"confidence":         confidence,
		"summary":            summary,
		"local_path":         local,
		"drive_url":          driveURL,
		"completed_at":       completedAt,
		"processing_seconds": processingSeconds,
	}, nil
}

// Close closes the database connection
func (wdb *WorkflowDB) Close() error {
	return wdb.db.Close()
}
