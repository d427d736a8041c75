package store

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log"
	"time"

	"go-stats-dashboard/internal/errors"
	"go-stats-dashboard/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Run statuses
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one dashboard computation recorded in the ledger
type Run struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId"`
	Dataset   string          `json:"dataset"`
	Selection json.RawMessage `json:"selection" swaggertype:"object"`
	Status    string          `json:"status"`
	Metrics   json.RawMessage `json:"metrics,omitempty" swaggertype:"object"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// RunError is an error recorded against a run
type RunError struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"runId"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// RunLog is a stage log line of a run
type RunLog struct {
	ID        int64                  `json:"id"`
	RunID     string                 `json:"runId"`
	Stage     string                 `json:"stage"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Store is the sqlite run ledger
type Store struct {
	db *sql.DB
}

// Open connects to the sqlite database at dsn and creates the tables
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, dbError(err, "failed to open database")
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		dataset TEXT,
		selection TEXT,
		status TEXT,
		metrics TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		error_code TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`
	logTable := `
	CREATE TABLE IF NOT EXISTS run_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		stage TEXT,
		level TEXT,
		message TEXT,
		details TEXT,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, errorTable, logTable} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, dbError(err, "failed to create tables")
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a new pending run
func (s *Store) SaveRun(runID, sessionID string, dataset model.DatasetKind, selection interface{}) error {
	selectionJSON, err := json.Marshal(selection)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`INSERT INTO runs (id, session_id, dataset, selection, status, metrics, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, sessionID, string(dataset), string(selectionJSON), StatusPending, "", now, now)
	if err != nil {
		return dbError(err, "failed to save run")
	}
	return nil
}

// UpdateRunStatus updates run status
func (s *Store) UpdateRunStatus(runID, status string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	if err != nil {
		return dbError(err, "failed to update run status")
	}
	return nil
}

// FinishRun sets the final status and metrics of a run
func (s *Store) FinishRun(runID, status string, metrics interface{}) error {
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(`UPDATE runs SET status = ?, metrics = ?, updated_at = ? WHERE id = ?`,
		status, string(metricsJSON), now, runID)
	if err != nil {
		return dbError(err, "failed to finish run")
	}
	return nil
}

// SaveRunError records an error for a run
func (s *Store) SaveRunError(runID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := s.db.Exec(`INSERT INTO run_errors (run_id, error_code, error_message, created_at) VALUES (?, ?, ?, ?)`,
		runID, errors.GetCode(err), err.Error(), now)
	if e != nil {
		return dbError(e, "failed to save run error")
	}
	return nil
}

// SaveRunLog records a stage log line for a run
func (s *Store) SaveRunLog(runID, stage, level, message string, details map[string]interface{}) error {
	detailsJSON := []byte("{}")
	if details != nil {
		var err error
		if detailsJSON, err = json.Marshal(details); err != nil {
			return err
		}
	}
	now := time.Now().UTC()
	_, err := s.db.Exec(`INSERT INTO run_logs (run_id, stage, level, message, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, stage, level, message, string(detailsJSON), now)
	if err != nil {
		return dbError(err, "failed to save run log")
	}
	return nil
}

// ListRuns returns all runs, newest first
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`SELECT id, session_id, dataset, selection, status, metrics, created_at, updated_at FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, dbError(err, "failed to list runs")
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to list runs")
	}
	return runs, nil
}

// GetRun fetches one run
func (s *Store) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT id, session_id, dataset, selection, status, metrics, created_at, updated_at FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound(fmt.Sprintf("run %s", runID))
	}
	return run, err
}

// GetRunErrors returns the errors recorded for a run
func (s *Store) GetRunErrors(runID string) ([]RunError, error) {
	rows, err := s.db.Query(`SELECT id, run_id, error_code, error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, dbError(err, "failed to get run errors")
	}
	defer rows.Close()

	runErrors := []RunError{}
	for rows.Next() {
		var e RunError
		if err := rows.Scan(&e.ID, &e.RunID, &e.Code, &e.Message, &e.CreatedAt); err != nil {
			return nil, dbError(err, "failed to scan run error")
		}
		runErrors = append(runErrors, e)
	}
	return runErrors, rows.Err()
}

// GetRunLogs returns the stage logs of a run in write order
func (s *Store) GetRunLogs(runID string) ([]RunLog, error) {
	rows, err := s.db.Query(`SELECT id, run_id, stage, level, message, details, created_at FROM run_logs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, dbError(err, "failed to get run logs")
	}
	defer rows.Close()

	logs := []RunLog{}
	for rows.Next() {
		var l RunLog
		var details string
		if err := rows.Scan(&l.ID, &l.RunID, &l.Stage, &l.Level, &l.Message, &details, &l.CreatedAt); err != nil {
			return nil, dbError(err, "failed to scan run log")
		}
		if details != "" {
			if err := json.Unmarshal([]byte(details), &l.Details); err != nil {
				return nil, err
			}
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// RunLogger writes stage events of one run into the ledger
type RunLogger struct {
	store *Store
	runID string
}

// Logger returns a stage recorder bound to runID
func (s *Store) Logger(runID string) *RunLogger {
	return &RunLogger{store: s, runID: runID}
}

// RecordStage saves a stage log line; failures are logged, not returned
func (l *RunLogger) RecordStage(stage, level, message string, details map[string]interface{}) {
	if err := l.store.SaveRunLog(l.runID, stage, level, message, details); err != nil {
		log.Printf("⚠️ Failed to save log for run %s: %v\n", l.runID, err)
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var selection, metrics string
	err := row.Scan(&run.ID, &run.SessionID, &run.Dataset, &selection, &run.Status, &metrics, &run.CreatedAt, &run.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, dbError(err, "failed to scan run")
	}
	run.Selection = json.RawMessage(selection)
	if metrics != "" {
		run.Metrics = json.RawMessage(metrics)
	}
	return &run, nil
}

func dbError(err error, message string) error {
	return errors.DatabaseError(message, err)
}
