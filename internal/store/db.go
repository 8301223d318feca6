package store

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// InitDB opens the run-history database and creates the tables. Every
// store function is a no-op until InitDB succeeds, so the pipeline can run
// without history.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		run_type TEXT,
		status TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	stageTable := `
	CREATE TABLE IF NOT EXISTS stage_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		stage TEXT,
		outcome TEXT,
		row_count INTEGER,
		attempts INTEGER,
		error_message TEXT,
		started_at DATETIME,
		finished_at DATETIME
	);
	`
	logTable := `
	CREATE TABLE IF NOT EXISTS run_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		stage TEXT,
		level TEXT,
		message TEXT,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, stageTable, logTable} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the run-history database. Store functions return to
// their no-op behavior until the next InitDB.
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// SaveRun inserts a new run in the running state.
func SaveRun(runID, runType string) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(
		`INSERT INTO runs (id, run_type, status, started_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, runType, "running", now, now, now,
	)
	return err
}

// FinishRun records a run's terminal status.
func FinishRun(runID, status string) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(
		`UPDATE runs SET status = ?, finished_at = ?, updated_at = ? WHERE id = ?`,
		status, now, now, runID,
	)
	return err
}

// SaveStageResult records one stage execution for a run.
func SaveStageResult(runID, stage, outcome string, rowCount, attempts int, stageErr error, startedAt, finishedAt time.Time) error {
	if db == nil {
		return nil
	}
	errMsg := ""
	if stageErr != nil {
		errMsg = stageErr.Error()
	}
	_, err := db.Exec(
		`INSERT INTO stage_results (run_id, stage, outcome, row_count, attempts, error_message, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, stage, outcome, rowCount, attempts, errMsg, startedAt.UTC(), finishedAt.UTC(),
	)
	return err
}

// SaveRunLog appends a runner-level log entry for a run.
func SaveRunLog(runID, stage, level, message string) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(
		`INSERT INTO run_logs (run_id, stage, level, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, stage, level, message, time.Now().UTC(),
	)
	return err
}

// ListRuns returns all runs, newest first.
func ListRuns() ([]map[string]interface{}, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(
		`SELECT id, run_type, status, started_at, finished_at, created_at, updated_at FROM runs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run by id.
func GetRun(runID string) (map[string]interface{}, error) {
	if db == nil {
		return nil, sql.ErrNoRows
	}
	rows, err := db.Query(
		`SELECT id, run_type, status, started_at, finished_at, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	return scanRun(rows)
}

func scanRun(rows *sql.Rows) (map[string]interface{}, error) {
	var (
		id, runType, status  string
		startedAt            time.Time
		finishedAt           sql.NullTime
		createdAt, updatedAt time.Time
	)
	if err := rows.Scan(&id, &runType, &status, &startedAt, &finishedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	run := map[string]interface{}{
		"id":        id,
		"runType":   runType,
		"status":    status,
		"startedAt": startedAt,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}
	if finishedAt.Valid {
		run["finishedAt"] = finishedAt.Time
	}
	return run, nil
}

// GetStageResults returns the stage results for a run in execution order.
func GetStageResults(runID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(
		`SELECT stage, outcome, row_count, attempts, error_message, started_at, finished_at
		 FROM stage_results WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var (
			stage, outcome, errMsg string
			rowCount, attempts     int
			startedAt, finishedAt  time.Time
		)
		if err := rows.Scan(&stage, &outcome, &rowCount, &attempts, &errMsg, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		results = append(results, map[string]interface{}{
			"stage":      stage,
			"outcome":    outcome,
			"rows":       rowCount,
			"attempts":   attempts,
			"error":      errMsg,
			"startedAt":  startedAt,
			"finishedAt": finishedAt,
		})
	}
	return results, rows.Err()
}

// GetRunLogs returns up to limit log entries for a run, oldest first.
func GetRunLogs(runID string, limit int) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(
		`SELECT stage, level, message, created_at FROM run_logs WHERE run_id = ? ORDER BY id LIMIT ?`,
		runID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []map[string]interface{}
	for rows.Next() {
		var (
			stage, level, message string
			createdAt             time.Time
		)
		if err := rows.Scan(&stage, &level, &message, &createdAt); err != nil {
			return nil, err
		}
		logs = append(logs, map[string]interface{}{
			"stage":     stage,
			"level":     level,
			"message":   message,
			"createdAt": createdAt,
		})
	}
	return logs, rows.Err()
}

// LastRunAt returns when the most recent run started, zero if none exists.
func LastRunAt() (time.Time, error) {
	if db == nil {
		return time.Time{}, nil
	}
	var t time.Time
	err := db.QueryRow(`SELECT started_at FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	return t, err
}
