package project

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/ProfileCut/internal/model"
	_ "modernc.org/sqlite"
)

// History wraps the SQLite database that records past optimization runs.
type History struct {
	sql *sql.DB
}

// RunRecord is one row of the optimization run history.
type RunRecord struct {
	ID             int64         `json:"id"`
	Timestamp      time.Time     `json:"timestamp"`
	ProjectName    string        `json:"project_name"`
	TotalParts     int           `json:"total_parts"`
	PlacedParts    int           `json:"placed_parts"`
	BarsUsed       int           `json:"bars_used"`
	Utilization    float64       `json:"utilization"`
	TotalSavings   float64       `json:"total_savings"`
	SharedCutPairs int           `json:"shared_cut_pairs"`
	Success        bool          `json:"success"`
	Duration       time.Duration `json:"duration"`
}

// OpenHistory opens (or creates) the run-history database at path and
// runs migrations.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	h := &History{sql: db}
	if err := h.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return h, nil
}

// Close closes the database connection.
func (h *History) Close() error {
	return h.sql.Close()
}

func (h *History) migrate() error {
	version := 0
	h.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := h.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS runs (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp        TEXT NOT NULL,
				project_name     TEXT NOT NULL,
				total_parts      INTEGER NOT NULL,
				placed_parts     INTEGER NOT NULL,
				bars_used        INTEGER NOT NULL,
				utilization      REAL NOT NULL,
				total_savings    REAL NOT NULL,
				shared_cut_pairs INTEGER NOT NULL,
				success          INTEGER NOT NULL,
				duration_ms      INTEGER NOT NULL
			);

			INSERT INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return err
		}
	}
	return nil
}

// RecordRun appends one optimization result to the history.
func (h *History) RecordRun(projectName string, result model.PlacementResult) (int64, error) {
	report := result.Report
	res, err := h.sql.Exec(`
		INSERT INTO runs (timestamp, project_name, total_parts, placed_parts,
			bars_used, utilization, total_savings, shared_cut_pairs, success, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		projectName,
		report.TotalParts,
		report.PlacedParts,
		report.MaterialsUsed,
		report.MaterialUtilization,
		result.TotalSavings,
		report.SharedCutPairs,
		boolToInt(result.Success),
		report.ProcessingTime.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first, up to limit rows.
// A limit of 0 returns everything.
func (h *History) ListRuns(limit int) ([]RunRecord, error) {
	query := `
		SELECT id, timestamp, project_name, total_parts, placed_parts,
			bars_used, utilization, total_savings, shared_cut_pairs, success, duration_ms
		FROM runs ORDER BY id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = h.sql.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = h.sql.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var ts string
		var success, durationMS int64
		if err := rows.Scan(&r.ID, &ts, &r.ProjectName, &r.TotalParts, &r.PlacedParts,
			&r.BarsUsed, &r.Utilization, &r.TotalSavings, &r.SharedCutPairs, &success, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Timestamp, _ = time.Parse(time.RFC3339, ts)
		r.Success = success != 0
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune deletes all but the newest keep rows. A keep of 0 is a no-op.
func (h *History) Prune(keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := h.sql.Exec(`
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
