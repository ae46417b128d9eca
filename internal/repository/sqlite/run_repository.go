package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"peopledetect/internal/model"
)

// RunRepository implements repository.RunRepository for SQLite.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new SQLite run repository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, started_at, finished_at, input, mode, model, confidence, stride, output_dir,
	files_total, files_found, files_not_found, files_errored, total_bytes, bytes_to_delete, stopped_early`

// Create records the start of a run.
func (r *RunRepository) Create(run *model.Run) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO runs (id, started_at, input, mode, model, confidence, stride, output_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC(), run.Input, run.Mode, run.Model, run.Confidence, run.Stride, run.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish stores the run's totals and end time.
func (r *RunRepository) Finish(run *model.Run) error {
	if run.FinishedAt == nil {
		now := time.Now()
		run.FinishedAt = &now
	}

	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		UPDATE runs SET finished_at = ?, files_total = ?, files_found = ?, files_not_found = ?,
			files_errored = ?, total_bytes = ?, bytes_to_delete = ?, stopped_early = ?
		WHERE id = ?
	`, run.FinishedAt.UTC(), run.FilesTotal, run.FilesFound, run.FilesNotFound,
		run.FilesErrored, run.TotalBytes, run.BytesToDelete, run.StoppedEarly, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

// GetByID retrieves a run by its ID. It returns nil when there is none.
func (r *RunRepository) GetByID(id string) (*model.Run, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	run, err := scanRun(r.db.Conn().QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first. limit <= 0 returns all of them.
func (r *RunRepository) List(limit int) ([]model.Run, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetStats aggregates verdicts and detections across all runs.
func (r *RunRepository) GetStats() (*model.Stats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &model.Stats{ObjectCounts: make(map[string]int)}

	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&stats.TotalRuns); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	err := r.db.Conn().QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN person_found = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN person_found = 0 AND analyze_error = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN analyze_error = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(size), 0)
		FROM verdicts
	`).Scan(&stats.FilesScanned, &stats.PersonFound, &stats.NoPerson, &stats.Errored, &stats.BytesScanned)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate verdicts: %w", err)
	}

	rows, err := r.db.Conn().Query(`SELECT object_name, COUNT(*) FROM detections GROUP BY object_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to count objects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan object count: %w", err)
		}
		stats.ObjectCounts[name] = count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var run model.Run
	var finished sql.NullTime
	err := row.Scan(&run.ID, &run.StartedAt, &finished, &run.Input, &run.Mode, &run.Model, &run.Confidence,
		&run.Stride, &run.OutputDir, &run.FilesTotal, &run.FilesFound, &run.FilesNotFound, &run.FilesErrored,
		&run.TotalBytes, &run.BytesToDelete, &run.StoppedEarly)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
