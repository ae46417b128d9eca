package sqlite

import (
	"fmt"

	"peopledetect/internal/model"
)

// VerdictRepository implements repository.VerdictRepository for SQLite.
type VerdictRepository struct {
	db *DB
}

// NewVerdictRepository creates a new SQLite verdict repository.
func NewVerdictRepository(db *DB) *VerdictRepository {
	return &VerdictRepository{db: db}
}

// Insert adds a verdict and returns its id.
func (r *VerdictRepository) Insert(v *model.Verdict) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO verdicts (run_id, ordinal, path, kind, size, person_found, analyze_error,
			outcome, frames_examined, person_hits, saved_image, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, v.RunID, v.Ordinal, v.Path, v.Kind, v.Size, v.PersonFound, v.AnalyzeError,
		v.Outcome, v.FramesExamined, v.PersonHits, v.SavedImage, v.Error)
	if err != nil {
		return 0, fmt.Errorf("failed to insert verdict: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	v.ID = id
	return id, nil
}

// GetByRunID retrieves a run's verdicts in scan order.
func (r *VerdictRepository) GetByRunID(runID string) ([]model.Verdict, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, run_id, ordinal, path, kind, size, person_found, analyze_error,
			outcome, frames_examined, person_hits, saved_image, error
		FROM verdicts WHERE run_id = ? ORDER BY ordinal
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []model.Verdict
	for rows.Next() {
		var v model.Verdict
		if err := rows.Scan(&v.ID, &v.RunID, &v.Ordinal, &v.Path, &v.Kind, &v.Size, &v.PersonFound, &v.AnalyzeError,
			&v.Outcome, &v.FramesExamined, &v.PersonHits, &v.SavedImage, &v.Error); err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		verdicts = append(verdicts, v)
	}

	return verdicts, rows.Err()
}
