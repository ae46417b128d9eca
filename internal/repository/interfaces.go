package repository

import (
	"peopledetect/internal/model"
)

// RunRepository defines the interface for scan run records.
type RunRepository interface {
	// Create operations
	Create(run *model.Run) error

	// Update operations
	Finish(run *model.Run) error

	// Read operations
	GetByID(id string) (*model.Run, error)
	List(limit int) ([]model.Run, error)
	GetStats() (*model.Stats, error)
}

// VerdictRepository defines the interface for per-file verdicts.
type VerdictRepository interface {
	Insert(v *model.Verdict) (int64, error)
	GetByRunID(runID string) ([]model.Verdict, error)
}

// DetectionRepository defines the interface for detection data operations.
type DetectionRepository interface {
	InsertBatch(detections []model.Detection) error
	GetByVerdictID(verdictID int64) ([]model.Detection, error)
}
