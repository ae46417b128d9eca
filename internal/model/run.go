package model

import "time"

// Run is one invocation of the scanner.
type Run struct {
	ID            string     `json:"id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Input         string     `json:"input"`
	Mode          string     `json:"mode"`
	Model         string     `json:"model"`
	Confidence    float64    `json:"confidence"`
	Stride        int        `json:"stride"`
	OutputDir     string     `json:"output_dir"`
	FilesTotal    int        `json:"files_total"`
	FilesFound    int        `json:"files_found"`
	FilesNotFound int        `json:"files_not_found"`
	FilesErrored  int        `json:"files_errored"`
	TotalBytes    int64      `json:"total_bytes"`
	BytesToDelete int64      `json:"bytes_to_delete"`
	StoppedEarly  bool       `json:"stopped_early"`
}

// Stats aggregates every recorded run.
type Stats struct {
	TotalRuns    int            `json:"total_runs"`
	FilesScanned int            `json:"files_scanned"`
	PersonFound  int            `json:"person_found"`
	NoPerson     int            `json:"no_person"`
	Errored      int            `json:"errored"`
	BytesScanned int64          `json:"bytes_scanned"`
	ObjectCounts map[string]int `json:"object_counts"`
}
