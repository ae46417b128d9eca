package model

// Verdict is the stored outcome of classifying one file.
type Verdict struct {
	ID             int64  `json:"id"`
	RunID          string `json:"run_id"`
	Ordinal        int    `json:"ordinal"`
	Path           string `json:"path"`
	Kind           string `json:"kind"`
	Size           int64  `json:"size"`
	PersonFound    bool   `json:"person_found"`
	AnalyzeError   bool   `json:"analyze_error"`
	Outcome        string `json:"outcome"`
	FramesExamined int    `json:"frames_examined"`
	PersonHits     int    `json:"person_hits"`
	SavedImage     string `json:"saved_image,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Detection is one box found on a sampled frame of a verdict's file.
type Detection struct {
	ID         int64   `json:"id"`
	VerdictID  int64   `json:"verdict_id"`
	FrameIndex int     `json:"frame_index"`
	ObjectName string  `json:"object_name"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}
