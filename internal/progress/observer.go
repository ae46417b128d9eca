// Package progress reports per-file scan progress to observers, including
// browsers connected over WebSocket.
package progress

import (
	"peopledetect/internal/classify"
)

// Summary is the final tally of a run.
type Summary struct {
	RunID         string `json:"run_id"`
	Found         int    `json:"found"`
	NotFound      int    `json:"not_found"`
	Errors        int    `json:"errors"`
	TotalBytes    int64  `json:"total_bytes"`
	BytesToDelete int64  `json:"bytes_to_delete"`
	StoppedEarly  bool   `json:"stopped_early"`
}

// Observer is notified as a run progresses. Calls come from the scanning
// goroutine, one at a time.
type Observer interface {
	OnStart(runID string, total int)
	OnFile(ordinal, total int, v classify.FileVerdict)
	OnDone(s Summary)
}

// Event is the JSON message sent to WebSocket clients.
type Event struct {
	Type           string   `json:"type"`
	RunID          string   `json:"run_id,omitempty"`
	Ordinal        int      `json:"ordinal,omitempty"`
	Total          int      `json:"total,omitempty"`
	Path           string   `json:"path,omitempty"`
	Result         string   `json:"result,omitempty"`
	FramesExamined int      `json:"frames_examined,omitempty"`
	PersonHits     int      `json:"person_hits,omitempty"`
	SavedImages    []string `json:"saved_images,omitempty"`
	Error          string   `json:"error,omitempty"`
	Summary        *Summary `json:"summary,omitempty"`
}

// Event types.
const (
	EventStart = "start"
	EventFile  = "file"
	EventDone  = "done"
)

// FileEvent builds the event for one verdict.
func FileEvent(ordinal, total int, v classify.FileVerdict) Event {
	e := Event{
		Type:           EventFile,
		Ordinal:        ordinal,
		Total:          total,
		Path:           v.File.Path,
		FramesExamined: v.FramesExamined,
		PersonHits:     v.PersonHits,
		SavedImages:    v.SavedImages,
	}
	switch {
	case v.AnalyzeError:
		e.Result = "error"
		if v.Err != nil {
			e.Error = v.Err.Error()
		}
	case v.PersonFound:
		e.Result = "person"
	default:
		e.Result = "no_person"
	}
	return e
}
