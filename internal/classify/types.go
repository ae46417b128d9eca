package classify

import (
	"errors"

	"peopledetect/internal/dto"
	"peopledetect/internal/media"
)

// PersonLabel is the detector label that counts as a hit.
const PersonLabel = "person"

// Subdirectories of the run directory used in first-hit mode.
const (
	PersonDir   = "person"
	NoPersonDir = "no_person"
)

// ErrDetection wraps failures returned by the detector.
var ErrDetection = errors.New("detection failed")

// Opener validates and opens a media file for frame access.
// A file that cannot be decoded must yield an error wrapping media.ErrInvalid.
type Opener interface {
	Open(file media.File) (media.Source, error)
}

// Detector runs object detection on a single frame.
type Detector interface {
	Detect(frame media.Frame) (dto.Detections, error)
}

// Annotator renders boxes and confidence text onto a copy of frame and
// returns the encoded image.
type Annotator interface {
	Annotate(frame media.Frame, dets dto.Detections) ([]byte, error)
}

// ImageWriter stores an annotated image under the run directory and
// returns its path.
type ImageWriter interface {
	WriteImage(subdir, name string, data []byte) (string, error)
}

// Mode selects how sampling reacts to a hit.
type Mode int

const (
	// ModeFirstHit stops sampling a file at the first frame with a person.
	ModeFirstHit Mode = iota
	// ModeContinuous examines every sampled frame and saves each hit.
	ModeContinuous
)

func (m Mode) String() string {
	if m == ModeContinuous {
		return "continuous"
	}
	return "first-hit"
}

// State is a step of the per-file classification state machine:
// Pending -> Validating -> Sampling -> {Found, Exhausted, Invalid, Error} -> Done.
type State int

const (
	StatePending State = iota
	StateValidating
	StateSampling
	StateFound
	StateExhausted
	StateInvalid
	StateError
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateValidating:
		return "validating"
	case StateSampling:
		return "sampling"
	case StateFound:
		return "found"
	case StateExhausted:
		return "exhausted"
	case StateInvalid:
		return "invalid"
	case StateError:
		return "error"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// FrameHit records a sampled frame that contained a person.
type FrameHit struct {
	Index      int
	Detections dto.Detections
}

// FileVerdict is the outcome of classifying one file.
type FileVerdict struct {
	File           media.File
	PersonFound    bool
	AnalyzeError   bool
	SavedImagePath string
	// SavedImages lists every annotated frame written; in first-hit mode it
	// holds at most SavedImagePath.
	SavedImages    []string
	Outcome        State
	FramesExamined int
	PersonHits     int
	Hits           []FrameHit
	Err            error
}

// Options tune the engine.
type Options struct {
	Mode     Mode
	Stride   int
	NoImages bool
}
