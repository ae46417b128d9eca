package run

import (
	"time"

	"peopledetect/internal/classify"
	"peopledetect/internal/media"
)

// Report is the bookkeeping of one run: verdict buckets in scan order and
// byte totals.
type Report struct {
	RunID      string
	Dir        string
	StartedAt  time.Time
	FinishedAt time.Time

	Found    []classify.FileVerdict
	NotFound []classify.FileVerdict
	Errors   []classify.FileVerdict
	Skipped  []string

	TotalBytes    int64
	BytesPerson   int64
	BytesNoPerson int64
	BytesErrored  int64

	// Planned is the number of files selected for the run; fewer are
	// examined when StoppedEarly.
	Planned      int
	StoppedEarly bool
}

// Add files a verdict into its bucket and updates the byte totals.
func (r *Report) Add(v classify.FileVerdict) {
	r.TotalBytes += v.File.Size
	switch {
	case v.AnalyzeError:
		r.Errors = append(r.Errors, v)
		r.BytesErrored += v.File.Size
	case v.PersonFound:
		r.Found = append(r.Found, v)
		r.BytesPerson += v.File.Size
	default:
		r.NotFound = append(r.NotFound, v)
		r.BytesNoPerson += v.File.Size
	}
}

// BytesToDelete is the size of the files in which no person was found.
func (r *Report) BytesToDelete() int64 {
	return r.BytesNoPerson
}

// Examined is the number of files that received a verdict.
func (r *Report) Examined() int {
	return len(r.Found) + len(r.NotFound) + len(r.Errors)
}

// Duration is how long the run took.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Files returns the media files of verdicts.
func Files(verdicts []classify.FileVerdict) []media.File {
	files := make([]media.File, 0, len(verdicts))
	for _, v := range verdicts {
		files = append(files, v.File)
	}
	return files
}
