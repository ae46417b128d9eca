package cleanup

import (
	"errors"
	"io/fs"
	"os"

	"peopledetect/internal/media"
)

// Remover deletes one file.
type Remover interface {
	Remove(path string) error
}

// OSRemover deletes from the local filesystem.
type OSRemover struct{}

// Remove implements Remover.
func (OSRemover) Remove(path string) error {
	return os.Remove(path)
}

// Failure is a file that could not be deleted.
type Failure struct {
	Path string
	Err  error
}

// Result tallies an Execute call.
type Result struct {
	Deleted    []string
	Failed     []Failure
	FreedBytes int64
}

// Missing counts failures caused by files that were already gone.
func (r Result) Missing() int {
	n := 0
	for _, f := range r.Failed {
		if errors.Is(f.Err, fs.ErrNotExist) {
			n++
		}
	}
	return n
}

// Execute deletes targets one by one. A failure is recorded and the rest
// are still attempted.
func Execute(targets []media.File, remover Remover) Result {
	var res Result
	for _, f := range targets {
		if err := remover.Remove(f.Path); err != nil {
			res.Failed = append(res.Failed, Failure{Path: f.Path, Err: err})
			continue
		}
		res.Deleted = append(res.Deleted, f.Path)
		res.FreedBytes += f.Size
	}
	return res
}
