package run

import (
	"fmt"

	"peopledetect/internal/media"
	"peopledetect/internal/scan"
)

// Input selects what a run examines: a single file or a directory tree.
type Input struct {
	File      string
	Directory string
	Scan      scan.Options
}

// String names the input for logs and history.
func (in Input) String() string {
	if in.File != "" {
		return in.File
	}
	return in.Directory
}

// Resolve lists the files to examine. An unsupported single file is
// returned in skipped rather than as an error.
func Resolve(in Input) (files []media.File, skipped []string, err error) {
	switch {
	case in.File != "" && in.Directory != "":
		return nil, nil, fmt.Errorf("select either a file or a directory, not both")
	case in.File != "":
		if media.Classify(in.File) == media.Unsupported {
			return nil, []string{in.File}, nil
		}
		f, err := media.Stat(in.File)
		if err != nil {
			return nil, nil, err
		}
		return []media.File{f}, nil, nil
	case in.Directory != "":
		files, err := scan.Discover(in.Directory, in.Scan)
		if err != nil {
			return nil, nil, err
		}
		return files, nil, nil
	default:
		return nil, nil, fmt.Errorf("select a file or a directory")
	}
}
