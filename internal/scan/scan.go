package scan

import (
	"os"
	"path/filepath"
	"strings"

	"peopledetect/internal/media"
)

// Options controls which files Walk returns.
type Options struct {
	IncludeImages bool
	IncludeVideos bool
	// Exclude lists directories that are never entered, e.g. the output
	// directory of the current run when it lives inside the scanned tree.
	Exclude []string
	// OnError is told about entries that could not be read or stat'ed.
	// They are left out and the walk continues. Nil ignores them.
	OnError func(path string, err error)
}

// DefaultOptions includes every classifiable file.
func DefaultOptions() Options {
	return Options{IncludeImages: true, IncludeVideos: true}
}

// Walk lists the classifiable files under root.
//
// Entries whose name starts with "." are skipped, both files and
// directories. Traversal uses an explicit stack so directory depth is not
// bounded by the call stack. A directory's own files come first, in
// os.ReadDir (lexicographic) order, followed by its subdirectories depth-first.
// Only an unreadable root is an error; unreadable subdirectories go to
// opts.OnError.
func Walk(root string, opts Options) ([]string, error) {
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, x := range opts.Exclude {
		excluded[absPath(x)] = true
	}

	root = filepath.Clean(root)
	var files []string
	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			if dir == root {
				return nil, err
			}
			opts.report(dir, err)
			continue
		}

		var subdirs []string
		for _, entry := range entries {
			name := entry.Name()
			if isHidden(name) {
				continue
			}
			fullPath := filepath.Join(dir, name)

			if entry.IsDir() {
				if !excluded[absPath(fullPath)] {
					subdirs = append(subdirs, fullPath)
				}
				continue
			}
			if wanted(media.Classify(name), opts) {
				files = append(files, fullPath)
			}
		}

		// Push in reverse so the first subdirectory is visited first.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return files, nil
}

// Discover walks root and stats every file found. Files that cannot be
// stat'ed, such as dangling symlinks, go to opts.OnError.
func Discover(root string, opts Options) ([]media.File, error) {
	paths, err := Walk(root, opts)
	if err != nil {
		return nil, err
	}

	files := make([]media.File, 0, len(paths))
	for _, p := range paths {
		f, err := media.Stat(p)
		if err != nil {
			opts.report(p, err)
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

func (o Options) report(path string, err error) {
	if o.OnError != nil {
		o.OnError(path, err)
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func wanted(kind media.Kind, opts Options) bool {
	switch kind {
	case media.Image:
		return opts.IncludeImages
	case media.Video:
		return opts.IncludeVideos
	default:
		return false
	}
}
