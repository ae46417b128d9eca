// Package storage owns the per-run output directory: annotated images and
// the plain text run log.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// RunDirLayout is the time layout of run directory names.
const RunDirLayout = "20060102-150405"

// NewRunDir creates a fresh `_YYYYMMDD-HHMMSS` directory under root. When
// the name is taken a `-N` suffix is appended.
func NewRunDir(root string, now time.Time) (string, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("create output root: %w", err)
	}

	base := filepath.Join(root, "_"+now.Format(RunDirLayout))
	dir := base
	for n := 1; ; n++ {
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("create run directory: %w", err)
		}
		dir = fmt.Sprintf("%s-%d", base, n)
	}
}
