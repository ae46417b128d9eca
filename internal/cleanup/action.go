// Package cleanup implements the bulk delete actions offered after a run.
package cleanup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"peopledetect/internal/classify"
	"peopledetect/internal/media"
	"peopledetect/internal/run"
	"peopledetect/internal/storage"
)

// ErrUnknownAction is returned for menu input outside [0, 4].
var ErrUnknownAction = errors.New("unknown action")

// Action is a bulk operation chosen from the menu.
type Action int

const (
	ActionNone Action = iota
	ActionDeleteDetected
	ActionDeleteDetectedReviewed
	ActionDeleteNotDetected
	ActionDeleteNotDetectedReviewed
)

// Actions lists every action in menu order.
var Actions = []Action{
	ActionNone,
	ActionDeleteDetected,
	ActionDeleteDetectedReviewed,
	ActionDeleteNotDetected,
	ActionDeleteNotDetectedReviewed,
}

// String is the menu label.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "do nothing"
	case ActionDeleteDetected:
		return "delete all files with a person detected"
	case ActionDeleteDetectedReviewed:
		return "delete all files with a person detected and still in debug dir"
	case ActionDeleteNotDetected:
		return "delete all files with no person detected"
	case ActionDeleteNotDetectedReviewed:
		return "delete all files with no person detected and still in debug dir"
	default:
		return fmt.Sprintf("action %d", int(a))
	}
}

// ParseAction reads a menu choice.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return ActionNone, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	if n < int(ActionNone) || n > int(ActionDeleteNotDetectedReviewed) {
		return ActionNone, fmt.Errorf("%w: %d", ErrUnknownAction, n)
	}
	return Action(n), nil
}

// Targets selects the files an action deletes. Files with an analyze error
// are never selected. The "still in debug dir" variants keep only files
// whose annotated image has not been removed by the user.
func Targets(a Action, report *run.Report) []media.File {
	var pool []classify.FileVerdict
	reviewed := false

	switch a {
	case ActionDeleteDetected:
		pool = report.Found
	case ActionDeleteDetectedReviewed:
		pool, reviewed = report.Found, true
	case ActionDeleteNotDetected:
		pool = report.NotFound
	case ActionDeleteNotDetectedReviewed:
		pool, reviewed = report.NotFound, true
	default:
		return nil
	}

	var files []media.File
	for _, v := range pool {
		if v.AnalyzeError {
			continue
		}
		if reviewed && !imageKept(v) {
			continue
		}
		files = append(files, v.File)
	}
	return files
}

func imageKept(v classify.FileVerdict) bool {
	if len(v.SavedImages) == 0 {
		return storage.Exists(v.SavedImagePath)
	}
	for _, p := range v.SavedImages {
		if storage.Exists(p) {
			return true
		}
	}
	return false
}
