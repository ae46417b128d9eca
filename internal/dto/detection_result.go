package dto

import "sort"

// DetectionResult is one box reported by the detector for a single frame.
type DetectionResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Detections is the ordered box list for a frame.
type Detections []DetectionResult

// Has reports whether any box carries label.
func (d Detections) Has(label string) bool {
	for _, det := range d {
		if det.Label == label {
			return true
		}
	}
	return false
}

// Count returns how many boxes carry label.
func (d Detections) Count(label string) int {
	n := 0
	for _, det := range d {
		if det.Label == label {
			n++
		}
	}
	return n
}

// Labels returns the distinct labels, sorted.
func (d Detections) Labels() []string {
	seen := make(map[string]bool, len(d))
	labels := make([]string, 0, len(d))
	for _, det := range d {
		if seen[det.Label] {
			continue
		}
		seen[det.Label] = true
		labels = append(labels, det.Label)
	}
	sort.Strings(labels)
	return labels
}
