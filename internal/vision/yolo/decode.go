// Package yolo turns raw YOLO output rows into candidate boxes.
package yolo

import "image"

// Candidate is a box that passed the confidence threshold, before NMS.
type Candidate struct {
	Box        image.Rectangle
	ClassID    int
	Confidence float32
}

// Decode reads YOLO region output rows of the form
// [cx, cy, w, h, objectness, class scores...], all relative to the input
// size, and keeps rows whose best class score reaches threshold. The darknet
// region layer has already multiplied objectness into the class scores, so
// objectness only discards empty rows.
// Boxes are scaled to a frame of width x height and clipped to it.
func Decode(rows [][]float32, width, height int, threshold float32) []Candidate {
	var out []Candidate
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		if row[4] <= 0 {
			continue
		}

		classID, best := -1, float32(0)
		for i, score := range row[5:] {
			if score > best {
				classID, best = i, score
			}
		}
		if classID < 0 || best < threshold {
			continue
		}

		cx, cy := row[0]*float32(width), row[1]*float32(height)
		w, h := row[2]*float32(width), row[3]*float32(height)
		box := image.Rect(
			int(cx-w/2), int(cy-h/2),
			int(cx+w/2), int(cy+h/2),
		).Intersect(image.Rect(0, 0, width, height))
		if box.Empty() {
			continue
		}

		out = append(out, Candidate{Box: box, ClassID: classID, Confidence: best})
	}
	return out
}

// Split returns parallel box and score slices for an NMS call.
func Split(cands []Candidate) ([]image.Rectangle, []float32) {
	boxes := make([]image.Rectangle, len(cands))
	scores := make([]float32, len(cands))
	for i, c := range cands {
		boxes[i] = c.Box
		scores[i] = c.Confidence
	}
	return boxes, scores
}
