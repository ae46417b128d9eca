package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"peopledetect/internal/dto"
	"peopledetect/internal/media"
)

var (
	personColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	otherColor  = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// Annotator draws detection boxes and encodes the result as JPEG.
type Annotator struct{}

// NewAnnotator creates an Annotator.
func NewAnnotator() *Annotator {
	return &Annotator{}
}

// Annotate implements classify.Annotator. The source frame is left untouched.
func (a *Annotator) Annotate(frame media.Frame, dets dto.Detections) ([]byte, error) {
	f, ok := frame.(*Frame)
	if !ok {
		return nil, fmt.Errorf("unexpected frame type %T", frame)
	}

	mat := f.Mat.Clone()
	defer mat.Close()

	for _, det := range dets {
		c := otherColor
		if det.Label == "person" {
			c = personColor
		}
		rect := image.Rect(det.X, det.Y, det.X+det.Width, det.Y+det.Height)
		if err := gocv.Rectangle(&mat, rect, c, 2); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %w", err)
		}

		label := fmt.Sprintf("%s %.2f", det.Label, det.Confidence)
		pt := image.Pt(det.X, max(det.Y-5, 10))
		if err := gocv.PutText(&mat, label, pt, gocv.FontHersheySimplex, 0.5, c, 2); err != nil {
			return nil, fmt.Errorf("failed to draw text: %w", err)
		}
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
