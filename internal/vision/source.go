// Package vision adapts OpenCV (gocv) to the media and classify interfaces:
// decoding frames, running the YOLO network and drawing annotated output.
package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"peopledetect/internal/media"
)

// Frame wraps a decoded OpenCV matrix.
type Frame struct {
	Mat gocv.Mat
}

// Close releases the matrix.
func (f *Frame) Close() error {
	return f.Mat.Close()
}

// Loader opens media files with OpenCV.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Open validates file and returns a frame source for it. Images must decode;
// videos must open and report a positive frame count.
func (l *Loader) Open(file media.File) (media.Source, error) {
	switch file.Kind {
	case media.Image:
		mat := gocv.IMRead(file.Path, gocv.IMReadColor)
		if mat.Empty() {
			mat.Close()
			return nil, fmt.Errorf("%w: cannot decode image %s", media.ErrInvalid, file.Path)
		}
		return &imageSource{mat: mat}, nil
	case media.Video:
		vc, err := gocv.VideoCaptureFile(file.Path)
		if err != nil {
			if vc != nil {
				vc.Close()
			}
			return nil, fmt.Errorf("%w: cannot open video %s: %w", media.ErrInvalid, file.Path, err)
		}
		if !vc.IsOpened() {
			vc.Close()
			return nil, fmt.Errorf("%w: cannot open video %s", media.ErrInvalid, file.Path)
		}
		count := int(vc.Get(gocv.VideoCaptureFrameCount))
		if count <= 0 {
			vc.Close()
			return nil, fmt.Errorf("%w: video %s reports %d frames", media.ErrInvalid, file.Path, count)
		}
		return &videoSource{vc: vc, count: count}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported file %s", media.ErrInvalid, file.Path)
	}
}

type imageSource struct {
	mat gocv.Mat
}

func (s *imageSource) FrameCount() int { return 1 }

func (s *imageSource) ReadFrame(index int) (media.Frame, error) {
	if index != 1 {
		return nil, fmt.Errorf("image has no frame %d", index)
	}
	return &Frame{Mat: s.mat.Clone()}, nil
}

func (s *imageSource) Close() error {
	return s.mat.Close()
}

type videoSource struct {
	vc    *gocv.VideoCapture
	count int
}

func (s *videoSource) FrameCount() int { return s.count }

// ReadFrame seeks to index and decodes one frame. Frame counts are container
// estimates, so a seek near the end can come back empty.
func (s *videoSource) ReadFrame(index int) (media.Frame, error) {
	s.vc.Set(gocv.VideoCapturePosFrames, float64(index))

	mat := gocv.NewMat()
	if ok := s.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("cannot decode frame %d of %d", index, s.count)
	}
	return &Frame{Mat: mat}, nil
}

func (s *videoSource) Close() error {
	return s.vc.Close()
}
