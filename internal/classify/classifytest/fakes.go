// Package classifytest provides in-memory media and detector fakes for
// exercising the classification engine without model files or codecs.
package classifytest

import (
	"errors"
	"fmt"
	"path"
	"sync"

	"peopledetect/internal/dto"
	"peopledetect/internal/media"
)

// Frame is a fake decoded frame.
type Frame struct {
	Path  string
	Index int
	media *Media
}

// Close records the release.
func (f *Frame) Close() error {
	f.media.mu.Lock()
	defer f.media.mu.Unlock()
	f.media.closedFrames++
	return nil
}

// Media describes a fake file: its frame count, which frames contain which
// labels, and where reads or detection fail.
type Media struct {
	FrameCount   int
	Labels       map[int][]string
	ReadErrAt    int
	DetectErrAt  int
	OpenErr      error
	mu           sync.Mutex
	openFrames   int
	closedFrames int
}

// OpenFrames reports frames handed out minus frames closed.
func (m *Media) OpenFrames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openFrames - m.closedFrames
}

type source struct {
	path   string
	media  *Media
	closed bool
}

func (s *source) FrameCount() int { return s.media.FrameCount }

func (s *source) ReadFrame(index int) (media.Frame, error) {
	if s.media.ReadErrAt != 0 && index == s.media.ReadErrAt {
		return nil, fmt.Errorf("cannot seek to frame %d", index)
	}
	s.media.mu.Lock()
	s.media.openFrames++
	s.media.mu.Unlock()
	return &Frame{Path: s.path, Index: index, media: s.media}, nil
}

func (s *source) Close() error {
	s.closed = true
	return nil
}

// Opener serves fake media by path. Paths not registered are invalid.
type Opener struct {
	Files map[string]*Media
}

// NewOpener creates an empty Opener.
func NewOpener() *Opener {
	return &Opener{Files: make(map[string]*Media)}
}

// Add registers a fake media file.
func (o *Opener) Add(p string, m *Media) *Media {
	o.Files[p] = m
	return m
}

// Open implements classify.Opener.
func (o *Opener) Open(file media.File) (media.Source, error) {
	m, ok := o.Files[file.Path]
	if !ok {
		return nil, fmt.Errorf("%w: cannot decode %s", media.ErrInvalid, file.Path)
	}
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	return &source{path: file.Path, media: m}, nil
}

// Detector reports the labels registered on the frame's media and keeps a
// log of every frame it was asked about.
type Detector struct {
	Opener *Opener
	mu     sync.Mutex
	calls  []Call
}

// Call is one Detect invocation.
type Call struct {
	Path  string
	Index int
}

// ErrFake is returned by Detect at Media.DetectErrAt.
var ErrFake = errors.New("fake detector failure")

// Detect implements classify.Detector.
func (d *Detector) Detect(frame media.Frame) (dto.Detections, error) {
	f, ok := frame.(*Frame)
	if !ok {
		return nil, fmt.Errorf("unexpected frame type %T", frame)
	}

	d.mu.Lock()
	d.calls = append(d.calls, Call{Path: f.Path, Index: f.Index})
	d.mu.Unlock()

	if f.media.DetectErrAt != 0 && f.Index == f.media.DetectErrAt {
		return nil, ErrFake
	}

	var dets dto.Detections
	for i, label := range f.media.Labels[f.Index] {
		dets = append(dets, dto.DetectionResult{
			Label:      label,
			Confidence: 0.9,
			X:          10 * i,
			Y:          10 * i,
			Width:      50,
			Height:     100,
		})
	}
	return dets, nil
}

// Calls returns the frame indices examined for path, in order.
func (d *Detector) Calls(p string) []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []int
	for _, c := range d.calls {
		if c.Path == p {
			out = append(out, c.Index)
		}
	}
	return out
}

// Annotator encodes a short description instead of pixels.
type Annotator struct {
	Err error
}

// Annotate implements classify.Annotator.
func (a *Annotator) Annotate(frame media.Frame, dets dto.Detections) ([]byte, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	f := frame.(*Frame)
	return []byte(fmt.Sprintf("%s#%d:%v", f.Path, f.Index, dets.Labels())), nil
}

// ImageWriter keeps written images in memory.
type ImageWriter struct {
	Root   string
	mu     sync.Mutex
	Images map[string][]byte
}

// WriteImage implements classify.ImageWriter.
func (w *ImageWriter) WriteImage(subdir, name string, data []byte) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Images == nil {
		w.Images = make(map[string][]byte)
	}
	p := path.Join(w.Root, subdir, name)
	w.Images[p] = data
	return p, nil
}
