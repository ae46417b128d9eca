// Package sampler decides which frame indices of a media file get examined.
package sampler

import (
	"fmt"

	"peopledetect/internal/media"
)

// TailMargin is how many frames before the reported end sampling stops.
// Container frame counts are estimates and seeking into the last few
// frames regularly fails to decode.
const TailMargin = 6

// Sequence is a lazy, finite run of 1-based frame indices.
type Sequence struct {
	next   int
	stop   int // exclusive
	stride int
}

// Plan builds the index sequence for a file of the given kind.
//
// Images always yield the single index 1 regardless of stride. Videos yield
// 1, 1+stride, 1+2*stride, ... strictly below frameCount-TailMargin, and a
// non-positive frameCount is reported as media.ErrInvalid.
func Plan(kind media.Kind, frameCount, stride int) (*Sequence, error) {
	switch kind {
	case media.Image:
		return &Sequence{next: 1, stop: 2, stride: 1}, nil
	case media.Video:
		if frameCount <= 0 {
			return nil, fmt.Errorf("%w: frame count %d", media.ErrInvalid, frameCount)
		}
		if stride < 1 {
			stride = 1
		}
		return &Sequence{next: 1, stop: frameCount - TailMargin, stride: stride}, nil
	default:
		return nil, fmt.Errorf("cannot sample %s media", kind)
	}
}

// Next returns the next index, or false once the sequence is exhausted.
func (s *Sequence) Next() (int, bool) {
	if s.next >= s.stop {
		return 0, false
	}
	idx := s.next
	if s.stride >= s.stop-s.next {
		s.next = s.stop
	} else {
		s.next += s.stride
	}
	return idx, true
}

// Len is the number of indices left to produce.
func (s *Sequence) Len() int {
	if s.next >= s.stop {
		return 0
	}
	return (s.stop-s.next-1)/s.stride + 1
}
