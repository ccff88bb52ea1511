// Package imagesource provides frame sources that replay still images into the detection pipeline.
package imagesource

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/arlens/rimage"
)

// StaticSource serves the same frame forever.
type StaticSource struct {
	Frame *rimage.PixelBuffer
}

// NextFrame returns a copy of the static frame.
func (ss *StaticSource) NextFrame(ctx context.Context) (*rimage.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ss.Frame == nil {
		return nil, nil
	}
	return cloneFrame(ss.Frame), nil
}

// Close does nothing.
func (ss *StaticSource) Close() error {
	return nil
}

// Sequence replays a list of frames, serving each one FramesPerImage times before moving to the
// next and looping back to the start after the last.
type Sequence struct {
	mu             sync.Mutex
	frames         []*rimage.PixelBuffer
	framesPerImage int
	index          int
	served         int
	closed         bool
}

func newSequence(frames []*rimage.PixelBuffer, framesPerImage int) (*Sequence, error) {
	if len(frames) == 0 {
		return nil, errors.New("image sequence is empty")
	}
	if framesPerImage < 1 {
		framesPerImage = 1
	}
	return &Sequence{frames: frames, framesPerImage: framesPerImage}, nil
}

// Len returns the number of distinct frames in the sequence.
func (s *Sequence) Len() int {
	return len(s.frames)
}

// NextFrame returns a copy of the current frame and advances the sequence.
func (s *Sequence) NextFrame(ctx context.Context) (*rimage.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("image sequence is closed")
	}

	frame := s.frames[s.index]
	s.served++
	if s.served == s.framesPerImage {
		s.served = 0
		s.index = (s.index + 1) % len(s.frames)
	}
	return cloneFrame(frame), nil
}

// Close releases the decoded frames.
func (s *Sequence) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.frames = nil
	return nil
}

func cloneFrame(pb *rimage.PixelBuffer) *rimage.PixelBuffer {
	clone := *pb
	clone.Data = append([]byte(nil), pb.Data...)
	return &clone
}
