package rimage

import (
	"github.com/pkg/errors"
)

// TransformResult is a model-ready buffer plus the aspect ratios needed to map detections made on
// it back onto the upright source frame.
type TransformResult struct {
	Buffer *PixelBuffer
	// OriginalAspect is width over height of the upright (rotated) source frame.
	OriginalAspect float64
	// ProcessedAspect is the aspect ratio of the region of the source the buffer shows. It equals
	// the target aspect when cropping and OriginalAspect when the frame was stretched instead.
	ProcessedAspect float64
}

// Transform rotates buf by orientation, optionally center-crops it to the target aspect ratio
// and resizes it to exactly targetWidth×targetHeight RGB pixels.
func Transform(buf *PixelBuffer, orientation Orientation, targetWidth, targetHeight int, doCrop bool) (*PixelBuffer, error) {
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, errors.Errorf("invalid target dimensions (%d, %d)", targetWidth, targetHeight)
	}
	if !orientation.Valid() {
		return nil, errors.Errorf("invalid orientation %d", orientation)
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	out, err := Rotate(buf, orientation)
	if err != nil {
		return nil, err
	}
	if doCrop {
		out, err = CropToAspect(out, float64(targetWidth)/float64(targetHeight))
		if err != nil {
			return nil, err
		}
	}
	out, err = Resize(out, targetWidth, targetHeight)
	if err != nil {
		return nil, err
	}
	if out == buf {
		// never hand the caller's own slice back as a new frame
		clone := *buf
		clone.Data = append([]byte(nil), buf.Data...)
		out = &clone
	}
	out.Orientation = Orientation0
	return out, nil
}

// TransformFrame runs Transform with the frame's own orientation and reports the aspect ratios
// involved.
func TransformFrame(frame *PixelBuffer, targetWidth, targetHeight int, doCrop bool) (*TransformResult, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	out, err := Transform(frame, frame.Orientation, targetWidth, targetHeight, doCrop)
	if err != nil {
		return nil, err
	}
	original := frame.Aspect()
	if frame.Orientation.SwapsAxes() {
		original = 1 / original
	}
	processed := original
	if doCrop {
		processed = float64(targetWidth) / float64(targetHeight)
	}
	return &TransformResult{Buffer: out, OriginalAspect: original, ProcessedAspect: processed}, nil
}
