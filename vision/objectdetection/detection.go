// Package objectdetection defines 2D detections produced by an inference model and the filters
// applied to them before projection.
package objectdetection

import "fmt"

// Detection is one object found in a processed frame.
type Detection struct {
	Rect       NormalizedRect
	Label      string
	Confidence float64
	// Payload is carried through projection and tracking untouched.
	Payload any
}

func (d Detection) String() string {
	return fmt.Sprintf("%s [%.3f]: (%.3f, %.3f) %.3fx%.3f", d.Label, d.Confidence, d.Rect.X, d.Rect.Y, d.Rect.Width, d.Rect.Height)
}
