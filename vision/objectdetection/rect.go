package objectdetection

import (
	"github.com/golang/geo/r2"
)

// NormalizedRect is an axis-aligned box in [0,1] coordinates relative to the image it was
// detected on. X and Y are the top-left corner, with Y growing downward.
type NormalizedRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewNormalizedRectFromCorners builds a rect from its min and max corners, clamped to [0,1].
func NewNormalizedRectFromCorners(xMin, yMin, xMax, yMax float64) NormalizedRect {
	xMin, xMax = clamp01(min(xMin, xMax)), clamp01(max(xMin, xMax))
	yMin, yMax = clamp01(min(yMin, yMax)), clamp01(max(yMin, yMax))
	return NormalizedRect{X: xMin, Y: yMin, Width: xMax - xMin, Height: yMax - yMin}
}

// Center returns the normalized center of the rect.
func (r NormalizedRect) Center() r2.Point {
	return r2.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Area returns the normalized area of the rect.
func (r NormalizedRect) Area() float64 {
	return r.Width * r.Height
}

// Denormalize scales the rect into pixel coordinates of a width×height screen.
func (r NormalizedRect) Denormalize(width, height float64) r2.Rect {
	return r2.RectFromPoints(
		r2.Point{X: r.X * width, Y: r.Y * height},
		r2.Point{X: (r.X + r.Width) * width, Y: (r.Y + r.Height) * height},
	)
}

// AdjustAspect maps a rect produced on a processed buffer back onto the screen. The processed
// buffer showed the centered processedAspect region of an originalAspect frame, and the frame is
// shown on a screenAspect screen scaled to fill it.
func (r NormalizedRect) AdjustAspect(originalAspect, processedAspect, screenAspect float64) NormalizedRect {
	return r.remapAspect(processedAspect, originalAspect, true).remapAspect(originalAspect, screenAspect, false)
}

// remapAspect re-expresses r, given relative to a centered view with aspect a1, relative to a
// view with aspect a2. When contained, the a1 view lies inside the a2 view; otherwise a2 lies
// inside a1.
func (r NormalizedRect) remapAspect(a1, a2 float64, contained bool) NormalizedRect {
	mul := a1 / a2
	mulX, mulY := 1.0, 1.0
	if mul < 1 {
		if contained {
			mulX = 1 / mul
		} else {
			mulY = mul
		}
	} else {
		if contained {
			mulY = mul
		} else {
			mulX = 1 / mul
		}
	}
	return NormalizedRect{
		X:      (r.X + (mulX-1)/2) / mulX,
		Y:      (r.Y + (mulY-1)/2) / mulY,
		Width:  r.Width / mulX,
		Height: r.Height / mulY,
	}
}

func clamp01(f float64) float64 {
	return max(0, min(1, f))
}
