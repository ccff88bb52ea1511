package rimage

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// aspectEpsilon is the tolerance under which two aspect ratios are considered equal.
const aspectEpsilon = 1e-6

// CenterCropRect returns the centered sub-rectangle of a width×height image with the given
// aspect ratio. When the target is wider than the image the full width is kept and the height
// is floor(width/aspect); otherwise the full height is kept and the width is floor(height*aspect).
func CenterCropRect(width, height int, aspect float64) image.Rectangle {
	cw, ch := width, height
	if aspect > float64(width)/float64(height) {
		ch = int(math.Floor(float64(width) / aspect))
	} else {
		cw = int(math.Floor(float64(height) * aspect))
	}
	x0 := (width - cw) / 2
	y0 := (height - ch) / 2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}

// CropToAspect center-crops src to the given aspect ratio. src is returned unchanged when its
// aspect is already within aspectEpsilon of the target.
func CropToAspect(src *PixelBuffer, aspect float64) (*PixelBuffer, error) {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return nil, errors.Errorf("invalid crop aspect %v", aspect)
	}
	if math.Abs(src.Aspect()-aspect) < aspectEpsilon {
		return src, nil
	}
	rect := CenterCropRect(src.Width, src.Height, aspect)
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return nil, errors.Errorf("cropping %dx%d to aspect %v leaves no pixels", src.Width, src.Height, aspect)
	}

	dst := NewPixelBuffer(rect.Dx(), rect.Dy())
	rowBytes := rect.Dx() * RGBChannels
	for y := 0; y < rect.Dy(); y++ {
		si := src.offset(rect.Min.X, rect.Min.Y+y)
		copy(dst.Data[y*rowBytes:(y+1)*rowBytes], src.Data[si:si+rowBytes])
	}
	return dst, nil
}
