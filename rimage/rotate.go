package rimage

import "github.com/pkg/errors"

// Rotate returns a copy of src rotated clockwise by orientation. For 90 and 270 the output
// width and height are swapped. The returned buffer has Orientation0. Orientation0 returns src.
func Rotate(src *PixelBuffer, orientation Orientation) (*PixelBuffer, error) {
	if !orientation.Valid() {
		return nil, errors.Errorf("invalid orientation %d", orientation)
	}
	if orientation == Orientation0 {
		return src, nil
	}

	w, h := src.Width, src.Height
	dst := NewPixelBuffer(w, h)
	if orientation.SwapsAxes() {
		dst = NewPixelBuffer(h, w)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case Orientation90:
				dx, dy = y, w-1-x
			case Orientation180:
				dx, dy = w-1-x, h-1-y
			case Orientation270:
				dx, dy = h-1-y, x
			case Orientation0:
			}
			si := src.offset(x, y)
			di := dst.offset(dx, dy)
			copy(dst.Data[di:di+RGBChannels], src.Data[si:si+RGBChannels])
		}
	}
	return dst, nil
}
