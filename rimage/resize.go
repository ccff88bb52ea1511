package rimage

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/arlens/utils"
)

// Resize bilinearly resamples src to outW×outH. Source coordinates are scaled by
// (in-1)/out per axis so the 2×2 neighborhood always stays inside the image. Each channel is
// interpolated along x on two rows and then along y, truncating to a byte after every step.
// Rows are split into contiguous bands that are filled concurrently.
func Resize(src *PixelBuffer, outW, outH int) (*PixelBuffer, error) {
	if outW <= 0 || outH <= 0 {
		return nil, errors.Errorf("invalid resize target (%d, %d)", outW, outH)
	}
	if src.Width == outW && src.Height == outH {
		return src, nil
	}

	dst := NewPixelBuffer(outW, outH)
	ratioX := float64(src.Width-1) / float64(outW)
	ratioY := float64(src.Height-1) / float64(outH)
	lastX, lastY := src.Width-1, src.Height-1

	utils.GroupWorkParallel(outH, func(groupNum, groupSize, from, to int) utils.MemberWorkFunc {
		return func(memberNum, y int) {
			sy := float64(y) * ratioY
			y0 := int(math.Floor(sy))
			fy := sy - float64(y0)
			y1 := utils.MinInt(y0+1, lastY)
			for x := 0; x < outW; x++ {
				sx := float64(x) * ratioX
				x0 := int(math.Floor(sx))
				fx := sx - float64(x0)
				x1 := utils.MinInt(x0+1, lastX)

				i00 := src.offset(x0, y0)
				i10 := src.offset(x1, y0)
				i01 := src.offset(x0, y1)
				i11 := src.offset(x1, y1)
				di := dst.offset(x, y)
				for c := 0; c < RGBChannels; c++ {
					top := lerpByte(src.Data[i00+c], src.Data[i10+c], fx)
					bottom := lerpByte(src.Data[i01+c], src.Data[i11+c], fx)
					dst.Data[di+c] = lerpByte(top, bottom, fy)
				}
			}
		}
	})
	return dst, nil
}

func lerpByte(a, b byte, t float64) byte {
	v := float64(a) + (float64(b)-float64(a))*t
	return byte(utils.ClampInt(int(v), 0, 255))
}
