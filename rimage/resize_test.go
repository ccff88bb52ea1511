package rimage

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/arlens/utils"
)

// newRampBuffer sets R to 50*x, G to 100*y and B to 7.
func newRampBuffer(w, h int) *PixelBuffer {
	pb := NewPixelBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := pb.offset(x, y)
			pb.Data[i] = byte(50 * x)
			pb.Data[i+1] = byte(100 * y)
			pb.Data[i+2] = 7
		}
	}
	return pb
}

func TestResizeByHand(t *testing.T) {
	src := newRampBuffer(5, 3)

	out, err := Resize(src, 3, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Data, test.ShouldHaveLength, 3*2*3)

	// ratioX = 4/3, ratioY = 2/2
	test.That(t, pixelAt(out, 0, 0), test.ShouldResemble, [3]byte{0, 0, 7})
	// sx = 4/3: 50 + 50*(1/3) = 66.67 truncates to 66
	test.That(t, pixelAt(out, 1, 0), test.ShouldResemble, [3]byte{66, 0, 7})
	// sx = 8/3: 100 + 50*(2/3) = 133.33 truncates to 133
	test.That(t, pixelAt(out, 2, 0), test.ShouldResemble, [3]byte{133, 0, 7})
	test.That(t, pixelAt(out, 2, 1), test.ShouldResemble, [3]byte{133, 100, 7})

	half, err := Resize(src, 2, 4)
	test.That(t, err, test.ShouldBeNil)
	// ratioY = 2/4: sy = 0.5 gives 0 + 100*0.5, sy = 1.5 gives 100 + 100*0.5
	test.That(t, pixelAt(half, 0, 1), test.ShouldResemble, [3]byte{0, 50, 7})
	test.That(t, pixelAt(half, 1, 3), test.ShouldResemble, [3]byte{100, 150, 7})
}

func TestResizeSinglePixelWide(t *testing.T) {
	src := newRampBuffer(1, 1)
	src.Data[0], src.Data[1], src.Data[2] = 9, 8, 7

	out, err := Resize(src, 4, 3)
	test.That(t, err, test.ShouldBeNil)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			test.That(t, pixelAt(out, x, y), test.ShouldResemble, [3]byte{9, 8, 7})
		}
	}
}

func TestResizeIdentity(t *testing.T) {
	src := newRampBuffer(5, 3)
	out, err := Resize(src, 5, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, src)

	_, err = Resize(src, 0, 3)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestResizeBandsAgree(t *testing.T) {
	origFactor := utils.ParallelFactor
	defer func() {
		utils.ParallelFactor = origFactor
	}()

	src := newPatternBuffer(97, 61)
	utils.ParallelFactor = 1
	serial, err := Resize(src, 40, 33)
	test.That(t, err, test.ShouldBeNil)

	utils.ParallelFactor = 7
	parallel, err := Resize(src, 40, 33)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, parallel.Data, test.ShouldResemble, serial.Data)
}

func TestResizeUniform(t *testing.T) {
	src := NewPixelBuffer(13, 11)
	for i := range src.Data {
		src.Data[i] = 123
	}
	out, err := Resize(src, 29, 5)
	test.That(t, err, test.ShouldBeNil)
	for _, b := range out.Data {
		test.That(t, b, test.ShouldEqual, byte(123))
	}
}
