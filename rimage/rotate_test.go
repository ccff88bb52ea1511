package rimage

import (
	"testing"

	"go.viam.com/test"
)

func TestRotateMapping(t *testing.T) {
	src := newPatternBuffer(3, 2)

	r90, err := Rotate(src, Orientation90)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r90.Width, test.ShouldEqual, 2)
	test.That(t, r90.Height, test.ShouldEqual, 3)
	// (x, y) -> (y, W-1-x)
	test.That(t, pixelAt(r90, 0, 2), test.ShouldResemble, pixelAt(src, 0, 0))
	test.That(t, pixelAt(r90, 1, 0), test.ShouldResemble, pixelAt(src, 2, 1))

	r180, err := Rotate(src, Orientation180)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r180.Width, test.ShouldEqual, 3)
	test.That(t, r180.Height, test.ShouldEqual, 2)
	test.That(t, pixelAt(r180, 2, 1), test.ShouldResemble, pixelAt(src, 0, 0))
	test.That(t, pixelAt(r180, 0, 1), test.ShouldResemble, pixelAt(src, 2, 0))

	r270, err := Rotate(src, Orientation270)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r270.Width, test.ShouldEqual, 2)
	test.That(t, r270.Height, test.ShouldEqual, 3)
	// (x, y) -> (H-1-y, x)
	test.That(t, pixelAt(r270, 1, 0), test.ShouldResemble, pixelAt(src, 0, 0))
	test.That(t, pixelAt(r270, 0, 2), test.ShouldResemble, pixelAt(src, 2, 1))

	same, err := Rotate(src, Orientation0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, same, test.ShouldEqual, src)

	_, err = Rotate(src, Orientation(45))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRotateRoundTrips(t *testing.T) {
	src := newPatternBuffer(7, 4)

	out := src
	var err error
	for i := 0; i < 4; i++ {
		out, err = Rotate(out, Orientation90)
		test.That(t, err, test.ShouldBeNil)
	}
	test.That(t, out.Width, test.ShouldEqual, src.Width)
	test.That(t, out.Height, test.ShouldEqual, src.Height)
	test.That(t, out.Data, test.ShouldResemble, src.Data)

	r90, err := Rotate(src, Orientation90)
	test.That(t, err, test.ShouldBeNil)
	back, err := Rotate(r90, Orientation270)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Data, test.ShouldResemble, src.Data)

	r180, err := Rotate(src, Orientation180)
	test.That(t, err, test.ShouldBeNil)
	twice, err := Rotate(r180, Orientation180)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, twice.Data, test.ShouldResemble, src.Data)
}
