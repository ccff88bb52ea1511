package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestPinholeCameraIntrinsicsValid(t *testing.T) {
	var nilIntrinsics *PinholeCameraIntrinsics
	test.That(t, errors.Is(nilIntrinsics.CheckValid(), ErrNoIntrinsics), test.ShouldBeTrue)

	intrinsics := &PinholeCameraIntrinsics{Width: 640, Height: 480, Fx: 500, Fy: 500, Ppx: 320, Ppy: 240}
	test.That(t, intrinsics.CheckValid(), test.ShouldBeNil)
	test.That(t, intrinsics.Aspect(), test.ShouldAlmostEqual, 640.0/480.0)

	bad := *intrinsics
	bad.Fx = 0
	err := bad.CheckValid()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "Fx")

	bad = *intrinsics
	bad.Height = 0
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)
}

func TestPixelToPointRoundTrip(t *testing.T) {
	intrinsics := &PinholeCameraIntrinsics{Width: 640, Height: 480, Fx: 500, Fy: 400, Ppx: 320, Ppy: 240}

	x, y, z := intrinsics.PixelToPoint(420, 140, 2)
	test.That(t, x, test.ShouldAlmostEqual, 0.4)
	test.That(t, y, test.ShouldAlmostEqual, -0.5)
	test.That(t, z, test.ShouldEqual, 2.0)

	px, py := intrinsics.PointToPixel(x, y, z)
	test.That(t, px, test.ShouldEqual, 420.0)
	test.That(t, py, test.ShouldEqual, 140.0)

	px, py = intrinsics.PointToPixel(1, 1, 0)
	test.That(t, px, test.ShouldEqual, -1.0)
	test.That(t, py, test.ShouldEqual, -1.0)
}

func TestScreenPointToCamera(t *testing.T) {
	intrinsics := NewPinholeCameraIntrinsicsFromFOV(800, 600, 90)
	test.That(t, intrinsics.Fy, test.ShouldAlmostEqual, 300.0)

	center := intrinsics.ScreenPointToCamera(r2.Point{X: 400, Y: 300}, 1)
	test.That(t, center.Sub(r3.Vector{Z: 1}).Norm(), test.ShouldAlmostEqual, 0.0)

	// top of the screen is up in the camera frame
	top := intrinsics.ScreenPointToCamera(r2.Point{X: 400, Y: 0}, 1)
	test.That(t, top.Y, test.ShouldAlmostEqual, 1.0)
	test.That(t, top.Z, test.ShouldEqual, 1.0)
}

func TestIntrinsicsFromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intrinsics.json")
	err := os.WriteFile(path, []byte(`{"width_px":1280,"height_px":720,"fx":900,"fy":900,"ppx":640,"ppy":360}`), 0o600)
	test.That(t, err, test.ShouldBeNil)

	intrinsics, err := NewPinholeCameraIntrinsicsFromJSONFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, intrinsics, test.ShouldResemble,
		&PinholeCameraIntrinsics{Width: 1280, Height: 720, Fx: 900, Fy: 900, Ppx: 640, Ppy: 360})

	_, err = NewPinholeCameraIntrinsicsFromJSONFile(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}
