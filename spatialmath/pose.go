package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the world frame.
// Positions are in meters; the world frame is +Y up.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type basicPose struct {
	point       r3.Vector
	orientation Orientation
}

// NewPose takes in a position and orientation and returns a Pose. A nil orientation is no rotation.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		o = NewZeroOrientation()
	}
	return &basicPose{point: p, orientation: o}
}

// NewZeroPose returns a pose at (0,0,0) with no rotation.
func NewZeroPose() Pose {
	return NewPose(r3.Vector{}, NewZeroOrientation())
}

// NewPoseFromPoint makes a pose at p with no rotation.
func NewPoseFromPoint(p r3.Vector) Pose {
	return NewPose(p, NewZeroOrientation())
}

func (p *basicPose) Point() r3.Vector {
	return p.point
}

func (p *basicPose) Orientation() Orientation {
	return p.orientation
}

func (p *basicPose) String() string {
	q := p.orientation.Quaternion()
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f | W:%.4f I:%.4f J:%.4f K:%.4f}",
		p.point.X, p.point.Y, p.point.Z, q.Real, q.Imag, q.Jmag, q.Kmag)
}

// Compose expresses b, given in a's frame, in the frame a is expressed in.
func Compose(a, b Pose) Pose {
	pt := a.Point().Add(RotatePoint(a.Orientation(), b.Point()))
	return NewPose(pt, NewQuaternionOrientation(quat.Mul(a.Orientation().Quaternion(), b.Orientation().Quaternion())))
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-6)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same
// with the position compared to within epsilon.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return PoseAlmostCoincidentEps(a, b, epsilon) && OrientationAlmostEqual(a.Orientation(), b.Orientation())
}

// PoseAlmostCoincident will return a bool describing whether 2 poses approximately are at the same 3D coordinate location.
func PoseAlmostCoincident(a, b Pose) bool {
	return PoseAlmostCoincidentEps(a, b, 1e-6)
}

// PoseAlmostCoincidentEps will return a bool describing whether 2 poses approximately are at the same 3D coordinate location
// within epsilon.
func PoseAlmostCoincidentEps(a, b Pose, epsilon float64) bool {
	return a.Point().Sub(b.Point()).Norm() <= epsilon
}
