package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the orientation of a rigid object or a frame of
// reference in 3D Euclidean space. Poses in this module are stored as unit quaternions.
type Orientation interface {
	Quaternion() quat.Number
	AxisAngles() *R4AA
}

type quaternion quat.Number

// NewZeroOrientation returns an orientatation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{1, 0, 0, 0}
}

// NewQuaternionOrientation wraps q, normalized, as an Orientation. A zero quaternion is treated
// as no rotation.
func NewQuaternionOrientation(q quat.Number) Orientation {
	n := Normalize(q)
	o := quaternion(n)
	return &o
}

// Quaternion returns the orientation as a unit quaternion.
func (q *quaternion) Quaternion() quat.Number {
	return quat.Number(*q)
}

// AxisAngles returns the orientation in axis angle representation.
func (q *quaternion) AxisAngles() *R4AA {
	return QuatToR4AA(quat.Number(*q))
}

// OrientationAlmostEqual will return a bool describing whether 2 poses have approximately the same orientation.
// q and -q describe the same rotation and compare equal.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	q1, q2 := o1.Quaternion(), o2.Quaternion()
	return QuaternionAlmostEqual(q1, q2, 1e-5) || QuaternionAlmostEqual(q1, quat.Scale(-1, q2), 1e-5)
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion. Quaternions have double coverage, q == -q, and
// this function will *not* account for this. Use OrientationAlmostEqual unless you're certain this is what you want.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
}

// Normalize returns q scaled to unit length. The zero quaternion normalizes to identity.
func Normalize(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	switch norm {
	case 0:
		return quat.Number{Real: 1}
	case 1:
		return q
	}
	return quat.Scale(1/norm, q)
}

// RotatePoint applies the rotation described by o to v.
func RotatePoint(o Orientation, v r3.Vector) r3.Vector {
	q := o.Quaternion()
	rotated := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// R4AA represents an R4 axis angle.
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// NewR4AA creates an empty R4AA struct.
func NewR4AA() *R4AA {
	return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
}

// Quaternion returns the rotation as a unit quaternion.
func (r4 *R4AA) Quaternion() quat.Number {
	axis := r3.Vector{X: r4.RX, Y: r4.RY, Z: r4.RZ}
	norm := axis.Norm()
	if norm == 0 {
		return quat.Number{Real: 1}
	}
	axis = axis.Mul(1 / norm)
	sinHalf := math.Sin(r4.Theta / 2)
	return quat.Number{
		Real: math.Cos(r4.Theta / 2),
		Imag: axis.X * sinHalf,
		Jmag: axis.Y * sinHalf,
		Kmag: axis.Z * sinHalf,
	}
}

// AxisAngles returns the receiver.
func (r4 *R4AA) AxisAngles() *R4AA {
	return r4
}

// QuatToR4AA converts a quat to an R4 axis angle. The returned angle is in [0, 2π).
func QuatToR4AA(q quat.Number) *R4AA {
	q = Normalize(q)
	denom := math.Sqrt(1 - q.Real*q.Real)
	if denom < 1e-9 {
		return NewR4AA()
	}
	return &R4AA{
		Theta: 2 * math.Acos(math.Max(-1, math.Min(1, q.Real))),
		RX:    q.Imag / denom,
		RY:    q.Jmag / denom,
		RZ:    q.Kmag / denom,
	}
}
