package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// LookRotation returns the orientation whose local +Z axis points along forward and whose local
// +Y axis lies in the plane of forward and up. A zero forward vector yields no rotation. When
// forward is parallel to up, local +X is taken as world +X.
func LookRotation(forward, up r3.Vector) Orientation {
	if forward.Norm() == 0 {
		return NewZeroOrientation()
	}
	f := forward.Normalize()
	x := up.Cross(f)
	if x.Norm() < 1e-9 {
		x = r3.Vector{X: 1}
	}
	x = x.Normalize()
	y := f.Cross(x)
	return NewQuaternionOrientation(basisToQuat(x, y, f))
}

// basisToQuat converts the rotation matrix with columns x, y, z into a quaternion.
func basisToQuat(x, y, z r3.Vector) quat.Number {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		return quat.Number{
			Real: 0.25 / s,
			Imag: (m21 - m12) * s,
			Jmag: (m02 - m20) * s,
			Kmag: (m10 - m01) * s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		return quat.Number{
			Real: (m21 - m12) / s,
			Imag: 0.25 * s,
			Jmag: (m01 + m10) / s,
			Kmag: (m02 + m20) / s,
		}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		return quat.Number{
			Real: (m02 - m20) / s,
			Imag: (m01 + m10) / s,
			Jmag: 0.25 * s,
			Kmag: (m12 + m21) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		return quat.Number{
			Real: (m10 - m01) / s,
			Imag: (m02 + m20) / s,
			Jmag: (m12 + m21) / s,
			Kmag: 0.25 * s,
		}
	}
}
