package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// slerpLinearThreshold is the dot product above which Slerp falls back to normalized lerp.
const slerpLinearThreshold = 0.9995

// Slerp spherically interpolates from a to b. t is clamped to [0, 1]; t >= 1 returns b exactly,
// as does a == b. The shorter arc is taken.
func Slerp(a, b quat.Number, t float64) quat.Number {
	if t <= 0 {
		return a
	}
	if t >= 1 || a == b {
		return b
	}
	dot := quatDot(a, b)
	if dot < 0 {
		b = quat.Scale(-1, b)
		dot = -dot
	}
	if dot > slerpLinearThreshold {
		return Normalize(quat.Add(a, quat.Scale(t, quat.Sub(b, a))))
	}
	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta
	return quat.Add(quat.Scale(wa, a), quat.Scale(wb, b))
}

// Nlerp linearly interpolates from a to b along the shorter arc and normalizes the result.
// t is clamped to [0, 1].
func Nlerp(a, b quat.Number, t float64) quat.Number {
	t = math.Max(0, math.Min(1, t))
	if quatDot(a, b) < 0 {
		b = quat.Scale(-1, b)
	}
	return Normalize(quat.Add(quat.Scale(1-t, a), quat.Scale(t, b)))
}

// Interpolate moves from p1 toward p2 by the fraction by, clamped to [0, 1]. The position is
// lerped and the orientation nlerped.
func Interpolate(p1, p2 Pose, by float64) Pose {
	by = math.Max(0, math.Min(1, by))
	pt := p1.Point().Add(p2.Point().Sub(p1.Point()).Mul(by))
	return NewPose(pt, NewQuaternionOrientation(Nlerp(p1.Orientation().Quaternion(), p2.Orientation().Quaternion(), by)))
}

func quatDot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}
