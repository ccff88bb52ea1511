package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// AveragePoses returns the mean position of poses and an orientation averaged by incremental
// slerp: starting from the zero quaternion, the n-th orientation is folded in with weight 1/n.
// The result depends on the order of poses. Identical orientations average to themselves exactly.
func AveragePoses(poses []Pose) (Pose, error) {
	if len(poses) == 0 {
		return nil, errors.New("cannot average zero poses")
	}
	var sum r3.Vector
	avg := quat.Number{}
	for i, p := range poses {
		sum = sum.Add(p.Point())
		avg = Slerp(avg, p.Orientation().Quaternion(), 1/float64(i+1))
	}
	o := quaternion(avg)
	return NewPose(sum.Mul(1/float64(len(poses))), &o), nil
}
