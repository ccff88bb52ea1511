package inject

import (
	"context"

	"go.viam.com/arlens/rimage/transform"
	"go.viam.com/arlens/spatialmath"
)

// CameraProvider is an injected camera provider. Without injected functions the camera sits at
// the origin with no rotation and has no intrinsics.
type CameraProvider struct {
	CameraPoseFunc func(ctx context.Context) (spatialmath.Pose, error)
	IntrinsicsFunc func() *transform.PinholeCameraIntrinsics
}

// CameraPose calls the injected CameraPose or returns the zero pose.
func (c *CameraProvider) CameraPose(ctx context.Context) (spatialmath.Pose, error) {
	if c.CameraPoseFunc == nil {
		return spatialmath.NewZeroPose(), nil
	}
	return c.CameraPoseFunc(ctx)
}

// Intrinsics calls the injected Intrinsics or returns nil.
func (c *CameraProvider) Intrinsics() *transform.PinholeCameraIntrinsics {
	if c.IntrinsicsFunc == nil {
		return nil
	}
	return c.IntrinsicsFunc()
}
