package inject

import (
	"context"

	"github.com/golang/geo/r2"

	"go.viam.com/arlens/spatialmath"
)

// Raycaster is an injected raycaster. Without RaycastFunc every ray misses.
type Raycaster struct {
	RaycastFunc func(ctx context.Context, screenPoint r2.Point) ([]spatialmath.Pose, error)
}

// Raycast calls the injected Raycast or misses.
func (r *Raycaster) Raycast(ctx context.Context, screenPoint r2.Point) ([]spatialmath.Pose, error) {
	if r.RaycastFunc == nil {
		return nil, nil
	}
	return r.RaycastFunc(ctx, screenPoint)
}
