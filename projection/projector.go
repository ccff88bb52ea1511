// Package projection turns 2D detections into world poses by raycasting sample points of their
// rectangles against the tracked environment.
package projection

import (
	"context"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/arlens/logging"
	"go.viam.com/arlens/rimage/transform"
	"go.viam.com/arlens/spatialmath"
	"go.viam.com/arlens/vision/objectdetection"
)

// Raycaster casts a ray from a screen point into the world. Hits are ordered nearest first; an
// empty result is a miss.
type Raycaster interface {
	Raycast(ctx context.Context, screenPoint r2.Point) ([]spatialmath.Pose, error)
}

// CameraProvider exposes the device camera. The intrinsics' Width and Height are the screen size.
type CameraProvider interface {
	CameraPose(ctx context.Context) (spatialmath.Pose, error)
	Intrinsics() *transform.PinholeCameraIntrinsics
}

// WorldUp is the world's up direction.
var WorldUp = r3.Vector{Y: 1}

// ProjectedDetection is a detection placed in the world.
type ProjectedDetection struct {
	Pose       spatialmath.Pose
	Label      string
	Confidence float64
	Payload    any
	// Estimated is set when no raycast hit and the pose was placed in front of the camera.
	Estimated bool
}

// Stats counts raycasts across the detections of a frame.
type Stats struct {
	RaycastsTotal int
	RaycastsHit   int
}

// Projector places detections in the world.
type Projector struct {
	raycaster Raycaster
	camera    CameraProvider
	cfg       Config
	logger    logging.Logger
}

// NewProjector returns a Projector after validating its collaborators and config.
func NewProjector(raycaster Raycaster, camera CameraProvider, cfg Config, logger logging.Logger) (*Projector, error) {
	if raycaster == nil {
		return nil, errors.New("projector needs a raycaster")
	}
	if camera == nil {
		return nil, errors.New("projector needs a camera provider")
	}
	if err := cfg.Validate("projection"); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewBlankLogger("projection")
	}
	return &Projector{raycaster: raycaster, camera: camera, cfg: cfg, logger: logger}, nil
}

// Project places det in the world. It returns nil without error when nothing was hit and
// estimation is disabled. stats may be nil.
func (p *Projector) Project(ctx context.Context, det objectdetection.Detection, stats *Stats) (*ProjectedDetection, error) {
	intrinsics := p.camera.Intrinsics()
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	screenRect := det.Rect.Denormalize(float64(intrinsics.Width), float64(intrinsics.Height))

	poses, err := p.raycastSamples(ctx, screenRect, stats)
	if err != nil {
		return nil, err
	}

	var pose spatialmath.Pose
	estimated := false
	switch {
	case len(poses) > 0:
		pose, err = spatialmath.AveragePoses(poses)
		if err != nil {
			return nil, err
		}
	case p.cfg.AllowEstimatedPositions:
		pose, err = p.estimate(ctx, intrinsics, screenRect.Center())
		if err != nil {
			return nil, err
		}
		estimated = true
	default:
		return nil, nil
	}

	camPose, err := p.camera.CameraPose(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting camera pose")
	}
	return &ProjectedDetection{
		Pose:       spatialmath.NewPose(pose.Point(), FaceCamera(pose.Point(), camPose.Point())),
		Label:      det.Label,
		Confidence: det.Confidence,
		Payload:    det.Payload,
		Estimated:  estimated,
	}, nil
}

// raycastSamples returns the nearest hit of every sample point that hit something.
func (p *Projector) raycastSamples(ctx context.Context, screenRect r2.Rect, stats *Stats) ([]spatialmath.Pose, error) {
	points := SamplePoints(screenRect, p.cfg.CornerPercentage, p.cfg.IntermediateSteps)
	hits := make([]spatialmath.Pose, 0, len(points))
	for _, pt := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := p.raycaster.Raycast(ctx, pt)
		if err != nil {
			p.logger.Debugw("raycast failed, counting as a miss", "x", pt.X, "y", pt.Y, "error", err)
			continue
		}
		if len(results) > 0 && results[0] != nil {
			hits = append(hits, results[0])
		}
	}
	if stats != nil {
		stats.RaycastsTotal += len(points)
		stats.RaycastsHit += len(hits)
	}
	return hits, nil
}

// estimate unprojects a screen point at the configured distance in front of the camera.
func (p *Projector) estimate(
	ctx context.Context,
	intrinsics *transform.PinholeCameraIntrinsics,
	screenPoint r2.Point,
) (spatialmath.Pose, error) {
	camPose, err := p.camera.CameraPose(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting camera pose")
	}
	local := intrinsics.ScreenPointToCamera(screenPoint, p.cfg.EstimatedPositionDistance)
	world := spatialmath.Compose(camPose, spatialmath.NewPoseFromPoint(local))
	return spatialmath.NewPoseFromPoint(world.Point()), nil
}

// FaceCamera returns the orientation given to a detection at position so it faces the camera.
// The direction to the camera is flattened onto the ground plane and mirrored in x and z before
// the look rotation, so local +Z points away from the camera. A detection directly above or
// below the camera gets no rotation.
func FaceCamera(position, cameraPosition r3.Vector) spatialmath.Orientation {
	dir := cameraPosition.Sub(position)
	dir.Y = 0
	dir.X = -dir.X
	dir.Z = -dir.Z
	if dir.Norm() == 0 {
		return spatialmath.NewZeroOrientation()
	}
	return spatialmath.LookRotation(dir.Normalize(), WorldUp)
}
