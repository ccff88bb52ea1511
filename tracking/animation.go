package tracking

import (
	"time"

	"go.viam.com/arlens/spatialmath"
	"go.viam.com/arlens/utils"
)

// Scheduler runs per-tick callbacks on the frame-update goroutine until they return false.
type Scheduler interface {
	OnTick(f func(dt time.Duration) bool)
}

// EaseInOut is the smoothstep curve 3t²-2t³ with t clamped to [0, 1].
func EaseInOut(t float64) float64 {
	t = utils.Clamp01(t)
	return t * t * (3 - 2*t)
}

// animatePose moves anchor from its current pose to target over duration on the scheduler.
// Animations are never cancelled; if several run on one anchor each writes every tick.
func animatePose(scheduler Scheduler, anchor *Anchor, target spatialmath.Pose, duration time.Duration) {
	if duration <= 0 {
		anchor.SetPose(target)
		return
	}
	start := anchor.Pose()
	anchor.SetPose(spatialmath.Interpolate(start, target, EaseInOut(0)))

	var progress float64
	scheduler.OnTick(func(dt time.Duration) bool {
		if anchor.Closed() {
			return false
		}
		progress += float64(dt) / float64(duration)
		anchor.SetPose(spatialmath.Interpolate(start, target, EaseInOut(progress)))
		return progress < 1
	})
}
