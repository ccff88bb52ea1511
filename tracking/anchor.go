package tracking

import (
	"sync"

	"go.viam.com/arlens/projection"
	"go.viam.com/arlens/spatialmath"
)

// Visual is whatever renders a track. It is a child of its anchor and is closed with it.
type Visual interface {
	Close() error
}

// DataReceiver is implemented by visuals that want the latest detection each time their track
// is created or matched.
type DataReceiver interface {
	UpdateData(det *projection.ProjectedDetection)
}

// VisualFactory creates the visual for a new track.
type VisualFactory interface {
	NewVisual(anchor *Anchor, det *projection.ProjectedDetection) (Visual, error)
}

// Anchor is a world pose that visuals attach to. Animations move it after creation.
type Anchor struct {
	mu     sync.Mutex
	pose   spatialmath.Pose
	visual Visual
	closed bool
}

func newAnchor() *Anchor {
	return &Anchor{pose: spatialmath.NewZeroPose()}
}

// Pose returns the anchor's current pose.
func (a *Anchor) Pose() spatialmath.Pose {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pose
}

// SetPose moves the anchor. It is a no-op once the anchor is closed.
func (a *Anchor) SetPose(p spatialmath.Pose) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pose = p
}

// Closed reports whether the anchor has been destroyed.
func (a *Anchor) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

func (a *Anchor) attach(v Visual) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.visual = v
}

// Close destroys the anchor along with its visual.
func (a *Anchor) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	v := a.visual
	a.visual = nil
	a.mu.Unlock()
	if v == nil {
		return nil
	}
	return v.Close()
}
