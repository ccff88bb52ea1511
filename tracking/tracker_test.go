package tracking_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/arlens/logging"
	"go.viam.com/arlens/projection"
	"go.viam.com/arlens/spatialmath"
	"go.viam.com/arlens/testutils/inject"
	"go.viam.com/arlens/tracking"
)

func detAt(label string, x, y, z float64) *projection.ProjectedDetection {
	return &projection.ProjectedDetection{
		Pose:       spatialmath.NewPoseFromPoint(r3.Vector{X: x, Y: y, Z: z}),
		Label:      label,
		Confidence: 0.9,
	}
}

type harness struct {
	tracker   *tracking.Tracker
	clock     *clock.Mock
	scheduler *inject.Scheduler
	visuals   []*inject.Visual
	closed    int
	updates   int
}

func newHarness(t *testing.T, cfg tracking.Config) *harness {
	t.Helper()
	h := &harness{clock: clock.NewMock(), scheduler: &inject.Scheduler{}}
	factory := &inject.VisualFactory{
		NewVisualFunc: func(anchor *tracking.Anchor, det *projection.ProjectedDetection) (tracking.Visual, error) {
			v := &inject.Visual{
				CloseFunc: func() error {
					h.closed++
					return nil
				},
				UpdateDataFunc: func(det *projection.ProjectedDetection) {
					h.updates++
				},
			}
			h.visuals = append(h.visuals, v)
			return v, nil
		},
	}
	tr, err := tracking.NewTracker(factory, h.scheduler, h.clock, cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	h.tracker = tr
	return h
}

func TestNewTrackerValidation(t *testing.T) {
	logger := logging.NewTestLogger(t)
	_, err := tracking.NewTracker(nil, &inject.Scheduler{}, nil, tracking.DefaultConfig(), logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = tracking.NewTracker(&inject.VisualFactory{}, nil, nil, tracking.DefaultConfig(), logger)
	test.That(t, err, test.ShouldNotBeNil)

	cfg := tracking.DefaultConfig()
	cfg.DistanceThreshold = -1
	_, err = tracking.NewTracker(&inject.VisualFactory{}, &inject.Scheduler{}, nil, cfg, logger)
	test.That(t, err.Error(), test.ShouldContainSubstring, "distance_threshold")
}

func TestAddTrack(t *testing.T) {
	h := newHarness(t, tracking.DefaultConfig())
	var added []tracking.TrackedDetection
	h.tracker.OnAdded(func(td tracking.TrackedDetection) { added = append(added, td) })

	det := detAt("cup", 0, 0, 1)
	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{nil, det, nil}), test.ShouldBeNil)

	tracks := h.tracker.Tracks()
	test.That(t, len(tracks), test.ShouldEqual, 1)
	test.That(t, tracks[0].Detection, test.ShouldEqual, det)
	test.That(t, tracks[0].LastSeen.Equal(h.clock.Now()), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostEqual(tracks[0].Anchor.Pose(), det.Pose), test.ShouldBeTrue)
	test.That(t, h.updates, test.ShouldEqual, 1)
	// new tracks are placed immediately
	test.That(t, h.scheduler.Pending(), test.ShouldEqual, 0)

	test.That(t, len(added), test.ShouldEqual, 1)
	test.That(t, added[0].ID, test.ShouldEqual, tracks[0].ID)
}

func TestMatchThreshold(t *testing.T) {
	cfg := tracking.DefaultConfig()
	cfg.DistanceThreshold = 0.5
	h := newHarness(t, cfg)
	var updated int
	h.tracker.OnUpdated(func(tracking.TrackedDetection) { updated++ })

	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1)}), test.ShouldBeNil)

	// same label halves the distance, 1.0 becomes 0.5 which is still within range
	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 1, 0, 1)}), test.ShouldBeNil)
	test.That(t, len(h.tracker.Tracks()), test.ShouldEqual, 1)
	test.That(t, updated, test.ShouldEqual, 1)

	// the stored detection moved to x=1, so a different label at 0.8 away does not match
	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("mug", 1.8, 0, 1)}), test.ShouldBeNil)
	test.That(t, len(h.tracker.Tracks()), test.ShouldEqual, 2)
	test.That(t, updated, test.ShouldEqual, 1)

	// a different label within the unhalved threshold matches
	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("bowl", 1.8, 0, 1.25)}), test.ShouldBeNil)
	tracks := h.tracker.Tracks()
	test.That(t, len(tracks), test.ShouldEqual, 2)
	test.That(t, tracks[1].Detection.Label, test.ShouldEqual, "bowl")
	test.That(t, updated, test.ShouldEqual, 2)
	test.That(t, h.updates, test.ShouldEqual, 4)
}

func TestFirstMatchWins(t *testing.T) {
	cfg := tracking.DefaultConfig()
	cfg.DistanceThreshold = 0.2
	h := newHarness(t, cfg)

	err := h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("a", 0, 0, 0), detAt("b", 0.3, 0, 0)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(h.tracker.Tracks()), test.ShouldEqual, 2)

	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("c", 0.15, 0, 0)}), test.ShouldBeNil)
	tracks := h.tracker.Tracks()
	test.That(t, len(tracks), test.ShouldEqual, 2)
	test.That(t, tracks[0].Detection.Label, test.ShouldEqual, "c")
	test.That(t, tracks[1].Detection.Label, test.ShouldEqual, "b")
}

func TestSameSessionMerge(t *testing.T) {
	h := newHarness(t, tracking.DefaultConfig())
	var order []string
	h.tracker.OnAdded(func(tracking.TrackedDetection) { order = append(order, "added") })
	h.tracker.OnUpdated(func(tracking.TrackedDetection) { order = append(order, "updated") })

	err := h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1), detAt("cup", 0.1, 0, 1)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(h.tracker.Tracks()), test.ShouldEqual, 1)
	test.That(t, order, test.ShouldResemble, []string{"added", "updated"})
}

func TestAnimation(t *testing.T) {
	cfg := tracking.DefaultConfig()
	cfg.AnimationDuration = time.Second
	h := newHarness(t, cfg)

	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1)}), test.ShouldBeNil)
	target := detAt("cup", 0.8, 0, 1)
	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{target}), test.ShouldBeNil)

	anchor := h.tracker.Tracks()[0].Anchor
	test.That(t, anchor.Pose().Point().X, test.ShouldAlmostEqual, 0)
	test.That(t, h.scheduler.Pending(), test.ShouldEqual, 1)

	h.scheduler.Step(250 * time.Millisecond)
	// smoothstep(0.25) = 0.15625
	test.That(t, anchor.Pose().Point().X, test.ShouldAlmostEqual, 0.8*0.15625)

	h.scheduler.Step(250 * time.Millisecond)
	test.That(t, anchor.Pose().Point().X, test.ShouldAlmostEqual, 0.4)

	h.scheduler.Step(500 * time.Millisecond)
	test.That(t, spatialmath.PoseAlmostEqual(anchor.Pose(), target.Pose), test.ShouldBeTrue)
	test.That(t, h.scheduler.Pending(), test.ShouldEqual, 0)
}

func TestOverlappingAnimationsLaterWins(t *testing.T) {
	cfg := tracking.DefaultConfig()
	cfg.AnimationDuration = time.Second
	h := newHarness(t, cfg)

	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1)}), test.ShouldBeNil)
	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 1, 0, 1)}), test.ShouldBeNil)
	anchor := h.tracker.Tracks()[0].Anchor

	h.scheduler.Step(500 * time.Millisecond)
	test.That(t, anchor.Pose().Point().X, test.ShouldAlmostEqual, 0.5)

	// a second match starts from the current pose while the first animation is still running
	target := detAt("cup", 1.2, 0, 1)
	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{target}), test.ShouldBeNil)
	test.That(t, h.scheduler.Pending(), test.ShouldEqual, 2)
	test.That(t, anchor.Pose().Point().X, test.ShouldAlmostEqual, 0.5)

	// both write each tick and the later one writes last
	h.scheduler.Step(250 * time.Millisecond)
	test.That(t, anchor.Pose().Point().X, test.ShouldAlmostEqual, 0.5+0.7*0.15625)
	test.That(t, h.scheduler.Pending(), test.ShouldEqual, 2)

	h.scheduler.Step(250 * time.Millisecond)
	test.That(t, anchor.Pose().Point().X, test.ShouldAlmostEqual, 0.85)
	test.That(t, h.scheduler.Pending(), test.ShouldEqual, 1)

	h.scheduler.Step(500 * time.Millisecond)
	test.That(t, spatialmath.PoseAlmostEqual(anchor.Pose(), target.Pose), test.ShouldBeTrue)
	test.That(t, h.scheduler.Pending(), test.ShouldEqual, 0)
}

func TestTrackerNilLogger(t *testing.T) {
	factory := &inject.VisualFactory{
		NewVisualFunc: func(anchor *tracking.Anchor, det *projection.ProjectedDetection) (tracking.Visual, error) {
			return &inject.Visual{}, nil
		},
	}
	tr, err := tracking.NewTracker(factory, &inject.Scheduler{}, clock.NewMock(), tracking.DefaultConfig(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1)}), test.ShouldBeNil)
	test.That(t, len(tr.Tracks()), test.ShouldEqual, 1)
	test.That(t, tr.Close(), test.ShouldBeNil)
}

func TestAnimationSnapsWithoutDuration(t *testing.T) {
	cfg := tracking.DefaultConfig()
	cfg.AnimationDuration = 0
	h := newHarness(t, cfg)

	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1)}), test.ShouldBeNil)
	target := detAt("cup", 0.8, 0, 1)
	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{target}), test.ShouldBeNil)
	test.That(t, h.scheduler.Pending(), test.ShouldEqual, 0)
	test.That(t, spatialmath.PoseAlmostEqual(h.tracker.Tracks()[0].Anchor.Pose(), target.Pose), test.ShouldBeTrue)
}

func TestExpiry(t *testing.T) {
	cfg := tracking.DefaultConfig()
	cfg.ExpirationTime = 5 * time.Second
	h := newHarness(t, cfg)
	var removed []tracking.TrackedDetection
	h.tracker.OnRemoved(func(td tracking.TrackedDetection) { removed = append(removed, td) })

	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1)}), test.ShouldBeNil)
	id := h.tracker.Tracks()[0].ID

	h.clock.Add(5*time.Second - time.Nanosecond)
	test.That(t, h.tracker.UpdateSession(nil), test.ShouldBeNil)
	test.That(t, len(h.tracker.Tracks()), test.ShouldEqual, 1)

	h.clock.Add(time.Nanosecond)
	test.That(t, h.tracker.UpdateSession(nil), test.ShouldBeNil)
	test.That(t, len(h.tracker.Tracks()), test.ShouldEqual, 0)
	test.That(t, h.closed, test.ShouldEqual, 1)
	test.That(t, len(removed), test.ShouldEqual, 1)
	test.That(t, removed[0].ID, test.ShouldEqual, id)
	test.That(t, removed[0].Anchor.Closed(), test.ShouldBeTrue)
}

func TestMatchRefreshesLastSeen(t *testing.T) {
	cfg := tracking.DefaultConfig()
	cfg.ExpirationTime = 5 * time.Second
	h := newHarness(t, cfg)

	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1)}), test.ShouldBeNil)
	h.clock.Add(4 * time.Second)
	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0.1, 0, 1)}), test.ShouldBeNil)
	h.clock.Add(4 * time.Second)
	test.That(t, h.tracker.UpdateSession(nil), test.ShouldBeNil)
	test.That(t, len(h.tracker.Tracks()), test.ShouldEqual, 1)
}

func TestAnimationStopsWhenAnchorClosed(t *testing.T) {
	cfg := tracking.DefaultConfig()
	cfg.ExpirationTime = time.Second
	h := newHarness(t, cfg)

	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1)}), test.ShouldBeNil)
	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0.5, 0, 1)}), test.ShouldBeNil)
	test.That(t, h.scheduler.Pending(), test.ShouldEqual, 1)

	h.clock.Add(time.Second)
	test.That(t, h.tracker.UpdateSession(nil), test.ShouldBeNil)
	h.scheduler.Step(100 * time.Millisecond)
	test.That(t, h.scheduler.Pending(), test.ShouldEqual, 0)
}

func TestUnregisterObserver(t *testing.T) {
	h := newHarness(t, tracking.DefaultConfig())
	var calls int
	unregister := h.tracker.OnAdded(func(tracking.TrackedDetection) { calls++ })

	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1)}), test.ShouldBeNil)
	unregister()
	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 5, 0, 1)}), test.ShouldBeNil)
	test.That(t, calls, test.ShouldEqual, 1)
	test.That(t, len(h.tracker.Tracks()), test.ShouldEqual, 2)
}

func TestVisualFactoryError(t *testing.T) {
	factory := &inject.VisualFactory{
		NewVisualFunc: func(*tracking.Anchor, *projection.ProjectedDetection) (tracking.Visual, error) {
			return nil, errors.New("no prefab")
		},
	}
	tr, err := tracking.NewTracker(factory, &inject.Scheduler{}, clock.NewMock(), tracking.DefaultConfig(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	err = tr.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1)})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no prefab")
	test.That(t, len(tr.Tracks()), test.ShouldEqual, 0)
}

func TestClose(t *testing.T) {
	h := newHarness(t, tracking.DefaultConfig())
	var removed int
	h.tracker.OnRemoved(func(tracking.TrackedDetection) { removed++ })

	err := h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1), detAt("cup", 3, 0, 1)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.tracker.Close(), test.ShouldBeNil)
	test.That(t, h.closed, test.ShouldEqual, 2)
	test.That(t, removed, test.ShouldEqual, 2)
	test.That(t, len(h.tracker.Tracks()), test.ShouldEqual, 0)
}

func TestEaseInOut(t *testing.T) {
	test.That(t, tracking.EaseInOut(-1), test.ShouldEqual, 0)
	test.That(t, tracking.EaseInOut(0), test.ShouldEqual, 0)
	test.That(t, tracking.EaseInOut(0.5), test.ShouldEqual, 0.5)
	test.That(t, tracking.EaseInOut(1), test.ShouldEqual, 1)
	test.That(t, tracking.EaseInOut(2), test.ShouldEqual, 1)
}

func TestSameLabelSplitsBeyondDoubleThreshold(t *testing.T) {
	cfg := tracking.DefaultConfig()
	cfg.DistanceThreshold = 0.5
	h := newHarness(t, cfg)

	err := h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 1), detAt("cup", 0, 0, 1.2)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(h.tracker.Tracks()), test.ShouldEqual, 1)

	test.That(t, h.tracker.UpdateSession([]*projection.ProjectedDetection{detAt("cup", 0, 0, 2.5)}), test.ShouldBeNil)
	test.That(t, len(h.tracker.Tracks()), test.ShouldEqual, 2)
}
