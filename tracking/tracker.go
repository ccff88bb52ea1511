// Package tracking keeps projected detections stable across frames: it merges nearby detections
// into existing tracks, glides their anchors to new poses and expires tracks that go unseen.
package tracking

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/arlens/logging"
	"go.viam.com/arlens/projection"
)

// TrackedDetection is a detection that persists across frames.
type TrackedDetection struct {
	ID        uuid.UUID
	Anchor    *Anchor
	Visual    Visual
	Detection *projection.ProjectedDetection
	LastSeen  time.Time
}

// Observer is notified of track changes with a snapshot of the track.
type Observer func(TrackedDetection)

type observerEntry struct {
	id int
	fn Observer
}

type eventKind int

const (
	eventAdded eventKind = iota
	eventUpdated
	eventRemoved
)

type event struct {
	kind  eventKind
	track TrackedDetection
}

// Tracker associates detections with tracks. UpdateSession and Close are expected to run on the
// frame-update goroutine; Tracks and the observer registration methods are safe anywhere.
type Tracker struct {
	cfg       Config
	factory   VisualFactory
	scheduler Scheduler
	clock     clock.Clock
	logger    logging.Logger

	mu     sync.Mutex
	tracks []*TrackedDetection

	obsMu     sync.Mutex
	nextObsID int
	observers [3][]observerEntry
}

// NewTracker returns a tracker with no tracks. A nil clk uses the wall clock.
func NewTracker(
	factory VisualFactory,
	scheduler Scheduler,
	clk clock.Clock,
	cfg Config,
	logger logging.Logger,
) (*Tracker, error) {
	if factory == nil {
		return nil, errors.New("tracker needs a visual factory")
	}
	if scheduler == nil {
		return nil, errors.New("tracker needs a scheduler")
	}
	if err := cfg.Validate("tracking"); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.NewBlankLogger("tracking")
	}
	return &Tracker{cfg: cfg, factory: factory, scheduler: scheduler, clock: clk, logger: logger}, nil
}

// UpdateSession folds one frame of detections into the tracks. Each detection merges into the
// first track within range, in track order, or starts a new track. Tracks unseen for at least
// the expiration time are then removed. Nil detections are ignored.
func (t *Tracker) UpdateSession(dets []*projection.ProjectedDetection) error {
	dets = lo.Filter(dets, func(det *projection.ProjectedDetection, _ int) bool {
		return det != nil
	})

	var (
		events []event
		errs   error
	)
	t.mu.Lock()
	now := t.clock.Now()
	for _, det := range dets {
		if track := t.findMatch(det); track != nil {
			t.updateTrack(track, det, now, true)
			events = append(events, event{eventUpdated, *track})
			continue
		}
		track, err := t.addTrack(det, now)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		events = append(events, event{eventAdded, *track})
	}

	kept := t.tracks[:0]
	for _, track := range t.tracks {
		if now.Sub(track.LastSeen) < t.cfg.ExpirationTime {
			kept = append(kept, track)
			continue
		}
		if err := track.Anchor.Close(); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "closing visual of track %s", track.ID))
		}
		events = append(events, event{eventRemoved, *track})
	}
	clear(t.tracks[len(kept):])
	t.tracks = kept
	t.mu.Unlock()

	t.emit(events)
	return errs
}

func (t *Tracker) findMatch(det *projection.ProjectedDetection) *TrackedDetection {
	pos := det.Pose.Point()
	for _, track := range t.tracks {
		dist := track.Detection.Pose.Point().Distance(pos)
		if track.Detection.Label == det.Label {
			dist /= 2
		}
		if dist <= t.cfg.DistanceThreshold {
			return track
		}
	}
	return nil
}

func (t *Tracker) addTrack(det *projection.ProjectedDetection, now time.Time) (*TrackedDetection, error) {
	anchor := newAnchor()
	visual, err := t.factory.NewVisual(anchor, det)
	if err != nil {
		return nil, errors.Wrapf(err, "creating visual for %q", det.Label)
	}
	anchor.attach(visual)
	track := &TrackedDetection{ID: uuid.New(), Anchor: anchor, Visual: visual}
	t.updateTrack(track, det, now, false)
	t.tracks = append(t.tracks, track)
	t.logger.Debugw("track added", "id", track.ID, "label", det.Label)
	return track, nil
}

func (t *Tracker) updateTrack(track *TrackedDetection, det *projection.ProjectedDetection, now time.Time, animated bool) {
	if now.After(track.LastSeen) {
		track.LastSeen = now
	}
	track.Detection = det
	if receiver, ok := track.Visual.(DataReceiver); ok {
		receiver.UpdateData(det)
	}
	if animated {
		animatePose(t.scheduler, track.Anchor, det.Pose, t.cfg.AnimationDuration)
	} else {
		track.Anchor.SetPose(det.Pose)
	}
}

// Tracks returns a snapshot of the current tracks in association order.
func (t *Tracker) Tracks() []TrackedDetection {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TrackedDetection, 0, len(t.tracks))
	for _, track := range t.tracks {
		out = append(out, *track)
	}
	return out
}

// OnAdded registers f for new tracks. The returned func unregisters it.
func (t *Tracker) OnAdded(f Observer) func() {
	return t.register(eventAdded, f)
}

// OnUpdated registers f for tracks that absorbed a detection.
func (t *Tracker) OnUpdated(f Observer) func() {
	return t.register(eventUpdated, f)
}

// OnRemoved registers f for expired tracks and tracks destroyed by Close.
func (t *Tracker) OnRemoved(f Observer) func() {
	return t.register(eventRemoved, f)
}

func (t *Tracker) register(kind eventKind, f Observer) func() {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	id := t.nextObsID
	t.nextObsID++
	t.observers[kind] = append(t.observers[kind], observerEntry{id: id, fn: f})
	return func() {
		t.obsMu.Lock()
		defer t.obsMu.Unlock()
		t.observers[kind] = lo.Reject(t.observers[kind], func(e observerEntry, _ int) bool {
			return e.id == id
		})
	}
}

func (t *Tracker) emit(events []event) {
	for _, ev := range events {
		t.obsMu.Lock()
		observers := t.observers[ev.kind]
		t.obsMu.Unlock()
		for _, o := range observers {
			o.fn(ev.track)
		}
	}
}

// Close destroys every track, notifying removal observers.
func (t *Tracker) Close() error {
	t.mu.Lock()
	tracks := t.tracks
	t.tracks = nil
	t.mu.Unlock()

	var errs error
	events := make([]event, 0, len(tracks))
	for _, track := range tracks {
		errs = multierr.Append(errs, track.Anchor.Close())
		events = append(events, event{eventRemoved, *track})
	}
	t.emit(events)
	return errs
}
