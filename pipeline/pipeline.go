// Package pipeline runs the detection loop: it pulls camera frames, runs the model on them,
// places the detections in the world and keeps them tracked across frames.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/arlens/frameloop"
	"go.viam.com/arlens/logging"
	"go.viam.com/arlens/ml"
	"go.viam.com/arlens/projection"
	"go.viam.com/arlens/rimage"
	"go.viam.com/arlens/tracking"
	"go.viam.com/arlens/utils"
	"go.viam.com/arlens/vision/objectdetection"
)

// FrameSource yields camera frames. A nil frame without error means none is ready yet.
type FrameSource interface {
	NextFrame(ctx context.Context) (*rimage.PixelBuffer, error)
}

// InferenceEngine runs the model.
type InferenceEngine interface {
	Infer(ctx context.Context, inputs ml.Tensors) (ml.Tensors, error)
}

// PreProcessor turns a model-sized frame into input tensors.
type PreProcessor interface {
	RequiredFrameSize() (width, height int)
	PreProcess(buf *rimage.PixelBuffer) (ml.Tensors, error)
}

// PostProcessor turns output tensors into detections.
type PostProcessor interface {
	RequiredOutputs() []string
	PostProcess(outputs ml.Tensors) ([]objectdetection.Detection, error)
}

// Dependencies are the collaborators a Pipeline needs. Everything but FrameLoggers and Clock is
// required.
type Dependencies struct {
	Source        FrameSource
	Engine        InferenceEngine
	PreProcessor  PreProcessor
	PostProcessor PostProcessor
	Raycaster     projection.Raycaster
	Camera        projection.CameraProvider
	Visuals       tracking.VisualFactory
	FrameLoggers  []FrameLogger
	Clock         clock.Clock
}

func (deps *Dependencies) validate() error {
	required := []struct {
		name    string
		missing bool
	}{
		{"frame source", deps.Source == nil},
		{"inference engine", deps.Engine == nil},
		{"pre-processor", deps.PreProcessor == nil},
		{"post-processor", deps.PostProcessor == nil},
		{"raycaster", deps.Raycaster == nil},
		{"camera provider", deps.Camera == nil},
		{"visual factory", deps.Visuals == nil},
	}
	for _, dep := range required {
		if dep.missing {
			return utils.NewMissingDependencyError(dep.name)
		}
	}
	return nil
}

// Pipeline turns frames into tracked world detections.
type Pipeline struct {
	cfg       Config
	deps      Dependencies
	clock     clock.Clock
	logger    logging.Logger
	loop      *frameloop.Loop
	projector *projection.Projector
	tracker   *tracking.Tracker
	filter    objectdetection.Postprocessor

	frameNumber atomic.Int64
	running     atomic.Bool

	mu      sync.Mutex
	workers utils.StoppableWorkers
}

// New builds a pipeline and starts its frame-update loop. The detection loop itself only runs
// once Start is called.
func New(deps Dependencies, cfg Config, logger logging.Logger) (*Pipeline, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate("pipeline"); err != nil {
		return nil, err
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if logger == nil {
		logger = logging.NewBlankLogger("pipeline")
	}

	projector, err := projection.NewProjector(deps.Raycaster, deps.Camera, cfg.Projection, logger.Sublogger("projection"))
	if err != nil {
		return nil, err
	}
	loop := frameloop.New(deps.Clock, cfg.TickInterval, logger.Sublogger("frameloop"))
	trackingCfg := cfg.Tracking
	trackingCfg.AnimationDuration = cfg.ModelExecutionInterval
	tracker, err := tracking.NewTracker(deps.Visuals, loop, deps.Clock, trackingCfg, logger.Sublogger("tracking"))
	if err != nil {
		loop.Close()
		return nil, err
	}

	var filters []objectdetection.Postprocessor
	if cfg.MinConfidence > 0 {
		filters = append(filters, objectdetection.NewScoreFilter(cfg.MinConfidence))
	}
	if cfg.MinArea > 0 {
		filters = append(filters, objectdetection.NewAreaFilter(cfg.MinArea))
	}
	if len(cfg.Labels) > 0 {
		filters = append(filters, objectdetection.NewLabelFilter(cfg.Labels...))
	}
	return &Pipeline{
		cfg:       cfg,
		deps:      deps,
		clock:     deps.Clock,
		logger:    logger,
		loop:      loop,
		projector: projector,
		tracker:   tracker,
		filter:    objectdetection.Chain(filters...),
	}, nil
}

// Tracker returns the pipeline's tracker, for registering observers.
func (p *Pipeline) Tracker() *tracking.Tracker {
	return p.tracker
}

// Loop returns the frame-update loop that owns world state.
func (p *Pipeline) Loop() *frameloop.Loop {
	return p.loop
}

// ProcessFrame runs the model on a frame that already has the pre-processor's required size.
// Every input and output tensor is released before it returns.
func (p *Pipeline) ProcessFrame(ctx context.Context, buf *rimage.PixelBuffer) (dets []objectdetection.Detection, err error) {
	inputs, err := p.deps.PreProcessor.PreProcess(buf)
	if err != nil {
		return nil, errors.Wrap(err, "pre-processing frame")
	}
	defer func() {
		err = multierr.Combine(err, inputs.Release())
	}()

	outputs, err := p.deps.Engine.Infer(ctx, inputs)
	// engines may hand back partial outputs alongside an error
	defer func() {
		err = multierr.Combine(err, outputs.Release())
	}()
	if err != nil {
		return nil, errors.Wrap(err, "running inference")
	}

	required, err := outputs.Lookup(p.deps.PostProcessor.RequiredOutputs()...)
	if err != nil {
		return nil, err
	}
	dets, err = p.deps.PostProcessor.PostProcess(required)
	if err != nil {
		return nil, errors.Wrap(err, "post-processing outputs")
	}
	return dets, nil
}

// Step runs one full iteration: acquire a frame, detect, project and track. It returns a nil
// record when the source had no frame.
func (p *Pipeline) Step(ctx context.Context) (*FrameRecord, error) {
	frame, err := p.deps.Source.NextFrame(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "acquiring frame")
	}
	if frame == nil {
		return nil, nil
	}
	record := &FrameRecord{FrameNumber: p.frameNumber.Inc()}

	start := p.clock.Now()
	width, height := p.deps.PreProcessor.RequiredFrameSize()
	transformed, err := rimage.TransformFrame(frame, width, height, p.cfg.DoCrop)
	if err != nil {
		return nil, errors.Wrap(err, "transforming frame")
	}
	dets, err := p.ProcessFrame(ctx, transformed.Buffer)
	if err != nil {
		return nil, err
	}
	dets = p.filter(dets)
	record.ModelProcessingTime = p.clock.Since(start)

	start = p.clock.Now()
	var stats projection.Stats
	err = p.loop.Do(ctx, func() error {
		intrinsics := p.deps.Camera.Intrinsics()
		if err := intrinsics.CheckValid(); err != nil {
			return err
		}
		record.Detections = make([]objectdetection.Detection, 0, len(dets))
		record.Projected = make([]*projection.ProjectedDetection, 0, len(dets))
		for _, det := range dets {
			det.Rect = det.Rect.AdjustAspect(transformed.OriginalAspect, transformed.ProcessedAspect, intrinsics.Aspect())
			record.Detections = append(record.Detections, det)
			pd, err := p.projector.Project(ctx, det, &stats)
			if err != nil {
				return errors.Wrapf(err, "projecting %q", det.Label)
			}
			if pd != nil {
				record.Projected = append(record.Projected, pd)
			}
		}
		return p.tracker.UpdateSession(record.Projected)
	})
	if err != nil {
		return nil, err
	}
	record.ProjectionTime = p.clock.Since(start)
	record.RaycastsTotal = stats.RaycastsTotal
	record.RaycastsHit = stats.RaycastsHit

	for _, sink := range p.deps.FrameLoggers {
		sink.LogFrame(record)
	}
	return record, nil
}

// Start runs Step in the background, at most once per model execution interval, until Stop or
// until ctx is done. Failed frames are logged and skipped.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.workers != nil {
		return errors.New("pipeline is already running")
	}
	p.running.Store(true)
	p.workers = utils.NewStoppableWorkersWithContext(ctx, p.run)
	p.logger.Infow("pipeline started", "interval", p.cfg.ModelExecutionInterval)
	return nil
}

func (p *Pipeline) run(ctx context.Context) {
	// a frame in flight finishes even if the pipeline is stopped meanwhile
	stepCtx := context.WithoutCancel(ctx)
	defer p.running.Store(false)
	for p.running.Load() {
		timer := p.clock.Timer(p.cfg.ModelExecutionInterval)
		if _, err := p.Step(stepCtx); err != nil {
			p.logger.Warnw("skipping frame", "error", err)
		}
		if !goutils.SelectContextOrWaitChan(ctx, timer.C) {
			timer.Stop()
			return
		}
	}
}

// Running reports whether the detection loop is active.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Stop ends the detection loop after the current frame and waits for it to exit.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	workers := p.workers
	p.workers = nil
	p.mu.Unlock()
	if workers == nil {
		return
	}
	p.running.Store(false)
	workers.Stop()
	p.logger.Info("pipeline stopped")
}

// Close stops the pipeline, destroys every track and shuts down the frame-update loop.
func (p *Pipeline) Close(ctx context.Context) error {
	p.Stop()
	err := p.loop.Do(ctx, p.tracker.Close)
	p.loop.Close()
	return err
}

// FrameLogger receives a record of every completed frame.
type FrameLogger interface {
	LogFrame(record *FrameRecord)
}

// FrameRecord describes one completed frame.
type FrameRecord struct {
	FrameNumber         int64
	ModelProcessingTime time.Duration
	ProjectionTime      time.Duration
	RaycastsTotal       int
	RaycastsHit         int
	// Detections are the filtered model detections with rects adjusted to the screen aspect.
	Detections []objectdetection.Detection
	// Projected holds the detections that were placed in the world, in detection order.
	Projected []*projection.ProjectedDetection
}
