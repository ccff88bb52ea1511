package pipeline

import (
	"time"

	"github.com/montanaflynn/stats"

	"go.viam.com/arlens/logging"
	"go.viam.com/arlens/utils"
)

type loggerSink struct {
	logger logging.Logger
}

// NewLoggerSink returns a FrameLogger that writes each record as a debug log.
func NewLoggerSink(logger logging.Logger) FrameLogger {
	return &loggerSink{logger: logger}
}

func (s *loggerSink) LogFrame(r *FrameRecord) {
	s.logger.Debugw("frame processed",
		"frame", r.FrameNumber,
		"model_time", r.ModelProcessingTime,
		"projection_time", r.ProjectionTime,
		"raycasts_total", r.RaycastsTotal,
		"raycasts_hit", r.RaycastsHit,
		"detections", len(r.Detections),
		"projected", len(r.Projected),
	)
	for _, det := range r.Detections {
		s.logger.Debugw("detection", "frame", r.FrameNumber, "label", det.Label, "confidence", det.Confidence,
			"rect", det.Rect)
	}
	for _, pd := range r.Projected {
		s.logger.Debugw("projected detection", "frame", r.FrameNumber, "label", pd.Label,
			"point", pd.Pose.Point(), "estimated", pd.Estimated)
	}
}

// TimingSummary summarizes a window of stage durations.
type TimingSummary struct {
	Mean time.Duration
	P95  time.Duration
}

// TimingStats keeps the stage timings of the most recent frames.
type TimingStats struct {
	model      *utils.RollingWindow
	projection *utils.RollingWindow
	hitRate    *utils.RollingWindow
}

// NewTimingStats returns a FrameLogger that remembers the last window frames.
func NewTimingStats(window int) *TimingStats {
	return &TimingStats{
		model:      utils.NewRollingWindow(window),
		projection: utils.NewRollingWindow(window),
		hitRate:    utils.NewRollingWindow(window),
	}
}

// LogFrame records r.
func (ts *TimingStats) LogFrame(r *FrameRecord) {
	ts.model.Add(float64(r.ModelProcessingTime))
	ts.projection.Add(float64(r.ProjectionTime))
	if r.RaycastsTotal > 0 {
		ts.hitRate.Add(float64(r.RaycastsHit) / float64(r.RaycastsTotal))
	}
}

// Model summarizes model processing times. It errors when no frame was recorded.
func (ts *TimingStats) Model() (TimingSummary, error) {
	return summarize(ts.model.Values())
}

// Projection summarizes projection times. It errors when no frame was recorded.
func (ts *TimingStats) Projection() (TimingSummary, error) {
	return summarize(ts.projection.Values())
}

// HitRate is the mean fraction of raycasts that hit, over frames that cast any.
func (ts *TimingStats) HitRate() float64 {
	return ts.hitRate.Average()
}

func summarize(values []float64) (TimingSummary, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return TimingSummary{}, err
	}
	p95, err := stats.PercentileNearestRank(values, 95)
	if err != nil {
		return TimingSummary{}, err
	}
	return TimingSummary{Mean: time.Duration(mean), P95: time.Duration(p95)}, nil
}
