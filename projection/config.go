package projection

import (
	"github.com/pkg/errors"
)

// Config controls how rectangles are sampled and what happens when nothing is hit.
type Config struct {
	// CornerPercentage shrinks the rect toward its center before sampling its perimeter.
	CornerPercentage float64 `json:"corner_percentage"`
	// IntermediateSteps is how many extra rings of samples lie between the center and the perimeter.
	IntermediateSteps int `json:"intermediate_steps"`
	// AllowEstimatedPositions places detections at EstimatedPositionDistance in front of the
	// camera when every raycast misses.
	AllowEstimatedPositions   bool    `json:"allow_estimated_positions"`
	EstimatedPositionDistance float64 `json:"estimated_position_distance"`
}

// DefaultConfig returns the sampling used by default: 25 samples with estimation at 1m.
func DefaultConfig() Config {
	return Config{
		CornerPercentage:          0.5,
		IntermediateSteps:         2,
		AllowEstimatedPositions:   true,
		EstimatedPositionDistance: 1,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.CornerPercentage < 0 || cfg.CornerPercentage > 1 {
		return errors.Errorf("%s: corner_percentage must be in [0, 1], got %v", path, cfg.CornerPercentage)
	}
	if cfg.IntermediateSteps < 0 {
		return errors.Errorf("%s: intermediate_steps cannot be negative, got %d", path, cfg.IntermediateSteps)
	}
	if cfg.AllowEstimatedPositions && cfg.EstimatedPositionDistance <= 0 {
		return errors.Errorf("%s: estimated_position_distance must be positive, got %v", path, cfg.EstimatedPositionDistance)
	}
	return nil
}

// NumSamples returns how many raycasts are made per detection.
func (cfg *Config) NumSamples() int {
	return 1 + len(perimeterDirections) + cfg.IntermediateSteps*len(perimeterDirections)
}
