package tracking

import (
	"time"

	"github.com/pkg/errors"
)

// Config controls how detections are associated across frames and how long unseen tracks live.
type Config struct {
	// DistanceThreshold is the largest world distance (meters) at which a detection merges into
	// an existing track. Distances between detections with the same label are halved first.
	DistanceThreshold float64 `json:"distance_threshold"`
	// ExpirationTime is how long a track survives without being seen.
	ExpirationTime time.Duration `json:"expiration_time"`
	// AnimationDuration is how long a matched track takes to glide to its new pose. Zero snaps.
	AnimationDuration time.Duration `json:"animation_duration"`
}

// DefaultConfig returns the tracker defaults.
func DefaultConfig() Config {
	return Config{
		DistanceThreshold: 0.5,
		ExpirationTime:    5 * time.Second,
		AnimationDuration: time.Second,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.DistanceThreshold < 0 {
		return errors.Errorf("%s: distance_threshold cannot be negative, got %v", path, cfg.DistanceThreshold)
	}
	if cfg.ExpirationTime < 0 {
		return errors.Errorf("%s: expiration_time cannot be negative, got %v", path, cfg.ExpirationTime)
	}
	if cfg.AnimationDuration < 0 {
		return errors.Errorf("%s: animation_duration cannot be negative, got %v", path, cfg.AnimationDuration)
	}
	return nil
}
