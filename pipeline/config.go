package pipeline

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/arlens/frameloop"
	"go.viam.com/arlens/projection"
	"go.viam.com/arlens/tracking"
)

// Config configures a Pipeline.
type Config struct {
	// ModelExecutionInterval is the minimum time between frame starts. It is also how long
	// matched tracks take to glide to their new poses.
	ModelExecutionInterval time.Duration `json:"model_execution_interval"`
	// DoCrop center-crops frames to the model aspect ratio instead of stretching them.
	DoCrop bool `json:"do_crop"`
	// MinConfidence drops detections scoring below it. Zero keeps everything.
	MinConfidence float64 `json:"min_confidence"`
	// MinArea drops detections whose normalized area is below it. Zero keeps everything.
	MinArea float64 `json:"min_area"`
	// Labels keeps only detections with one of these labels. Empty keeps everything.
	Labels []string `json:"labels"`
	// TickInterval is the frame-update loop's tick, which drives animations.
	TickInterval time.Duration `json:"tick_interval"`

	Projection projection.Config `json:"projection"`
	Tracking   tracking.Config   `json:"tracking"`
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	trackingCfg := tracking.DefaultConfig()
	trackingCfg.AnimationDuration = time.Second
	return Config{
		ModelExecutionInterval: time.Second,
		DoCrop:                 true,
		TickInterval:           frameloop.DefaultTickInterval,
		Projection:             projection.DefaultConfig(),
		Tracking:               trackingCfg,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.ModelExecutionInterval <= 0 {
		return errors.Errorf("%s: model_execution_interval must be positive, got %v", path, cfg.ModelExecutionInterval)
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return errors.Errorf("%s: min_confidence must be within [0, 1], got %v", path, cfg.MinConfidence)
	}
	if cfg.MinArea < 0 || cfg.MinArea > 1 {
		return errors.Errorf("%s: min_area must be within [0, 1], got %v", path, cfg.MinArea)
	}
	if cfg.TickInterval <= 0 {
		return errors.Errorf("%s: tick_interval must be positive, got %v", path, cfg.TickInterval)
	}
	if err := cfg.Projection.Validate(path + ".projection"); err != nil {
		return err
	}
	return cfg.Tracking.Validate(path + ".tracking")
}

// ConfigFromAttributes decodes attrs over the defaults and validates the result. Durations may
// be given as strings such as "500ms".
func ConfigFromAttributes(attrs map[string]interface{}) (*Config, error) {
	cfg := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &cfg,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, errors.Wrap(err, "decoding pipeline config")
	}
	if err := cfg.Validate("pipeline"); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFromFile reads a JSON config file with ConfigFromAttributes.
func ConfigFromFile(path string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config file")
	}
	var attrs map[string]interface{}
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config file %q", path)
	}
	return ConfigFromAttributes(attrs)
}
