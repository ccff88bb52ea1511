package inject

import (
	"context"

	"go.viam.com/arlens/ml"
	"go.viam.com/arlens/pipeline"
	"go.viam.com/arlens/rimage"
	"go.viam.com/arlens/vision/objectdetection"
)

// FrameSource is an injected frame source. Without NextFrameFunc no frame is ever ready.
type FrameSource struct {
	NextFrameFunc func(ctx context.Context) (*rimage.PixelBuffer, error)
}

// NextFrame calls the injected NextFrame or returns no frame.
func (s *FrameSource) NextFrame(ctx context.Context) (*rimage.PixelBuffer, error) {
	if s.NextFrameFunc == nil {
		return nil, nil
	}
	return s.NextFrameFunc(ctx)
}

// InferenceEngine is an injected inference engine.
type InferenceEngine struct {
	InferFunc func(ctx context.Context, inputs ml.Tensors) (ml.Tensors, error)
}

// Infer calls the injected Infer or returns no outputs.
func (e *InferenceEngine) Infer(ctx context.Context, inputs ml.Tensors) (ml.Tensors, error) {
	if e.InferFunc == nil {
		return ml.Tensors{}, nil
	}
	return e.InferFunc(ctx, inputs)
}

// PreProcessor is an injected pre-processor.
type PreProcessor struct {
	Width, Height  int
	PreProcessFunc func(buf *rimage.PixelBuffer) (ml.Tensors, error)
}

// RequiredFrameSize returns Width and Height.
func (p *PreProcessor) RequiredFrameSize() (int, int) {
	return p.Width, p.Height
}

// PreProcess calls the injected PreProcess or returns no inputs.
func (p *PreProcessor) PreProcess(buf *rimage.PixelBuffer) (ml.Tensors, error) {
	if p.PreProcessFunc == nil {
		return ml.Tensors{}, nil
	}
	return p.PreProcessFunc(buf)
}

// PostProcessor is an injected post-processor.
type PostProcessor struct {
	Outputs         []string
	PostProcessFunc func(outputs ml.Tensors) ([]objectdetection.Detection, error)
}

// RequiredOutputs returns Outputs.
func (p *PostProcessor) RequiredOutputs() []string {
	return p.Outputs
}

// PostProcess calls the injected PostProcess or detects nothing.
func (p *PostProcessor) PostProcess(outputs ml.Tensors) ([]objectdetection.Detection, error) {
	if p.PostProcessFunc == nil {
		return nil, nil
	}
	return p.PostProcessFunc(outputs)
}

// FrameLogger is an injected frame record sink.
type FrameLogger struct {
	LogFrameFunc func(record *pipeline.FrameRecord)
}

// LogFrame calls the injected LogFrame if set.
func (l *FrameLogger) LogFrame(record *pipeline.FrameRecord) {
	if l.LogFrameFunc == nil {
		return
	}
	l.LogFrameFunc(record)
}
