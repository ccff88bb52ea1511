// Package mlvision adapts SSD-style detection models to the pipeline's pre- and post-processing
// contracts.
package mlvision

import (
	"github.com/pkg/errors"

	"go.viam.com/arlens/ml"
	"go.viam.com/arlens/rimage"
)

// DefaultInputName is the input tensor name of most exported detection models.
const DefaultInputName = "image"

// ImagePreProcessor packs a model-sized RGB frame into a [1, H, W, 3] input tensor.
type ImagePreProcessor struct {
	Width     int
	Height    int
	InputName string
	// DataType is "uint8" or "float32". float32 inputs are scaled to [0, 1].
	DataType string
}

// NewImagePreProcessor checks the parameters and fills in defaults.
func NewImagePreProcessor(width, height int, dataType string) (*ImagePreProcessor, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid model input size (%d, %d)", width, height)
	}
	switch dataType {
	case "":
		dataType = "uint8"
	case "uint8", "float32":
	default:
		return nil, errors.Errorf("invalid input type %q. try uint8 or float32", dataType)
	}
	return &ImagePreProcessor{Width: width, Height: height, InputName: DefaultInputName, DataType: dataType}, nil
}

// RequiredFrameSize returns the model input size.
func (p *ImagePreProcessor) RequiredFrameSize() (int, int) {
	return p.Width, p.Height
}

// PreProcess builds the input tensors for buf, which must already have the required size.
func (p *ImagePreProcessor) PreProcess(buf *rimage.PixelBuffer) (ml.Tensors, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if buf.Width != p.Width || buf.Height != p.Height {
		return nil, errors.Errorf("frame is %dx%d but model expects %dx%d", buf.Width, buf.Height, p.Width, p.Height)
	}
	name := p.InputName
	if name == "" {
		name = DefaultInputName
	}
	shape := []int{1, p.Height, p.Width, rimage.RGBChannels}
	switch p.DataType {
	case "float32":
		data := make([]float32, len(buf.Data))
		for i, b := range buf.Data {
			data[i] = float32(b) / 255
		}
		return ml.Tensors{name: ml.NewTensorFromSlice(data, shape...)}, nil
	default:
		data := append([]uint8(nil), buf.Data...)
		return ml.Tensors{name: ml.NewTensorFromSlice(data, shape...)}, nil
	}
}
