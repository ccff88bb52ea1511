package mlvision

import (
	"bufio"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/arlens/ml"
	"go.viam.com/arlens/vision/objectdetection"
)

// Output tensor names of an SSD-style detection model.
const (
	LocationOutput = "location"
	CategoryOutput = "category"
	ScoreOutput    = "score"
)

// DefaultBoxOrder reads [ymin, xmin, ymax, xmax] boxes.
var DefaultBoxOrder = [4]int{1, 0, 3, 2}

// SSDPostProcessor turns location, category and score tensors into detections.
type SSDPostProcessor struct {
	// Labels maps category indices to names. Without labels the index is used.
	Labels []string
	// BoxOrder gives the positions of xmin, ymin, xmax and ymax within each box.
	BoxOrder [4]int
}

// NewSSDPostProcessor returns a postprocessor with the default box order.
func NewSSDPostProcessor(labels []string) *SSDPostProcessor {
	return &SSDPostProcessor{Labels: labels, BoxOrder: DefaultBoxOrder}
}

// RequiredOutputs names the tensors PostProcess reads.
func (p *SSDPostProcessor) RequiredOutputs() []string {
	return []string{LocationOutput, CategoryOutput, ScoreOutput}
}

// PostProcess decodes one detection per score.
func (p *SSDPostProcessor) PostProcess(outputs ml.Tensors) ([]objectdetection.Detection, error) {
	locations, err := float64Output(outputs, LocationOutput)
	if err != nil {
		return nil, err
	}
	categories, err := float64Output(outputs, CategoryOutput)
	if err != nil {
		return nil, err
	}
	scores, err := float64Output(outputs, ScoreOutput)
	if err != nil {
		return nil, err
	}
	if len(locations) < 4*len(scores) || len(categories) < len(scores) {
		return nil, errors.Errorf("model returned %d scores but %d boxes and %d categories",
			len(scores), len(locations)/4, len(categories))
	}

	detections := make([]objectdetection.Detection, 0, len(scores))
	for i, score := range scores {
		box := locations[4*i : 4*i+4]
		rect := objectdetection.NewNormalizedRectFromCorners(
			box[p.BoxOrder[0]], box[p.BoxOrder[1]], box[p.BoxOrder[2]], box[p.BoxOrder[3]])
		label, err := p.label(int(categories[i]))
		if err != nil {
			return nil, err
		}
		detections = append(detections, objectdetection.Detection{Rect: rect, Label: label, Confidence: score})
	}
	return detections, nil
}

func (p *SSDPostProcessor) label(category int) (string, error) {
	if p.Labels == nil {
		return strconv.Itoa(category), nil
	}
	if category < 0 || category >= len(p.Labels) {
		return "", errors.Errorf("cannot access label number %v from label file with %v labels", category, len(p.Labels))
	}
	return p.Labels[category], nil
}

func float64Output(outputs ml.Tensors, name string) ([]float64, error) {
	t, ok := outputs[name]
	if !ok {
		return nil, errors.Errorf("no output tensor named %q", name)
	}
	return t.Float64Data()
}

// LoadLabels reads one label per line.
func LoadLabels(path string) ([]string, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open label file")
	}
	defer utils.UncheckedErrorFunc(f.Close)
	labels := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		labels = append(labels, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read label file")
	}
	return labels, nil
}
