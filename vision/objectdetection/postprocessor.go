package objectdetection

// Postprocessor defines a function that filters/modifies on an incoming array of Detections.
type Postprocessor func([]Detection) []Detection

// NewAreaFilter returns a function that filters out detections below a certain normalized area.
func NewAreaFilter(area float64) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Rect.Area() >= area {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewScoreFilter returns a function that filters out detections below a certain confidence.
func NewScoreFilter(conf float64) Postprocessor {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Confidence >= conf {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewLabelFilter returns a function that keeps only detections with one of the given labels.
// An empty label list keeps everything.
func NewLabelFilter(labels ...string) Postprocessor {
	keep := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		keep[l] = struct{}{}
	}
	return func(in []Detection) []Detection {
		if len(keep) == 0 {
			return in
		}
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if _, ok := keep[d.Label]; ok {
				out = append(out, d)
			}
		}
		return out
	}
}

// Chain applies the postprocessors in order. Nil entries are skipped.
func Chain(postprocessors ...Postprocessor) Postprocessor {
	return func(in []Detection) []Detection {
		for _, p := range postprocessors {
			if p != nil {
				in = p(in)
			}
		}
		return in
	}
}
