package modelparser

// ResNetParser treats the raw output as a flat per-class probability
// vector, pairing each value with its index as resnet_parser.h does.
type ResNetParser struct{}

func (ResNetParser) Parse(raw []float64) ([]Prediction, error) {
	predictions := make([]Prediction, len(raw))
	for i, v := range raw {
		predictions[i] = Prediction{Probability: v, ClassIndex: i}
	}
	return predictions, nil
}
