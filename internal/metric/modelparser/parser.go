// Package modelparser turns a model's raw output tensor into the
// (probability, classIndex) pairs that internal/metric's confidence
// functions and internal/sketch's classification frequent-items sketch
// consume. Grounded on
// _examples/original_source/include/modeloutput_parser.h,
// parser_factory.h, resnet_parser.h and yolo_parser.h, which use a
// factory-selected strategy keyed by model type string.
package modelparser

import "fmt"

// Prediction is one (probability, class index) pair, the Go analogue
// of the original's std::pair<float, int>.
type Prediction struct {
	Probability float64
	ClassIndex  int
}

// Parser turns a raw model output tensor into ranked predictions.
type Parser interface {
	Parse(raw []float64) ([]Prediction, error)
}

// New resolves a Parser by model type name, mirroring ParserFactory's
// createParser switch.
func New(modelType string) (Parser, error) {
	switch modelType {
	case "resnet", "classification":
		return ResNetParser{}, nil
	case "yolo", "detection":
		return YOLOParser{}, nil
	default:
		return nil, fmt.Errorf("modelparser: unsupported model type %q", modelType)
	}
}
