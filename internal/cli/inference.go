package cli

import (
	"image"
	"time"
)

// InferenceRunner is the seam a real model backend (TFLite, ONNX
// Runtime, ...) plugs into. spec.md §6 explicitly scopes model
// inference itself out of the core; lensaictl only needs something
// that turns an image into a raw per-class score vector.
type InferenceRunner interface {
	Warmup(modelPath string) error
	Infer(img image.Image) (raw []float64, latency time.Duration, err error)
	Close() error
}

// stubRunner is a deterministic placeholder used when no real backend
// is wired in: it derives a stable pseudo-score per class from the
// image's mean brightness, so repeated runs over the same image_dir
// produce repeatable output for testing the pipeline end-to-end.
type stubRunner struct {
	numClasses int
}

// NewStubRunner returns an InferenceRunner with numClasses outputs.
func NewStubRunner(numClasses int) InferenceRunner {
	if numClasses <= 0 {
		numClasses = 1
	}
	return &stubRunner{numClasses: numClasses}
}

func (r *stubRunner) Warmup(modelPath string) error { return nil }

func (r *stubRunner) Infer(img image.Image) ([]float64, time.Duration, error) {
	start := time.Now()

	bounds := img.Bounds()
	var sum float64
	n := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rr, gg, bb, _ := img.At(x, y).RGBA()
			sum += float64(rr>>8) + float64(gg>>8) + float64(bb>>8)
			n++
		}
	}
	mean := 0.0
	if n > 0 {
		mean = sum / float64(3*n)
	}

	raw := make([]float64, r.numClasses)
	var total float64
	for i := range raw {
		raw[i] = 1 + mean*float64(i+1)
		total += raw[i]
	}
	if total > 0 {
		for i := range raw {
			raw[i] /= total
		}
	}
	return raw, time.Since(start), nil
}

func (r *stubRunner) Close() error { return nil }
