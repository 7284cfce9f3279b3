// Package metric computes the scalar image-quality, confidence, and
// tracker statistics that profiles feed into sketches. The computations
// are grounded on the formulas described in
// _examples/original_source/include/imageprofile.h,
// _examples/original_source/include/imagesampler.h, and
// _examples/original_source/include/trackingprofile.h; there is no
// numerical-computing library in the example pack that covers image
// statistics or probability-distribution entropy, so these are plain
// float64 functions over the standard library's image.Image.
package metric

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/lensai/edge-profiler/pkg/telemetryerrors"
)

var (
	errEmptyImage     = errors.New("image has no pixels")
	errImageTooSmall  = errors.New("image smaller than the 3x3 Laplacian stencil")
	errZeroNoiseFloor = errors.New("noise floor is zero")
)

// Image metric names, matched case-sensitively against [image] section
// keys per spec.md §3/§6, matching the literal strcmp names
// imageprofile.cpp's registerStatistics/profile switch on (e.g.
// "BRIGHTNESS", "SHARPNESS").
const (
	Contrast   = "CONTRAST"
	Brightness = "BRIGHTNESS"
	Sharpness  = "SHARPNESS"
	Noise      = "NOISE" // imageprofile.cpp's calculateSNR, registered under the config key NOISE
	Mean       = "MEAN"
	MeanPrefix = "MEAN_" // per-channel sketch keys: MeanPrefix+"0", MeanPrefix+"1", ...
)

// Grayscale converts a pixel to the luma value imageprofile.h's
// computeStatistic uses as its single-channel basis for contrast,
// brightness and sharpness.
func grayscale(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}

// ComputeContrast is the RMS contrast: the standard deviation of pixel
// luma over the image. Returns a SketchComputationError for an empty
// image.
func ComputeContrast(img image.Image) (float64, error) {
	bounds := img.Bounds()
	n := 0
	var sum, sumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := grayscale(img.At(x, y))
			sum += v
			sumSq += v * v
			n++
		}
	}
	if n == 0 {
		return 0, telemetryerrors.WrapSketchComputationError(Contrast, errEmptyImage)
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance), nil
}

// ComputeBrightness is mean pixel luma. Returns a SketchComputationError
// for an empty image.
func ComputeBrightness(img image.Image) (float64, error) {
	bounds := img.Bounds()
	n := 0
	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sum += grayscale(img.At(x, y))
			n++
		}
	}
	if n == 0 {
		return 0, telemetryerrors.WrapSketchComputationError(Brightness, errEmptyImage)
	}
	return sum / float64(n), nil
}

// ComputeSharpness is the variance of the discrete Laplacian, the
// standard focus-measure approximation of OpenCV's
// cv::Laplacian+meanStdDev pattern that imageprofile.h's sharpnessBox
// is fed from. Returns a SketchComputationError when the image is too
// small for the 3x3 Laplacian stencil.
func ComputeSharpness(img image.Image) (float64, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0, telemetryerrors.WrapSketchComputationError(Sharpness, errImageTooSmall)
	}

	gray := make([][]float64, h)
	for y := 0; y < h; y++ {
		gray[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			gray[y][x] = grayscale(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}

	var sum, sumSq float64
	n := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := -4*gray[y][x] + gray[y-1][x] + gray[y+1][x] + gray[y][x-1] + gray[y][x+1]
			sum += lap
			sumSq += lap * lap
			n++
		}
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return variance, nil
}

// ComputeSNR estimates signal-to-noise ratio as mean luma over the
// noise floor (the standard deviation of the high-frequency Laplacian
// residual), mirroring imageprofile.h's noiseBox role alongside
// brightness. Returns a SketchComputationError when the noise floor is
// zero (a perfectly flat image has no noise to divide by).
func ComputeSNR(img image.Image) (float64, error) {
	brightness, err := ComputeBrightness(img)
	if err != nil {
		return 0, err
	}
	sharpness, err := ComputeSharpness(img)
	if err != nil {
		return 0, err
	}
	noise := math.Sqrt(sharpness)
	if noise == 0 {
		return 0, telemetryerrors.WrapSketchComputationError(Noise, errZeroNoiseFloor)
	}
	return brightness / noise, nil
}

// PerChannelMean returns the mean value of each of the image's color
// channels (imageprofile.h's meanBox, one distributionBox per channel).
// Grayscale/paletted images return a single-element slice. Returns a
// SketchComputationError for an empty image.
func PerChannelMean(img image.Image) ([]float64, error) {
	bounds := img.Bounds()
	n := 0
	var sums [3]float64
	gray := isGray(img)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sums[0] += float64(r >> 8)
			sums[1] += float64(g >> 8)
			sums[2] += float64(b >> 8)
			n++
		}
	}
	if n == 0 {
		return nil, telemetryerrors.WrapSketchComputationError(Mean, errEmptyImage)
	}
	if gray {
		return []float64{sums[0] / float64(n)}, nil
	}
	return []float64{sums[0] / float64(n), sums[1] / float64(n), sums[2] / float64(n)}, nil
}

func isGray(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	default:
		return false
	}
}
