package metric

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func solidGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestComputeBrightnessUniformImage(t *testing.T) {
	img := solidGray(8, 8, 200)
	brightness, err := ComputeBrightness(img)
	require.NoError(t, err)
	require.InDelta(t, 200, brightness, 0.5)
}

func TestComputeBrightnessEmptyImageErrors(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 0, 0))
	_, err := ComputeBrightness(img)
	require.Error(t, err)
}

func TestComputeContrastUniformImageIsZero(t *testing.T) {
	img := solidGray(8, 8, 128)
	contrast, err := ComputeContrast(img)
	require.NoError(t, err)
	require.InDelta(t, 0, contrast, 1e-9)
}

func TestComputeContrastCheckerboardIsPositive(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	contrast, err := ComputeContrast(img)
	require.NoError(t, err)
	require.Greater(t, contrast, 100.0)
}

func TestComputeSharpnessUniformImageIsZero(t *testing.T) {
	img := solidGray(8, 8, 100)
	sharpness, err := ComputeSharpness(img)
	require.NoError(t, err)
	require.InDelta(t, 0, sharpness, 1e-9)
}

func TestComputeSharpnessTooSmallErrors(t *testing.T) {
	img := solidGray(2, 2, 100)
	_, err := ComputeSharpness(img)
	require.Error(t, err)
}

func TestComputeSNRZeroNoiseFloorErrors(t *testing.T) {
	img := solidGray(8, 8, 100)
	_, err := ComputeSNR(img)
	require.Error(t, err)
}

func TestPerChannelMeanGrayscaleIsSingleChannel(t *testing.T) {
	img := solidGray(4, 4, 50)
	means, err := PerChannelMean(img)
	require.NoError(t, err)
	require.Len(t, means, 1)
	require.InDelta(t, 50, means[0], 0.5)
}

func TestPerChannelMeanRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	means, err := PerChannelMean(img)
	require.NoError(t, err)
	require.Len(t, means, 3)
	require.InDelta(t, 10, means[0], 0.5)
	require.InDelta(t, 20, means[1], 0.5)
	require.InDelta(t, 30, means[2], 0.5)
}
