package cli

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStubRunnerIsDeterministic(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}

	runner := NewStubRunner(3)
	a, _, err := runner.Infer(img)
	require.NoError(t, err)
	b, _, err := runner.Infer(img)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 3)

	var sum float64
	for _, v := range a {
		sum += v
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestStubRunnerDefaultsToOneClass(t *testing.T) {
	runner := NewStubRunner(0)
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	raw, _, err := runner.Infer(img)
	require.NoError(t, err)
	require.Len(t, raw, 1)
}
