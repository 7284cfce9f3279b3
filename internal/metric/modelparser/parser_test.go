package modelparser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUnsupportedModelType(t *testing.T) {
	_, err := New("transformer")
	require.Error(t, err)
}

func TestResNetParserPairsEachValueWithIndex(t *testing.T) {
	p, err := New("resnet")
	require.NoError(t, err)

	predictions, err := p.Parse([]float64{0.1, 0.7, 0.2})
	require.NoError(t, err)
	require.Len(t, predictions, 3)
	require.Equal(t, Prediction{Probability: 0.7, ClassIndex: 1}, predictions[1])
}

func TestYOLOParserExtractsBestClassPerBox(t *testing.T) {
	p := YOLOParser{NumClasses: 2}
	raw := []float64{
		0, 0, 10, 10, 0.9, 0.8, 0.1,
		5, 5, 8, 8, 0.5, 0.2, 0.6,
	}
	predictions, err := p.Parse(raw)
	require.NoError(t, err)
	require.Len(t, predictions, 2)
	require.Equal(t, 0, predictions[0].ClassIndex)
	require.InDelta(t, 0.72, predictions[0].Probability, 1e-9)
	require.Equal(t, 1, predictions[1].ClassIndex)
	require.InDelta(t, 0.3, predictions[1].Probability, 1e-9)
}
