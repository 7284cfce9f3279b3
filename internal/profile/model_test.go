package profile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lensai/edge-profiler/internal/config"
	"github.com/lensai/edge-profiler/internal/metric/modelparser"
	"github.com/lensai/edge-profiler/pkg/logger"
)

func TestModelProfileRegistersPerClassSketches(t *testing.T) {
	cfg := testProfileConfig(t, map[string]config.Threshold{
		inferenceLatencyMetric:  {Lower: 0, Upper: 1},
		classificationFrequency: {Lower: 0, Upper: 1},
	})
	p, err := NewModelProfile("resnet18", cfg, 3600, logger.New())
	require.NoError(t, err)
	defer p.Close()

	results := []modelparser.Prediction{
		{Probability: 0.7, ClassIndex: 3},
		{Probability: 0.2, ClassIndex: 1},
		{Probability: 0.1, ClassIndex: 0},
	}
	require.NoError(t, p.LogClassificationModelStats(0.012, results))

	require.True(t, p.registry.Has(p.classMetricName(3)))
	require.True(t, p.registry.Has(p.classMetricName(1)))
	require.True(t, p.registry.Has(p.classMetricName(0)))
	require.True(t, p.registry.Has(p.classificationMetricName()))

	// spec.md §4.1/§8 scenario 1: per-class stat files are named
	// <model_id><class_id>.bin, with no separator between the two.
	require.Equal(t, "resnet183", p.classMetricName(3))
	require.Equal(t, "resnet181", p.classMetricName(1))
	require.Equal(t, "resnet180", p.classMetricName(0))
}

func TestModelProfileUpdatesFrequencyForEveryResult(t *testing.T) {
	cfg := testProfileConfig(t, map[string]config.Threshold{
		classificationFrequency: {Lower: 0, Upper: 1},
	})
	p, err := NewModelProfile("resnet18", cfg, 3600, logger.New())
	require.NoError(t, err)
	defer p.Close()

	results := []modelparser.Prediction{
		{Probability: 0.7, ClassIndex: 3},
		{Probability: 0.2, ClassIndex: 1},
		{Probability: 0.1, ClassIndex: 0},
	}
	require.NoError(t, p.LogClassificationModelStats(0.012, results))

	f, err := p.registry.GetOrCreateFrequency(p.classificationMetricName(), classificationFrequencyCapacity)
	require.NoError(t, err)
	top := f.TopK(3)
	require.Len(t, top, 3, "every result, not just the winner, updates the frequency sketch")
}

func TestModelProfileLogEmbeddingsComputesNorm(t *testing.T) {
	cfg := testProfileConfig(t, nil)
	p, err := NewModelProfile("embedder", cfg, 3600, logger.New())
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.LogEmbeddings([]float64{3, 4}))
	require.True(t, p.registry.Has(embeddingNormMetric))
}

func TestModelProfileLogEmbeddingsRejectsEmptyVector(t *testing.T) {
	cfg := testProfileConfig(t, nil)
	p, err := NewModelProfile("embedder", cfg, 3600, logger.New())
	require.NoError(t, err)
	defer p.Close()

	require.Error(t, p.LogEmbeddings(nil))
}
