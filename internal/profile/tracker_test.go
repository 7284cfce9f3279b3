package profile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lensai/edge-profiler/internal/config"
	"github.com/lensai/edge-profiler/internal/metric"
	"github.com/lensai/edge-profiler/pkg/logger"
)

func TestTrackerProfileLogsEnabledMetrics(t *testing.T) {
	cfg := testProfileConfig(t, map[string]config.Threshold{
		metric.IoU:               {Lower: 0, Upper: 1},
		metric.DetectionConfidence: {Lower: 0, Upper: 1},
	})
	p, err := NewTrackerProfile(cfg, 3600, logger.New())
	require.NoError(t, err)
	defer p.Close()

	p.LogIoU(0.8)
	p.LogDetectionConfidence(0.9)
	p.LogTrackLength(12)

	require.True(t, p.registry.Has(metric.IoU))
	require.True(t, p.registry.Has(metric.DetectionConfidence))
	require.False(t, p.registry.Has(metric.TrackLength), "disabled metric must not be registered")
}

func TestTrackerProfileOrientationErrorNeedsTwoSamples(t *testing.T) {
	cfg := testProfileConfig(t, map[string]config.Threshold{
		metric.OrientationError: {Lower: 0, Upper: 3.2},
		metric.QuaternionDrift:  {Lower: 0, Upper: 3.2},
	})
	p, err := NewTrackerProfile(cfg, 3600, logger.New())
	require.NoError(t, err)
	defer p.Close()

	p.LogOrientationError(metric.Quaternion{W: 1})
	require.NotNil(t, p.lastOrientation, "first call seeds the reference orientation")

	p.LogOrientationError(metric.Quaternion{W: 0, X: 1})
	require.NotNil(t, p.lastOrientation)
}
