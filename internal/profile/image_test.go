package profile

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lensai/edge-profiler/internal/config"
	"github.com/lensai/edge-profiler/internal/metric"
	"github.com/lensai/edge-profiler/pkg/logger"
)

func testProfileConfig(t *testing.T, metrics map[string]config.Threshold) config.ProfileConfig {
	t.Helper()
	dir := t.TempDir()
	return config.ProfileConfig{
		Name:    "image",
		StatDir: filepath.Join(dir, "stat"),
		DataDir: filepath.Join(dir, "data"),
		Metrics: metrics,
	}
}

func solid(w, h int, v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestImageProfileUpdatesEnabledMetrics(t *testing.T) {
	cfg := testProfileConfig(t, map[string]config.Threshold{
		metric.Brightness: {Lower: 0, Upper: 255},
	})
	p, err := NewImageProfile(cfg, 3600, logger.New())
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Profile(solid(8, 8, 100), false))
	require.True(t, p.registry.Has(metric.Brightness))
	require.False(t, p.registry.Has(metric.Contrast), "disabled metrics must not be registered")
}

func TestImageProfileSavesSampleWhenThresholdExceeded(t *testing.T) {
	cfg := testProfileConfig(t, map[string]config.Threshold{
		metric.Brightness: {Lower: 0, Upper: 10},
	})
	p, err := NewImageProfile(cfg, 3600, logger.New())
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Profile(solid(8, 8, 200), true))
	p.saver.TriggerSave()

	require.Eventually(t, func() bool {
		entries, _ := os.ReadDir(cfg.DataDir)
		return len(entries) == 1
	}, time.Second, 10*time.Millisecond, "threshold breach must persist a sample image")

	entries, err := os.ReadDir(cfg.DataDir)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(entries[0].Name(), "BRIGHTNESS_"),
		"sample filename must be derived from the triggering metric, spec.md §8 scenario 2")
}

func TestImageProfileStatFileIsLowercase(t *testing.T) {
	cfg := testProfileConfig(t, map[string]config.Threshold{
		metric.Brightness: {Lower: 0, Upper: 255},
	})
	p, err := NewImageProfile(cfg, 3600, logger.New())
	require.NoError(t, err)
	defer p.Close()

	require.Equal(t, filepath.Join(cfg.StatDir, "brightness.bin"), p.statPath(metric.Brightness))
}

func TestImageProfileSkipsEmptyImage(t *testing.T) {
	cfg := testProfileConfig(t, map[string]config.Threshold{metric.Brightness: {Lower: 0, Upper: 255}})
	p, err := NewImageProfile(cfg, 3600, logger.New())
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Profile(nil, false))
}
