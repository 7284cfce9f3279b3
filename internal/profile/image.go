package profile

import (
	"fmt"
	"image"
	"time"

	"github.com/lensai/edge-profiler/internal/config"
	"github.com/lensai/edge-profiler/internal/metric"
	"github.com/lensai/edge-profiler/internal/saver"
	"github.com/lensai/edge-profiler/pkg/logger"
)

// ImageProfile computes per-frame image-quality statistics, the Go
// analogue of imageprofile.h's ImageProfile class.
type ImageProfile struct {
	*base
}

// NewImageProfile constructs an ImageProfile from the [image] section
// of the parsed configuration.
func NewImageProfile(cfg config.ProfileConfig, intervalSeconds int, log *logger.Logger) (*ImageProfile, error) {
	b, err := newBase(cfg, intervalSeconds, "image-profile", log)
	if err != nil {
		return nil, err
	}
	p := &ImageProfile{base: b}
	for _, name := range []string{metric.Contrast, metric.Brightness, metric.Sharpness, metric.Noise} {
		if cfg.Enabled(name) {
			if _, err := p.ensureQuantile(name); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// Profile computes the enabled image statistics for img and updates
// their sketches. If saveSample is true, the raw frame is written to
// data_dir once per metric whose value falls outside its configured
// threshold, named after that triggering metric (imageprofile.cpp's
// profile() saves independently in each stat's own branch, not behind
// one shared flag).
func (p *ImageProfile) Profile(img image.Image, saveSample bool) error {
	if img == nil || img.Bounds().Empty() {
		p.log.Warn("skipping profile on empty image")
		return nil
	}

	type computation struct {
		name    string
		compute func() (float64, error)
	}
	computations := []computation{
		{metric.Contrast, func() (float64, error) { return metric.ComputeContrast(img) }},
		{metric.Brightness, func() (float64, error) { return metric.ComputeBrightness(img) }},
		{metric.Sharpness, func() (float64, error) { return metric.ComputeSharpness(img) }},
		{metric.Noise, func() (float64, error) { return metric.ComputeSNR(img) }},
	}

	var triggered []string
	for _, c := range computations {
		if !p.cfg.Enabled(c.name) {
			continue
		}
		value, err := c.compute()
		if err != nil {
			p.log.Warn("failed to compute metric", "metric", c.name, "error", err)
			continue
		}
		if err := p.registry.UpdateQuantile(c.name, value); err != nil {
			p.log.Warn("failed to update sketch", "metric", c.name, "error", err)
			continue
		}
		if threshold, ok := p.cfg.Metrics[c.name]; ok && exceedsThreshold(value, threshold) {
			triggered = append(triggered, c.name)
		}
	}

	if p.cfg.Enabled(metric.Mean) {
		means, err := metric.PerChannelMean(img)
		if err != nil {
			p.log.Warn("failed to compute per-channel mean", "error", err)
		}
		for i, mean := range means {
			name := fmt.Sprintf("%s%d", metric.MeanPrefix, i)
			if _, err := p.ensureQuantile(name); err != nil {
				p.log.Warn("failed to register channel sketch", "metric", name, "error", err)
				continue
			}
			if err := p.registry.UpdateQuantile(name, mean); err != nil {
				p.log.Warn("failed to update sketch", "metric", name, "error", err)
			}
		}
	}

	if saveSample {
		for _, name := range triggered {
			p.saveSample(img, name)
		}
	}
	return nil
}

func (p *ImageProfile) saveSample(img image.Image, triggeringMetric string) {
	path := sampleFilename(p.cfg.DataDir, triggeringMetric, time.Now())
	p.saver.AddObjectToSave(&saver.Job{
		Kind:        saver.KindPngImage,
		TargetPath:  path,
		MaxDirBytes: saver.DefaultMaxDirBytes,
		Image:       img,
	})
}
