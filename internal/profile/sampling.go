package profile

import (
	"image"
	"time"

	"github.com/lensai/edge-profiler/internal/config"
	"github.com/lensai/edge-profiler/internal/metric"
	"github.com/lensai/edge-profiler/internal/saver"
	"github.com/lensai/edge-profiler/pkg/logger"
)

// SamplingProfile selects uncertain inference results for further
// review, the Go analogue of imagesampler.h's ImageSampler class
// (renamed away from "ImageSampler" since its config section is named
// [sampling], not [image]).
type SamplingProfile struct {
	*base
}

// NewSamplingProfile constructs a SamplingProfile from the [sampling]
// section of the parsed configuration.
func NewSamplingProfile(cfg config.ProfileConfig, intervalSeconds int, log *logger.Logger) (*SamplingProfile, error) {
	b, err := newBase(cfg, intervalSeconds, "sampling-profile", log)
	if err != nil {
		return nil, err
	}
	p := &SamplingProfile{base: b}
	for _, name := range []string{metric.MarginConfidence, metric.LeastConfidence, metric.RatioConfidence, metric.EntropyConfidence} {
		if cfg.Enabled(name) {
			if _, err := p.ensureQuantile(name); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// Sample computes the enabled confidence metrics for a class
// probability distribution and, when saveSample is true, saves img as
// a sample once per metric that crosses its configured threshold,
// named after that triggering metric.
func (p *SamplingProfile) Sample(probabilities []float64, img image.Image, saveSample bool) error {
	if len(probabilities) == 0 {
		p.log.Warn("skipping sample on empty probability distribution")
		return nil
	}
	sorted := sortedCopy(probabilities)

	type computation struct {
		name    string
		compute func() (float64, error)
	}
	computations := []computation{
		{metric.MarginConfidence, func() (float64, error) { return metric.MarginConfidenceScore(sorted, true) }},
		{metric.LeastConfidence, func() (float64, error) { return metric.LeastConfidenceScore(sorted, true) }},
		{metric.RatioConfidence, func() (float64, error) { return metric.RatioConfidenceScore(sorted, true) }},
		{metric.EntropyConfidence, func() (float64, error) { return metric.EntropyConfidenceScore(probabilities) }},
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

	if saveSample && img != nil {
		for _, name := range triggered {
			p.saver.AddObjectToSave(&saver.Job{
				Kind:        saver.KindPngImage,
				TargetPath:  sampleFilename(p.cfg.DataDir, name, time.Now()),
				MaxDirBytes: saver.DefaultMaxDirBytes,
				Image:       img,
			})
		}
	}
	return nil
}

func sortedCopy(probs []float64) []float64 {
	out := make([]float64, len(probs))
	copy(out, probs)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] > out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
