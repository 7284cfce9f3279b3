// Package profile implements the thin facade objects (image, model,
// tracker, custom) that inference code calls directly. Each wraps a
// sketch.Registry and a saver.Saver the way
// _examples/original_source/include/imageprofile.h,
// modelprofile.h, trackingprofile.h and customprofile.h wrap a
// Saver and a set of distributionBox members, generalized from the
// original's fixed member-per-metric layout to a name-keyed registry.
//
// Per spec.md §4.4, profiles never own an Uploader; a Manager walks
// the same stat_dir/data_dir pair independently.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lensai/edge-profiler/internal/config"
	"github.com/lensai/edge-profiler/internal/saver"
	"github.com/lensai/edge-profiler/internal/sketch"
	"github.com/lensai/edge-profiler/pkg/logger"
	"github.com/lensai/edge-profiler/pkg/telemetryerrors"
)

// quantileAccuracy maps the original's per-class "capacity 200" knob
// onto DDSketch's relative-accuracy parameter: a larger capacity buys
// a smaller relative error.
const quantileAccuracy = 1.0 / 200.0

// classificationFrequencyCapacity matches
// modelprofile.h's frequent_items_sketch capacity of 64.
const classificationFrequencyCapacity = 64

type base struct {
	cfg      config.ProfileConfig
	registry *sketch.Registry
	saver    *saver.Saver
	log      *logger.Logger
}

func newBase(cfg config.ProfileConfig, intervalSeconds int, ownerTag string, log *logger.Logger) (*base, error) {
	if err := os.MkdirAll(cfg.StatDir, 0o755); err != nil {
		return nil, telemetryerrors.WrapFilesystemError(cfg.StatDir, "mkdir", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, telemetryerrors.WrapFilesystemError(cfg.DataDir, "mkdir", err)
	}

	sv := saver.New(time.Duration(intervalSeconds)*time.Second, ownerTag, log)
	sv.Start()

	return &base{
		cfg:      cfg,
		registry: sketch.NewRegistry(),
		saver:    sv,
		log:      log.WithField("component", ownerTag),
	}, nil
}

// Close stops and joins the owned Saver, the Go analogue of the
// original destructors' saver teardown.
func (b *base) Close() {
	b.saver.Stop()
}

// statPath lowercases the metric name for the on-disk sketch file,
// matching imageprofile.cpp/imagesampler.cpp/trackingprofile.cpp's
// hardcoded lowercase filenames (e.g. config key "BRIGHTNESS" saves to
// "brightness.bin") independent of the config key's own casing.
func (b *base) statPath(metric string) string {
	return filepath.Join(b.cfg.StatDir, strings.ToLower(metric)+".bin")
}

// ensureQuantile returns the named quantile sketch, creating it (and
// registering a recurring save job for it) on first use.
func (b *base) ensureQuantile(metric string) (*sketch.Quantile, error) {
	isNew := !b.registry.Has(metric)
	q, err := b.registry.GetOrCreateQuantile(metric, quantileAccuracy)
	if err != nil {
		return nil, err
	}
	if isNew {
		b.saver.AddObjectToSave(&saver.Job{
			Kind:        saver.KindQuantileSketch,
			TargetPath:  b.statPath(metric),
			MaxDirBytes: saver.DefaultMaxDirBytes,
			Registry:    b.registry,
			MetricName:  metric,
		})
	}
	return q, nil
}

// ensureFrequency returns the named frequent-items sketch, creating it
// (and registering a recurring save job for it) on first use.
func (b *base) ensureFrequency(metric string, capacity int) (*sketch.Frequency, error) {
	isNew := !b.registry.Has(metric)
	f, err := b.registry.GetOrCreateFrequency(metric, capacity)
	if err != nil {
		return nil, err
	}
	if isNew {
		b.saver.AddObjectToSave(&saver.Job{
			Kind:        saver.KindFrequencySketch,
			TargetPath:  b.statPath(metric),
			MaxDirBytes: saver.DefaultMaxDirBytes,
			Registry:    b.registry,
			MetricName:  metric,
		})
	}
	return f, nil
}

// sampleFilename builds the <data_dir>/<metric>_<epoch><usec6>.png path
// spec.md §6 defines for sample image files.
func sampleFilename(dataDir, metric string, t time.Time) string {
	return filepath.Join(dataDir, fmt.Sprintf("%s_%d%06d.png", metric, t.Unix(), t.Nanosecond()/1000))
}

// exceedsThreshold implements the Open-Question resolution that a
// value outside its configured [lower, upper] range is what triggers
// a sample save, not merely "inside" a suspicious band.
func exceedsThreshold(value float64, t config.Threshold) bool {
	return value < float64(t.Lower) || value > float64(t.Upper)
}
