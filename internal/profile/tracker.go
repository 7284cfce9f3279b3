package profile

import (
	"github.com/lensai/edge-profiler/internal/config"
	"github.com/lensai/edge-profiler/internal/metric"
	"github.com/lensai/edge-profiler/pkg/logger"
)

// TrackerProfile logs the scalar statistics of an object tracker, the
// Go analogue of trackingprofile.h's TrackingProfile class. Each
// log_* method there becomes one method here updating the matching
// named sketch.
type TrackerProfile struct {
	*base
	lastOrientation *metric.Quaternion
}

// NewTrackerProfile constructs a TrackerProfile from the [tracker]
// section of the parsed configuration.
func NewTrackerProfile(cfg config.ProfileConfig, intervalSeconds int, log *logger.Logger) (*TrackerProfile, error) {
	b, err := newBase(cfg, intervalSeconds, "tracker-profile", log)
	if err != nil {
		return nil, err
	}
	p := &TrackerProfile{base: b}
	for _, name := range []string{
		metric.DetectionConfidence, metric.TrackLength, metric.IoU, metric.PositionError,
		metric.OrientationError, metric.AngularVelocityLatency, metric.QuaternionDrift,
		metric.CovarianceSpread, metric.AnomalousRotation, metric.AngularDivergence,
	} {
		if cfg.Enabled(name) {
			if _, err := p.ensureQuantile(name); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func (p *TrackerProfile) update(name string, value float64) {
	if !p.cfg.Enabled(name) {
		return
	}
	if err := p.registry.UpdateQuantile(name, value); err != nil {
		p.log.Warn("failed to update sketch", "metric", name, "error", err)
	}
}

func (p *TrackerProfile) LogDetectionConfidence(confidence float64) {
	p.update(metric.DetectionConfidence, confidence)
}

func (p *TrackerProfile) LogTrackLength(length int) {
	p.update(metric.TrackLength, float64(length))
}

func (p *TrackerProfile) LogIoU(iou float64) {
	p.update(metric.IoU, iou)
}

func (p *TrackerProfile) LogPositionError2D(estimate, reference metric.Position2D) {
	p.update(metric.PositionError, metric.PositionError2D(estimate, reference))
}

func (p *TrackerProfile) LogPositionError3D(estimate, reference metric.Position3D) {
	p.update(metric.PositionError, metric.PositionError3D(estimate, reference))
}

// LogOrientationError records the angle between orientation and the
// previously logged orientation, seeding the running reference on the
// first call.
func (p *TrackerProfile) LogOrientationError(orientation metric.Quaternion) {
	if p.lastOrientation != nil {
		p.update(metric.OrientationError, metric.OrientationErrorAngle(orientation, *p.lastOrientation))
		p.update(metric.QuaternionDrift, metric.QuaternionDriftScore(*p.lastOrientation, orientation))
	}
	o := orientation
	p.lastOrientation = &o
}

// LogAngularVelocityLatency feeds the angular velocity's magnitude into
// the angular_velocity_latency sketch, logging the measured latency
// alongside it for observability (trackingprofile.h declares but never
// implements a vector-valued overload of log_angular_velocity_latency;
// this collapses that and the scalar overload into one call that
// actually uses the velocity it's given).
func (p *TrackerProfile) LogAngularVelocityLatency(velocity metric.AngularVelocity, latencySeconds float64) {
	p.log.Debug("angular velocity sample", "latency_seconds", latencySeconds)
	p.update(metric.AngularVelocityLatency, metric.AngularVelocityMagnitude(velocity))
}

func (p *TrackerProfile) LogCovarianceSpread(spread float64) {
	p.update(metric.CovarianceSpread, spread)
}

func (p *TrackerProfile) LogAnomalousRotation(isAnomalous bool) {
	value := 0.0
	if isAnomalous {
		value = 1.0
	}
	p.update(metric.AnomalousRotation, value)
}

func (p *TrackerProfile) LogAngularDivergence(divergence float64) {
	p.update(metric.AngularDivergence, divergence)
}
