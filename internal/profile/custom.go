package profile

import (
	"github.com/lensai/edge-profiler/internal/config"
	"github.com/lensai/edge-profiler/pkg/logger"
)

// CustomProfile logs arbitrary named scalar statistics, the Go
// analogue of customprofile.h's CustomProfile class: instead of a map
// keyed by a hashed integer id, it uses the sketch registry's string
// keys directly.
type CustomProfile struct {
	*base
}

// NewCustomProfile constructs a CustomProfile from the [custom]
// section of the parsed configuration.
func NewCustomProfile(cfg config.ProfileConfig, intervalSeconds int, log *logger.Logger) (*CustomProfile, error) {
	b, err := newBase(cfg, intervalSeconds, "custom-profile", log)
	if err != nil {
		return nil, err
	}
	return &CustomProfile{base: b}, nil
}

// Profile updates the named statistic's sketch, registering it (and a
// recurring save job) on first use regardless of whether the name
// appears in the config, matching customprofile.h's getBox, which
// lazily creates a box for any name passed to profile().
func (p *CustomProfile) Profile(name string, value float64) error {
	if _, err := p.ensureQuantile(name); err != nil {
		return err
	}
	return p.registry.UpdateQuantile(name, value)
}
