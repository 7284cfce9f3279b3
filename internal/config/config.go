// Package config loads the INI configuration file described in spec.md §6:
// one section per profile kind, plus one section per uploader instance.
// The INI format itself is treated as an opaque collaborator — parsing is
// delegated entirely to gopkg.in/ini.v1, following the teacher's pattern of
// a typed struct per concern (pkg/config.Config in the teacher tree) rather
// than hand-rolling a parser.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/lensai/edge-profiler/pkg/telemetryerrors"
)

// profileSectionNames are the four fixed profile kinds plus the sampling
// meta-section; any other top-level section is an uploader instance.
var profileSectionNames = map[string]bool{
	"image":    true,
	"model":    true,
	"tracker":  true,
	"custom":   true,
	"sampling": true,
}

// Threshold is the enable/disable + bound pair carried by a metric key's
// comma-separated value.
type Threshold struct {
	Lower float32
	Upper float32
}

// ProfileConfig is one of [image], [model], [tracker], [custom], or
// [sampling]: a stat/data directory pair and the set of enabled metrics.
type ProfileConfig struct {
	Name     string
	StatDir  string
	DataDir  string
	Metrics  map[string]Threshold
	unknowns []string
}

// Enabled reports whether metric has a configured threshold, i.e. whether
// it should be registered at all (absent keys disable a metric per
// spec.md §6).
func (p ProfileConfig) Enabled(metric string) bool {
	_, ok := p.Metrics[metric]
	return ok
}

// UploaderConfig is one non-profile section: an upload job descriptor plus
// the (possibly several) watched folders it round-robins across.
type UploaderConfig struct {
	Name           string
	Endpoint       string
	Token          string
	SensorID       string
	FolderPaths    []string
	FileTypes      []string
	DeleteData     []bool
	IntervalSeconds int
	Backend        string // "http" (default) or "s3"
	S3Bucket       string
	S3Region       string
	S3KeyPrefix    string
}

// Config is the parsed form of the whole INI file.
type Config struct {
	Profiles  map[string]ProfileConfig
	Uploaders []UploaderConfig
}

// Load reads and validates the INI file at path.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, telemetryerrors.WrapConfigError("root", "", fmt.Errorf("load %s: %w", path, err))
	}

	cfg := &Config{Profiles: make(map[string]ProfileConfig)}

	for _, section := range f.Sections() {
		name := section.Name()
		if name == ini.DefaultSection {
			continue
		}

		if profileSectionNames[strings.ToLower(name)] {
			pc, err := parseProfileSection(section)
			if err != nil {
				return nil, err
			}
			cfg.Profiles[strings.ToLower(name)] = pc
			continue
		}

		uc, err := parseUploaderSection(section)
		if err != nil {
			return nil, err
		}
		cfg.Uploaders = append(cfg.Uploaders, uc)
	}

	return cfg, nil
}

func parseProfileSection(section *ini.Section) (ProfileConfig, error) {
	pc := ProfileConfig{Name: section.Name(), Metrics: make(map[string]Threshold)}

	fp := section.Key("filepath").String()
	if fp == "" {
		return pc, telemetryerrors.WrapConfigError(section.Name(), "filepath", fmt.Errorf("required"))
	}
	parts := splitCSV(fp)
	if len(parts) != 2 {
		return pc, telemetryerrors.WrapConfigError(section.Name(), "filepath", fmt.Errorf("expected \"<stat_dir>, <data_dir>\", got %q", fp))
	}
	pc.StatDir, pc.DataDir = parts[0], parts[1]

	for _, key := range section.Keys() {
		if key.Name() == "filepath" {
			continue
		}
		th, ok, err := parseThreshold(key.Value())
		if err != nil {
			return pc, telemetryerrors.WrapConfigError(section.Name(), key.Name(), err)
		}
		if !ok {
			pc.unknowns = append(pc.unknowns, key.Name())
			continue
		}
		pc.Metrics[key.Name()] = th
	}

	return pc, nil
}

func parseThreshold(value string) (Threshold, bool, error) {
	parts := splitCSV(value)
	if len(parts) != 2 {
		return Threshold{}, false, nil
	}
	lower, err := strconv.ParseFloat(parts[0], 32)
	if err != nil {
		return Threshold{}, false, fmt.Errorf("lower bound %q: %w", parts[0], err)
	}
	upper, err := strconv.ParseFloat(parts[1], 32)
	if err != nil {
		return Threshold{}, false, fmt.Errorf("upper bound %q: %w", parts[1], err)
	}
	return Threshold{Lower: float32(lower), Upper: float32(upper)}, true, nil
}

func parseUploaderSection(section *ini.Section) (UploaderConfig, error) {
	uc := UploaderConfig{
		Name:     section.Name(),
		Endpoint: section.Key("http_endpoint").String(),
		Token:    section.Key("token").String(),
		SensorID: section.Key("sensorId").String(),
		Backend:  section.Key("backend").MustString("http"),
		S3Bucket: section.Key("s3_bucket").String(),
		S3Region: section.Key("s3_region").String(),
		S3KeyPrefix: section.Key("s3_key_prefix").String(),
	}

	uc.FolderPaths = splitCSV(section.Key("folderPath").String())
	uc.FileTypes = splitCSV(section.Key("fileType").String())

	for _, v := range splitCSV(section.Key("deletedata").String()) {
		uc.DeleteData = append(uc.DeleteData, strings.EqualFold(v, "true"))
	}

	interval, err := section.Key("upload_interval").Int()
	if err != nil {
		return uc, telemetryerrors.WrapConfigError(section.Name(), "upload_interval", err)
	}
	uc.IntervalSeconds = interval

	if len(uc.FolderPaths) == 0 {
		return uc, telemetryerrors.WrapConfigError(section.Name(), "folderPath", fmt.Errorf("required"))
	}
	if len(uc.FileTypes) != len(uc.FolderPaths) {
		return uc, telemetryerrors.WrapConfigError(section.Name(), "fileType", fmt.Errorf("must be a parallel list of the same length as folderPath"))
	}
	if len(uc.DeleteData) != 0 && len(uc.DeleteData) != len(uc.FolderPaths) {
		return uc, telemetryerrors.WrapConfigError(section.Name(), "deletedata", fmt.Errorf("must be a parallel list of the same length as folderPath"))
	}
	for len(uc.DeleteData) < len(uc.FolderPaths) {
		uc.DeleteData = append(uc.DeleteData, false)
	}

	return uc, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	fields := strings.Split(s, ",")
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.TrimSpace(f))
	}
	return out
}
