package cli

import (
	"bufio"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lensai/edge-profiler/internal/config"
	"github.com/lensai/edge-profiler/internal/metric/modelparser"
	"github.com/lensai/edge-profiler/internal/profile"
	"github.com/lensai/edge-profiler/internal/upload"
	"github.com/lensai/edge-profiler/pkg/logger"
)

// RunPipeline wires a config file's profiles and uploaders, then feeds
// every image under imageDir through the (stubbed) model, following
// the per-image call sequence of
// _examples/original_source/examples/TFLite/Classification_Binary/main.cpp's
// run_inference_on_image: profile the frame, sample its confidence,
// then log the classification stats.
func RunPipeline(modelPath, labelsPath, imageDir, configPath string) error {
	log := logger.New()

	labels, err := loadLabels(labelsPath)
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	profiles, closeProfiles, err := buildProfiles(cfg, modelPath, log)
	if err != nil {
		return err
	}
	defer closeProfiles()

	uploaders, err := buildUploaders(cfg, log)
	if err != nil {
		return err
	}
	for _, m := range uploaders {
		m.Start()
	}
	defer func() {
		for _, m := range uploaders {
			m.Stop()
		}
	}()

	runner := NewStubRunner(len(labels))
	if err := runner.Warmup(modelPath); err != nil {
		return fmt.Errorf("warmup model: %w", err)
	}
	defer runner.Close()

	parser, err := modelparser.New("resnet")
	if err != nil {
		return err
	}

	files, err := listImageFiles(imageDir)
	if err != nil {
		return fmt.Errorf("list image_dir: %w", err)
	}

	for _, path := range files {
		if err := processImage(path, runner, parser, profiles, log); err != nil {
			log.Warn("failed to process image", "path", path, "error", err)
		}
	}

	return nil
}

type wiredProfiles struct {
	image    *profile.ImageProfile
	model    *profile.ModelProfile
	tracker  *profile.TrackerProfile
	custom   *profile.CustomProfile
	sampling *profile.SamplingProfile
}

func buildProfiles(cfg *config.Config, modelPath string, log *logger.Logger) (*wiredProfiles, func(), error) {
	var wired wiredProfiles
	var closers []func()

	if pc, ok := cfg.Profiles["image"]; ok {
		p, err := profile.NewImageProfile(pc, defaultSaveInterval, log)
		if err != nil {
			return nil, nil, fmt.Errorf("image profile: %w", err)
		}
		wired.image = p
		closers = append(closers, p.Close)
	}
	if pc, ok := cfg.Profiles["model"]; ok {
		modelID := strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath))
		p, err := profile.NewModelProfile(modelID, pc, defaultSaveInterval, log)
		if err != nil {
			return nil, nil, fmt.Errorf("model profile: %w", err)
		}
		wired.model = p
		closers = append(closers, p.Close)
	}
	if pc, ok := cfg.Profiles["tracker"]; ok {
		p, err := profile.NewTrackerProfile(pc, defaultSaveInterval, log)
		if err != nil {
			return nil, nil, fmt.Errorf("tracker profile: %w", err)
		}
		wired.tracker = p
		closers = append(closers, p.Close)
	}
	if pc, ok := cfg.Profiles["custom"]; ok {
		p, err := profile.NewCustomProfile(pc, defaultSaveInterval, log)
		if err != nil {
			return nil, nil, fmt.Errorf("custom profile: %w", err)
		}
		wired.custom = p
		closers = append(closers, p.Close)
	}
	if pc, ok := cfg.Profiles["sampling"]; ok {
		p, err := profile.NewSamplingProfile(pc, defaultSaveInterval, log)
		if err != nil {
			return nil, nil, fmt.Errorf("sampling profile: %w", err)
		}
		wired.sampling = p
		closers = append(closers, p.Close)
	}

	return &wired, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

// defaultSaveInterval is the save interval, in seconds, the CLI driver
// gives every profile it builds; profile sections have no interval key
// (only uploader sections do), so it is a fixed, documented default.
const defaultSaveInterval = 60

func buildUploaders(cfg *config.Config, log *logger.Logger) ([]*upload.Manager, error) {
	managers := make([]*upload.Manager, 0, len(cfg.Uploaders))
	for _, uc := range cfg.Uploaders {
		backend, err := buildBackend(uc)
		if err != nil {
			return nil, fmt.Errorf("uploader %q: %w", uc.Name, err)
		}

		descriptors := make([]upload.Descriptor, len(uc.FolderPaths))
		for i, folder := range uc.FolderPaths {
			descriptors[i] = upload.Descriptor{
				FolderPath:  folder,
				FileType:    uc.FileTypes[i],
				DeleteAfter: uc.DeleteData[i],
			}
		}

		managers = append(managers, upload.New(upload.Config{
			Endpoint:        uc.Endpoint,
			Token:           uc.Token,
			SensorID:        uc.SensorID,
			IntervalSeconds: uc.IntervalSeconds,
			Descriptors:     descriptors,
			S3Bucket:        uc.S3Bucket,
			S3Region:        uc.S3Region,
			S3KeyPrefix:     uc.S3KeyPrefix,
		}, backend, log))
	}
	return managers, nil
}

func buildBackend(uc config.UploaderConfig) (upload.Backend, error) {
	switch strings.ToLower(uc.Backend) {
	case "", "http":
		return upload.NewHTTPBackend(), nil
	case "s3":
		return upload.NewS3Backend(context.Background(), uc.S3Region)
	default:
		return nil, fmt.Errorf("unknown backend %q", uc.Backend)
	}
}

func processImage(path string, runner InferenceRunner, parser modelparser.Parser, profiles *wiredProfiles, log *logger.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	raw, latency, err := runner.Infer(img)
	if err != nil {
		return fmt.Errorf("infer: %w", err)
	}

	predictions, err := parser.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse model output: %w", err)
	}

	saveSample := true

	if profiles.image != nil {
		if err := profiles.image.Profile(img, saveSample); err != nil {
			log.Warn("image profile failed", "error", err)
		}
	}
	if profiles.sampling != nil {
		if err := profiles.sampling.Sample(raw, img, saveSample); err != nil {
			log.Warn("sampling profile failed", "error", err)
		}
	}
	if profiles.model != nil {
		if err := profiles.model.LogClassificationModelStats(latency.Seconds(), predictions); err != nil {
			log.Warn("model profile failed", "error", err)
		}
	}

	return nil
}

func loadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			labels = append(labels, line)
		}
	}
	return labels, scanner.Err()
}

var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

func listImageFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
