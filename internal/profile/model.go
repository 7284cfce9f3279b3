package profile

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lensai/edge-profiler/internal/config"
	"github.com/lensai/edge-profiler/internal/metric/modelparser"
	"github.com/lensai/edge-profiler/pkg/logger"
)

const (
	inferenceLatencyMetric  = "inference_latency"
	classificationFrequency = "classification"
	embeddingNormMetric     = "embedding_norm"
)

// ModelProfile logs classification model statistics, the Go analogue
// of modelprofile.h's ModelProfile class: one quantile sketch per
// predicted class plus a frequent-items sketch over the class label of
// every result, keyed under the model's own id.
type ModelProfile struct {
	*base
	modelID string
}

// NewModelProfile constructs a ModelProfile from the [model] section
// of the parsed configuration.
func NewModelProfile(modelID string, cfg config.ProfileConfig, intervalSeconds int, log *logger.Logger) (*ModelProfile, error) {
	b, err := newBase(cfg, intervalSeconds, "model-profile:"+modelID, log)
	if err != nil {
		return nil, err
	}
	p := &ModelProfile{base: b, modelID: modelID}
	if cfg.Enabled(inferenceLatencyMetric) {
		if _, err := p.ensureQuantile(inferenceLatencyMetric); err != nil {
			return nil, err
		}
	}
	if cfg.Enabled(classificationFrequency) {
		if _, err := p.ensureFrequency(p.classificationMetricName(), classificationFrequencyCapacity); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *ModelProfile) classificationMetricName() string {
	return p.modelID + "_" + classificationFrequency
}

func (p *ModelProfile) classMetricName(classIndex int) string {
	return p.modelID + strconv.Itoa(classIndex)
}

// LogClassificationModelStats records inference latency and, for each
// predicted class, its probability in a per-class quantile sketch and
// its class label in the shared frequent-items sketch, matching
// modelprofile.cpp's per-result loop (one sketch1->update call per
// result, not just the winner).
func (p *ModelProfile) LogClassificationModelStats(inferenceLatency float64, results []modelparser.Prediction) error {
	if p.cfg.Enabled(inferenceLatencyMetric) {
		if err := p.registry.UpdateQuantile(inferenceLatencyMetric, inferenceLatency); err != nil {
			p.log.Warn("failed to update inference latency sketch", "error", err)
		}
	}

	classificationEnabled := p.cfg.Enabled(classificationFrequency)
	for i := range results {
		r := results[i]
		name := p.classMetricName(r.ClassIndex)
		if _, err := p.ensureQuantile(name); err != nil {
			p.log.Warn("failed to register class sketch", "class", r.ClassIndex, "error", err)
			continue
		}
		if err := p.registry.UpdateQuantile(name, r.Probability); err != nil {
			p.log.Warn("failed to update class sketch", "class", r.ClassIndex, "error", err)
		}
		if classificationEnabled {
			if err := p.registry.UpdateFrequency(p.classificationMetricName(), strconv.Itoa(r.ClassIndex)); err != nil {
				p.log.Warn("failed to update classification frequency sketch", "error", err)
			}
		}
	}

	p.saver.TriggerSave()
	return nil
}

// LogEmbeddings records the L2 norm of an embedding vector in a
// quantile sketch. Supplements the distillation's dropped embedding
// logging with a scalar summary rather than the full vector, keeping
// the same sketch-of-scalars design the rest of the system uses.
func (p *ModelProfile) LogEmbeddings(embeddings []float64) error {
	if len(embeddings) == 0 {
		return fmt.Errorf("log embeddings: empty vector")
	}
	var sumSq float64
	for _, v := range embeddings {
		sumSq += v * v
	}
	norm := math.Sqrt(sumSq)

	if _, err := p.ensureQuantile(embeddingNormMetric); err != nil {
		return err
	}
	return p.registry.UpdateQuantile(embeddingNormMetric, norm)
}
