package metric

import (
	"errors"
	"math"
	"sort"

	"github.com/lensai/edge-profiler/pkg/telemetryerrors"
)

// Confidence metric names, registered per imagesampler.h's four
// distributionBox members and matched against [sampling] thresholds.
// These are the literal strcmp names registerStatistics/computeConfidence
// switch on in imagesampler.cpp (no underscore, all caps).
const (
	MarginConfidence  = "MARGINCONFIDENCE"
	LeastConfidence   = "LEASTCONFIDENCE"
	RatioConfidence   = "RATIOCONFIDENCE"
	EntropyConfidence = "ENTROPYCONFIDENCE"
)

var errTooFewClasses = errors.New("fewer than two classes in probability distribution")

func sortedDescending(probs []float64) []float64 {
	out := make([]float64, len(probs))
	copy(out, probs)
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}

// MarginConfidenceScore is the gap between the top two class
// probabilities: a small margin means the model is uncertain between
// its two best guesses. Returns a SketchComputationError when fewer
// than two classes are given.
func MarginConfidenceScore(probs []float64, sorted bool) (float64, error) {
	if len(probs) < 2 {
		return 0, telemetryerrors.WrapSketchComputationError(MarginConfidence, errTooFewClasses)
	}
	s := probs
	if !sorted {
		s = sortedDescending(probs)
	}
	return s[0] - s[1], nil
}

// LeastConfidenceScore normalizes the top probability into an
// uncertainty score in [0, 1]: 0 means fully confident. Returns a
// SketchComputationError when fewer than two classes are given (the
// normalizing factor n/(n-1) is undefined for a single class).
func LeastConfidenceScore(probs []float64, sorted bool) (float64, error) {
	if len(probs) < 2 {
		return 0, telemetryerrors.WrapSketchComputationError(LeastConfidence, errTooFewClasses)
	}
	s := probs
	if !sorted {
		s = sortedDescending(probs)
	}
	n := float64(len(probs))
	return (1 - s[0]) * (n / (n - 1)), nil
}

// RatioConfidenceScore is the ratio of the second-best to the best
// probability; close to 1 means the top two classes are nearly tied.
// Returns a SketchComputationError when fewer than two classes are
// given.
func RatioConfidenceScore(probs []float64, sorted bool) (float64, error) {
	if len(probs) < 2 {
		return 0, telemetryerrors.WrapSketchComputationError(RatioConfidence, errTooFewClasses)
	}
	s := probs
	if !sorted {
		s = sortedDescending(probs)
	}
	if s[0] == 0 {
		return 0, nil
	}
	return s[1] / s[0], nil
}

// EntropyConfidenceScore is the Shannon entropy of the probability
// distribution, normalized to [0, 1] by the maximum possible entropy
// for the given number of classes. A single-class distribution has
// zero entropy by definition, not an error. Returns a
// SketchComputationError for an empty distribution.
func EntropyConfidenceScore(probs []float64) (float64, error) {
	if len(probs) == 0 {
		return 0, telemetryerrors.WrapSketchComputationError(EntropyConfidence, errTooFewClasses)
	}
	var entropy float64
	for _, p := range probs {
		if p <= 0 {
			continue
		}
		entropy -= p * math.Log2(p)
	}
	maxEntropy := math.Log2(float64(len(probs)))
	if maxEntropy == 0 {
		return 0, nil
	}
	return entropy / maxEntropy, nil
}
