package scoring

import (
	"fmt"
	"math"

	"github.com/plantops/sentinel/pkg/features"
)

// Model is a fitted logistic scorer over the standardized feature space.
//
// The raw score is intercept + Σ w_j·z_j; the failure probability is the
// logistic transform of the raw score. Each term w_j·z_j is the feature's
// marginal contribution relative to the training baseline (the scaled
// origin), which makes the attribution additive by construction.
type Model struct {
	intercept float64
	weights   [features.NumFeatures]float64
}

// NewModel builds a scorer from fitted parameters, indexed by schema order.
func NewModel(intercept float64, weights [features.NumFeatures]float64) (*Model, error) {
	allZero := true
	for _, w := range weights {
		if w != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return nil, fmt.Errorf("model has no non-zero weights")
	}
	return &Model{intercept: intercept, weights: weights}, nil
}

// Score computes the failure probability and per-feature attribution for a
// normalized vector. Deterministic: the same vector always produces the
// same assessment.
func (m *Model) Score(v features.FeatureVector) RiskAssessment {
	attribution := make(map[features.FeatureName]float64, features.NumFeatures)
	score := m.intercept
	for i := 0; i < features.NumFeatures; i++ {
		c := m.weights[i] * v[i]
		attribution[features.Schema[i]] = c
		score += c
	}
	return RiskAssessment{
		FailureProbability: sigmoid(score),
		Baseline:           m.intercept,
		Attribution:        attribution,
	}
}

// Baseline returns the raw score of a vector at the training mean.
func (m *Model) Baseline() float64 { return m.intercept }

func sigmoid(x float64) float64 {
	// Split to avoid overflow in exp for large |x|.
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
