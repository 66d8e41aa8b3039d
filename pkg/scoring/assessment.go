// Package scoring maps normalized feature vectors to failure probabilities
// with an additive per-feature attribution, and derives maintenance advice
// from the result.
package scoring

import (
	"math"
	"sort"

	"github.com/plantops/sentinel/pkg/features"
)

// Contribution is one feature's signed share of the model's raw score.
type Contribution struct {
	Feature features.FeatureName `json:"feature"`
	Value   float64              `json:"value"`
}

// RiskAssessment is the immutable output of one scoring call.
//
// The attribution is an additive decomposition of the raw score:
// Baseline + sum of all attribution values equals the pre-transform score
// (the logit), within floating-point tolerance. FailureProbability is the
// logistic transform of that score.
type RiskAssessment struct {
	SubjectID          string                           `json:"subject_id,omitempty"`
	FailureProbability float64                          `json:"failure_probability"`
	Baseline           float64                          `json:"baseline"`
	Attribution        map[features.FeatureName]float64 `json:"attribution"`
	CriticalityRank    int                              `json:"criticality_rank,omitempty"`
}

// RawScore reconstructs the pre-transform score from the decomposition.
func (a RiskAssessment) RawScore() float64 {
	score := a.Baseline
	for _, v := range a.Attribution {
		score += v
	}
	return score
}

// Ranked returns the attribution ordered by descending absolute value,
// ties broken by schema order for determinism.
func (a RiskAssessment) Ranked() []Contribution {
	ranked := make([]Contribution, 0, len(a.Attribution))
	for _, name := range features.Schema {
		if v, ok := a.Attribution[name]; ok {
			ranked = append(ranked, Contribution{Feature: name, Value: v})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Value) > math.Abs(ranked[j].Value)
	})
	return ranked
}
