// Package api exposes the engine over HTTP: risk prediction for single
// readings and tabular uploads, compliance checks against the rule corpus,
// and liveness probing. Errors follow RFC 7807.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/plantops/sentinel/pkg/compliance"
	"github.com/plantops/sentinel/pkg/features"
	"github.com/plantops/sentinel/pkg/observability"
	"github.com/plantops/sentinel/pkg/scoring"
)

// PredictionResult is the wire form of one scored reading. Attribution is
// keyed by schema feature name, in the units of the raw model score.
type PredictionResult struct {
	ProductID             string             `json:"product_id,omitempty"`
	FailureProbability    float64            `json:"failure_probability"`
	CriticalityRank       int                `json:"criticality_rank"`
	MaintenanceSuggestion scoring.Suggestion `json:"maintenance_suggestion"`
	Attribution           map[string]float64 `json:"shap_values"`
}

// Service bundles the engine components behind the HTTP surface. All
// components are read-only after construction, so a single Service is safe
// for concurrent requests.
type Service struct {
	normalizer *features.Normalizer
	model      *scoring.Model
	advisor    *scoring.Advisor
	matcher    *compliance.Matcher
	schemas    *requestSchemas
	obs        *observability.Provider
	logger     *slog.Logger
	clock      func() time.Time
}

// NewService wires the scoring pipeline and the compliance matcher into one
// request-serving unit.
func NewService(normalizer *features.Normalizer, model *scoring.Model, advisor *scoring.Advisor, matcher *compliance.Matcher) (*Service, error) {
	if normalizer == nil || model == nil || advisor == nil || matcher == nil {
		return nil, fmt.Errorf("service requires normalizer, model, advisor and matcher")
	}
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	return &Service{
		normalizer: normalizer,
		model:      model,
		advisor:    advisor,
		matcher:    matcher,
		schemas:    schemas,
		obs:        &observability.Provider{},
		logger:     slog.Default().With("component", "api"),
		clock:      time.Now,
	}, nil
}

// WithClock overrides the health timestamp clock for testing.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// WithObservability routes engine operations through the provider's spans
// and RED metrics. The default is an uninitialized provider, which records
// nothing.
func (s *Service) WithObservability(p *observability.Provider) *Service {
	if p != nil {
		s.obs = p
	}
	return s
}

// PredictEncoded scores one pre-encoded reading: six numbers in schema
// order with the machine type already mapped to its ordinal.
func (s *Service) PredictEncoded(ctx context.Context, values [features.NumFeatures]float64, productID string) (PredictionResult, error) {
	ctx, finish := s.obs.TrackOperation(ctx, "scoring.predict", observability.AttrSubjectID.String(productID))

	vector, err := s.normalizer.NormalizeEncoded(values)
	if err != nil {
		finish(err)
		return PredictionResult{}, err
	}
	result := s.resultFor(vector, productID)
	result.CriticalityRank = 1

	observability.AddSpanEvent(ctx, "risk.assessed",
		observability.ScoringOperation(productID, result.MaintenanceSuggestion.Severity.String())...)
	finish(nil)
	return result, nil
}

// PredictBatch scores raw rows and assigns each a criticality rank: 1 for
// the highest failure probability, counting up. Results keep the input
// order; the rank alone carries the prioritization.
func (s *Service) PredictBatch(ctx context.Context, rows []tabularRow) ([]PredictionResult, error) {
	ctx, finish := s.obs.TrackOperation(ctx, "scoring.predict_batch")

	results := make([]PredictionResult, len(rows))
	for i, row := range rows {
		vector, err := s.normalizer.Normalize(row.Reading)
		if err != nil {
			err = fmt.Errorf("row %d: %w", i+2, err)
			finish(err)
			return nil, err
		}
		results[i] = s.resultFor(vector, row.ProductID)
	}

	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return results[order[a]].FailureProbability > results[order[b]].FailureProbability
	})
	for rank, idx := range order {
		results[idx].CriticalityRank = rank + 1
	}

	if len(order) > 0 {
		top := results[order[0]]
		observability.AddSpanEvent(ctx, "batch.ranked",
			observability.ScoringOperation(top.ProductID, top.MaintenanceSuggestion.Severity.String())...)
	}
	finish(nil)
	return results, nil
}

func (s *Service) resultFor(vector features.FeatureVector, productID string) PredictionResult {
	assessment := s.model.Score(vector)
	assessment.SubjectID = productID

	attribution := make(map[string]float64, len(assessment.Attribution))
	for name, value := range assessment.Attribution {
		attribution[string(name)] = value
	}
	return PredictionResult{
		ProductID:             productID,
		FailureProbability:    assessment.FailureProbability,
		MaintenanceSuggestion: s.advisor.Advise(assessment),
		Attribution:           attribution,
	}
}

// CheckCompliance evaluates the actions against the corpus in submission
// order.
func (s *Service) CheckCompliance(ctx context.Context, actions []compliance.MaintenanceAction) ([]compliance.ComplianceResult, error) {
	ctx, finish := s.obs.TrackOperation(ctx, "compliance.evaluate_batch")

	results, err := s.matcher.EvaluateBatch(ctx, actions)
	if err != nil {
		observability.SetSpanStatus(ctx, err)
		finish(err)
		return nil, err
	}
	for _, res := range results {
		observability.AddSpanEvent(ctx, "action.evaluated",
			observability.ComplianceOperation(res.ActionID, string(res.Outcome), res.OverallCompliant)...)
	}
	finish(nil)
	return results, nil
}
