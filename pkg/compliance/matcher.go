package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/plantops/sentinel/pkg/corpus"
)

// MatcherConfig tunes compliance evaluation. Thresholds are configured per
// deployment, never per call.
type MatcherConfig struct {
	// TopK is how many candidate rules are retrieved per action.
	TopK int `yaml:"top_k" json:"top_k"`
	// Threshold is the similarity at or above which a matched rule counts
	// as complied with.
	Threshold float64 `yaml:"threshold" json:"threshold"`
	// SourceThresholds override Threshold for specific rule sources.
	SourceThresholds map[string]float64 `yaml:"source_thresholds,omitempty" json:"source_thresholds,omitempty"`
	// MinConfidence is the retrieval score below which a match carries no
	// evidential weight. If no rule reaches it the result is flagged.
	MinConfidence float64 `yaml:"min_confidence" json:"min_confidence"`
	// AggregationExpr overrides the default overall-compliance policy.
	AggregationExpr string `yaml:"aggregation_expr,omitempty" json:"aggregation_expr,omitempty"`
}

// DefaultMatcherConfig returns the nominal evaluation policy.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		TopK:          5,
		Threshold:     0.7,
		MinConfidence: 0.3,
	}
}

// NoMatchWarning is the warning attached when retrieval finds nothing
// sufficiently similar.
const NoMatchWarning = "No closely matching regulation found. Please review against current regulatory guidelines and safety standards."

// Matcher evaluates maintenance actions against the published corpus
// snapshot. Evaluation is stateless per request; concurrent calls share
// only the read-only index.
type Matcher struct {
	snapshot *corpus.Snapshot
	cfg      MatcherConfig
	policy   *AggregationPolicy
	logger   *slog.Logger
	clock    func() time.Time
}

// NewMatcher validates the configuration and compiles the aggregation policy.
func NewMatcher(snapshot *corpus.Snapshot, cfg MatcherConfig) (*Matcher, error) {
	if snapshot == nil || snapshot.Current() == nil {
		return nil, fmt.Errorf("matcher requires a published corpus snapshot")
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", cfg.TopK)
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be in (0, 1], got %g", cfg.Threshold)
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > cfg.Threshold {
		return nil, fmt.Errorf("min_confidence must be in [0, threshold], got %g", cfg.MinConfidence)
	}

	policy, err := NewAggregationPolicy(cfg.AggregationExpr)
	if err != nil {
		return nil, err
	}

	return &Matcher{
		snapshot: snapshot,
		cfg:      cfg,
		policy:   policy,
		logger:   slog.Default().With("component", "compliance"),
		clock:    time.Now,
	}, nil
}

// WithClock overrides the report clock for testing.
func (m *Matcher) WithClock(clock func() time.Time) *Matcher {
	m.clock = clock
	return m
}

func (m *Matcher) thresholdFor(source string) float64 {
	if t, ok := m.cfg.SourceThresholds[source]; ok {
		return t
	}
	return m.cfg.Threshold
}

// Evaluate checks one action against the corpus: validate eagerly, retrieve
// the top-k candidates, classify each by similarity threshold, and decide
// overall compliance through the aggregation policy. The attached report
// reflects exactly the computed details.
func (m *Matcher) Evaluate(ctx context.Context, action MaintenanceAction) (ComplianceResult, error) {
	if err := action.Validate(); err != nil {
		return ComplianceResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return ComplianceResult{}, err
	}

	index := m.snapshot.Current()
	matches := index.Retrieve(action.comparisonText(), m.cfg.TopK)

	// Matches below the confidence floor carry no evidential weight and are
	// dropped; details hold only matches the policy should judge.
	details := make([]ComplianceDetail, 0, len(matches))
	for _, match := range matches {
		if match.Score < m.cfg.MinConfidence {
			continue
		}
		details = append(details, ComplianceDetail{
			RuleID:          match.Rule.RuleID,
			Source:          match.Rule.Source,
			Category:        match.Rule.Category,
			RegulationText:  match.Rule.RegulationText,
			SimilarityScore: match.Score,
			Compliant:       match.Score >= m.thresholdFor(match.Rule.Source),
		})
	}
	matched := len(details) > 0

	overall, err := m.policy.Decide(details, matched)
	if err != nil {
		m.logger.ErrorContext(ctx, "aggregation policy failed", "action_id", action.ID, "error", err)
		return ComplianceResult{}, err
	}

	result := ComplianceResult{
		ActionID:         action.ID,
		OverallCompliant: overall,
		Details:          details,
	}
	switch {
	case !matched:
		result.Outcome = OutcomeNoConfidentMatch
		result.Warning = NoMatchWarning
		// Absence of evidence is not evidence of compliance.
		result.OverallCompliant = false
	case overall:
		result.Outcome = OutcomeCompliant
	default:
		result.Outcome = OutcomeNonCompliant
	}

	result.Report = m.buildReport(action, result)
	return result, nil
}

// EvaluateBatch evaluates actions in parallel and returns results in
// submission order. An invalid action fails the whole batch with an error
// naming it; silent omission is unacceptable in a compliance context.
// Empty input yields an empty batch, not an error.
func (m *Matcher) EvaluateBatch(ctx context.Context, actions []MaintenanceAction) ([]ComplianceResult, error) {
	for i, action := range actions {
		if err := action.Validate(); err != nil {
			return nil, fmt.Errorf("action %d (%q): %w", i, action.ID, err)
		}
	}

	results := make([]ComplianceResult, len(actions))
	g, gctx := errgroup.WithContext(ctx)
	for i, action := range actions {
		g.Go(func() error {
			result, err := m.Evaluate(gctx, action)
			if err != nil {
				return fmt.Errorf("action %d (%q): %w", i, action.ID, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	consolidated := Consolidate(actions, results, m.clock())
	for i := range results {
		results[i].ConsolidatedReport = consolidated
	}
	return results, nil
}
