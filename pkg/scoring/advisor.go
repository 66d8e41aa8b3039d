package scoring

import (
	"fmt"
	"strings"

	"github.com/plantops/sentinel/pkg/features"
)

// Severity is the maintenance urgency tier derived from a failure probability.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	}
	return "Unknown"
}

// Thresholds are the probability cut points between severity tiers:
// probability > High → SeverityHigh, probability > Medium → SeverityMedium,
// otherwise SeverityLow.
type Thresholds struct {
	High   float64 `yaml:"high" json:"high"`
	Medium float64 `yaml:"medium" json:"medium"`
}

// DefaultThresholds returns the nominal tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.7, Medium: 0.3}
}

// Suggestion is the actionable outcome of an assessment. Identical
// assessments always produce identical suggestions.
type Suggestion struct {
	Severity     Severity `json:"severity"`
	Action       string   `json:"action"`
	Reason       string   `json:"reason"`
	Instructions []string `json:"instructions"`
}

// Advisor turns risk assessments into maintenance suggestions using fixed
// per-feature message templates and severity-dependent checklists.
type Advisor struct {
	thresholds Thresholds
}

// NewAdvisor validates the tier boundaries and returns an advisor.
func NewAdvisor(t Thresholds) (*Advisor, error) {
	if t.Medium <= 0 || t.High >= 1 || t.Medium >= t.High {
		return nil, fmt.Errorf("invalid severity thresholds: medium=%g high=%g", t.Medium, t.High)
	}
	return &Advisor{thresholds: t}, nil
}

// SeverityFor maps a failure probability to its tier.
func (a *Advisor) SeverityFor(probability float64) Severity {
	switch {
	case probability > a.thresholds.High:
		return SeverityHigh
	case probability > a.thresholds.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Advise derives a maintenance suggestion from an assessment. The two
// top-ranked attributions select the reason text; the leading
// risk-increasing feature selects the action and checklist.
func (a *Advisor) Advise(assessment RiskAssessment) Suggestion {
	severity := a.SeverityFor(assessment.FailureProbability)
	ranked := assessment.Ranked()

	var reasons []string
	for i := 0; i < len(ranked) && i < 2; i++ {
		reasons = append(reasons, reasonFor(ranked[i]))
	}

	leading, found := leadingDriver(ranked)
	action := generalAction
	steps := generalChecklist
	if found {
		t := templates[leading]
		action = t.Action
		steps = t.Checklist
	}

	return Suggestion{
		Severity:     severity,
		Action:       action,
		Reason:       strings.Join(reasons, " "),
		Instructions: instructionsFor(severity, steps),
	}
}

// leadingDriver returns the highest-ranked feature whose contribution
// increases risk.
func leadingDriver(ranked []Contribution) (features.FeatureName, bool) {
	for _, c := range ranked {
		if c.Value > 0 {
			if _, ok := templates[c.Feature]; ok {
				return c.Feature, true
			}
		}
	}
	return "", false
}

func reasonFor(c Contribution) string {
	t, ok := templates[c.Feature]
	if !ok {
		return fmt.Sprintf("%s is a contributing factor.", c.Feature)
	}
	if c.Value > 0 {
		return t.Increasing
	}
	return t.Decreasing
}

// instructionsFor renders the ordered checklist for a tier: the severity
// prelude, the feature-specific steps, then the closing documentation step.
func instructionsFor(severity Severity, steps []string) []string {
	out := make([]string, 0, len(steps)+2)
	switch severity {
	case SeverityHigh:
		out = append(out, "Stop machine operation and isolate the equipment")
	case SeverityMedium:
		out = append(out, "Schedule inspection within the current maintenance window")
	default:
		out = append(out, "Continue operation under routine monitoring")
	}
	out = append(out, steps...)
	out = append(out, "Document the intervention in the maintenance log")
	return out
}
