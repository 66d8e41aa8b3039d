package compliance

// Outcome is the tagged state of one compliance evaluation, so boundary
// code can handle the three cases exhaustively instead of probing optional
// fields.
type Outcome string

const (
	// OutcomeCompliant: rules matched confidently and every detail passed.
	OutcomeCompliant Outcome = "COMPLIANT"
	// OutcomeNonCompliant: rules matched confidently and at least one
	// detail failed.
	OutcomeNonCompliant Outcome = "NON_COMPLIANT"
	// OutcomeNoConfidentMatch: no rule met the minimum retrieval
	// confidence. Absence of evidence is not evidence of compliance; the
	// result never reports compliant in this state.
	OutcomeNoConfidentMatch Outcome = "NO_CONFIDENT_MATCH"
)

// ComplianceDetail is the evaluation of one matched rule for one action.
type ComplianceDetail struct {
	RuleID          string  `json:"rule_id"`
	Source          string  `json:"source"`
	Category        string  `json:"category,omitempty"`
	RegulationText  string  `json:"regulation_text"`
	SimilarityScore float64 `json:"similarity_score"`
	Compliant       bool    `json:"compliant"`
}

// ComplianceResult is the immutable outcome of evaluating one action.
// Details are ordered by descending similarity score.
type ComplianceResult struct {
	ActionID           string             `json:"action_id"`
	Outcome            Outcome            `json:"outcome"`
	OverallCompliant   bool               `json:"overall_compliant"`
	Details            []ComplianceDetail `json:"compliance_details"`
	Warning            string             `json:"warning,omitempty"`
	Report             *Report            `json:"report,omitempty"`
	ConsolidatedReport string             `json:"consolidated_report,omitempty"`
}

// Recommendations renders the per-action call-outs. Each line carries a
// fixed prefix per classification ("✓" compliant, "⚠" non-compliant,
// "ℹ" informational) so the presentation layer can pick icons without
// re-deriving the classification.
func (r ComplianceResult) Recommendations() []string {
	switch r.Outcome {
	case OutcomeCompliant:
		return []string{"✓ The maintenance action complies with nuclear safety regulations."}
	case OutcomeNoConfidentMatch:
		return []string{
			"ℹ No closely matching regulation was found for this action.",
			"⚠ Review the action manually against current regulatory guidance before proceeding.",
		}
	default:
		out := []string{"⚠ ATTENTION: This action requires revision to ensure compliance:"}
		for _, d := range r.Details {
			if !d.Compliant {
				out = append(out, "  - Review and align with "+d.RuleID+" ("+d.Source+")")
			}
		}
		out = append(out,
			"  - Consult with nuclear safety officers",
			"  - Document all modifications and justifications",
		)
		return out
	}
}
