package compliance

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"
)

// reportNamespace scopes the deterministic report IDs. Report IDs are
// UUIDv5 over (action ID, corpus-independent status digest) so re-running
// an unchanged evaluation reproduces the same ID for audit trails.
var reportNamespace = uuid.MustParse("6e1f8c1a-9d74-5b6f-8c3a-2f1d0b9e4a55")

// ReportAction echoes the evaluated action's details in the report.
type ReportAction struct {
	ID             string `json:"id"`
	Component      string `json:"component"`
	ProposedAction string `json:"proposed_action"`
	Description    string `json:"description"`
}

// ReportDetail is one matched rule as rendered in the report, in ranked
// order.
type ReportDetail struct {
	RuleID          string  `json:"rule_id"`
	Source          string  `json:"source"`
	Regulation      string  `json:"regulation"`
	SimilarityScore float64 `json:"similarity_score"`
	Status          string  `json:"status"`
}

// Report is the structured per-action compliance report. It strictly
// reflects the already-computed ComplianceResult; nothing is re-scored.
type Report struct {
	ReportID         string         `json:"report_id"`
	Timestamp        time.Time      `json:"timestamp"`
	ActionDetails    ReportAction   `json:"action_details"`
	ComplianceStatus string         `json:"compliance_status"`
	Warning          string         `json:"warning,omitempty"`
	Details          []ReportDetail `json:"details"`
	Recommendations  []string       `json:"recommendations"`
	ContentHash      string         `json:"content_hash"`
}

func statusLabel(compliant bool) string {
	if compliant {
		return "COMPLIANT"
	}
	return "NON-COMPLIANT"
}

func (m *Matcher) buildReport(action MaintenanceAction, result ComplianceResult) *Report {
	report := &Report{
		Timestamp: m.clock().UTC(),
		ActionDetails: ReportAction{
			ID:             action.ID,
			Component:      action.Component,
			ProposedAction: action.ProposedAction,
			Description:    action.Description,
		},
		ComplianceStatus: statusLabel(result.OverallCompliant),
		Warning:          result.Warning,
		Details:          make([]ReportDetail, len(result.Details)),
		Recommendations:  result.Recommendations(),
	}
	for i, d := range result.Details {
		report.Details[i] = ReportDetail{
			RuleID:          d.RuleID,
			Source:          d.Source,
			Regulation:      d.RegulationText,
			SimilarityScore: d.SimilarityScore,
			Status:          statusLabel(d.Compliant),
		}
	}

	report.ContentHash = report.canonicalHash()
	report.ReportID = uuid.NewSHA1(reportNamespace, []byte(action.ID+":"+report.ContentHash)).String()
	return report
}

// canonicalHash digests the decision content of the report over RFC 8785
// canonical JSON, excluding the timestamp and the ID derived from the hash
// itself. Identical evaluations against an unchanged corpus produce the
// same hash, which is the audit-trail determinism guarantee.
func (r *Report) canonicalHash() string {
	content := struct {
		ActionDetails    ReportAction   `json:"action_details"`
		ComplianceStatus string         `json:"compliance_status"`
		Warning          string         `json:"warning,omitempty"`
		Details          []ReportDetail `json:"details"`
		Recommendations  []string       `json:"recommendations"`
	}{r.ActionDetails, r.ComplianceStatus, r.Warning, r.Details, r.Recommendations}

	raw, err := json.Marshal(content)
	if err != nil {
		return ""
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(sum[:])
}
