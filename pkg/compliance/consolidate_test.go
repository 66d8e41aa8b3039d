package compliance

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConsolidateFormat(t *testing.T) {
	actions := []MaintenanceAction{
		{
			ID:             "act-001",
			Component:      "Coolant Pump",
			Description:    "Replace the seal assembly.",
			ProposedAction: "Replace seal.",
		},
		{
			ID:             "act-002",
			Component:      "Polar Crane",
			Description:    "Certify the crane.",
			ProposedAction: "Run load certification.",
		},
	}
	results := []ComplianceResult{
		{
			ActionID:         "act-001",
			Outcome:          OutcomeCompliant,
			OverallCompliant: true,
			Details: []ComplianceDetail{
				{RuleID: "PUMP-1", Source: "NRC", RegulationText: "Seal regulation text.", SimilarityScore: 0.913, Compliant: true},
			},
		},
		{
			ActionID: "act-002",
			Outcome:  OutcomeNoConfidentMatch,
			Warning:  NoMatchWarning,
		},
	}

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	text := Consolidate(actions, results, now)

	require.True(t, strings.HasPrefix(text, "Nuclear Maintenance Compliance Report (Consolidated)\n"))
	require.Contains(t, text, "Generated on: 2026-03-14 09:26:53")

	require.Contains(t, text, "Summary of Maintenance Actions")
	require.Contains(t, text, "Action 1:\n- ID: act-001")
	require.Contains(t, text, "- Component: Coolant Pump")
	require.Contains(t, text, "- Overall Compliance Status: COMPLIANT")
	require.Contains(t, text, "Action 2:\n- ID: act-002")
	require.Contains(t, text, "- Overall Compliance Status: NON-COMPLIANT")

	require.Contains(t, text, "Detailed Compliance Analysis")
	require.Contains(t, text, "Rule: PUMP-1")
	require.Contains(t, text, "Similarity Score: 0.91")
	require.Contains(t, text, "Status: COMPLIANT")
	require.Contains(t, text, "WARNING: "+NoMatchWarning)

	require.Contains(t, text, "Recommendations")
	require.Contains(t, text, "Action 1 (act-001):")
	require.Contains(t, text, "✓ The maintenance action complies with nuclear safety regulations.")
	require.Contains(t, text, "⚠ Review the action manually against current regulatory guidance before proceeding.")
}

func TestConsolidateSubmissionOrder(t *testing.T) {
	actions := []MaintenanceAction{
		{ID: "z-last", Component: "C", Description: "D", ProposedAction: "P"},
		{ID: "a-first", Component: "C", Description: "D", ProposedAction: "P"},
	}
	results := []ComplianceResult{
		{ActionID: "z-last", Outcome: OutcomeCompliant, OverallCompliant: true},
		{ActionID: "a-first", Outcome: OutcomeCompliant, OverallCompliant: true},
	}

	text := Consolidate(actions, results, time.Now())
	// Submission order, not lexical order.
	require.Less(t, strings.Index(text, "z-last"), strings.Index(text, "a-first"))
}

func TestConsolidateDeterministic(t *testing.T) {
	actions := []MaintenanceAction{
		{ID: "act-001", Component: "Pump", Description: "D", ProposedAction: "P"},
	}
	results := []ComplianceResult{
		{ActionID: "act-001", Outcome: OutcomeNonCompliant, Details: []ComplianceDetail{
			{RuleID: "R-1", Source: "NRC", RegulationText: "T", SimilarityScore: 0.5},
		}},
	}

	now := time.Now()
	first := Consolidate(actions, results, now)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Consolidate(actions, results, now))
	}
}

func TestConsolidateMismatchedLengths(t *testing.T) {
	actions := []MaintenanceAction{
		{ID: "act-001", Component: "Pump", Description: "D", ProposedAction: "P"},
		{ID: "act-002", Component: "Crane", Description: "D", ProposedAction: "P"},
	}
	results := []ComplianceResult{
		{ActionID: "act-001", Outcome: OutcomeCompliant, OverallCompliant: true},
	}

	// Extra actions without a result are dropped, not a panic.
	text := Consolidate(actions, results, time.Now())
	require.Contains(t, text, "act-001")
	require.NotContains(t, text, "act-002")

	// Extra results without an action likewise.
	text = Consolidate(actions[:1], append(results, ComplianceResult{ActionID: "act-003"}), time.Now())
	require.Contains(t, text, "act-001")
	require.NotContains(t, text, "act-003")
}
