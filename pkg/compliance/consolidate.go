package compliance

import (
	"fmt"
	"strings"
	"time"
)

// Consolidate renders the batch's free-text report: a summary of all
// actions, the detailed per-rule analysis, and the recommendation list, in
// submission order. It is pure aggregation over already-computed results,
// with no re-scoring, so the text can never disagree with the structured
// fields.
func Consolidate(actions []MaintenanceAction, results []ComplianceResult, now time.Time) string {
	// EvaluateBatch always hands over equal-length slices; a direct caller
	// with mismatched inputs gets the common prefix, not a panic.
	if len(results) > len(actions) {
		results = results[:len(actions)]
	} else if len(actions) > len(results) {
		actions = actions[:len(results)]
	}

	var b strings.Builder

	b.WriteString("Nuclear Maintenance Compliance Report (Consolidated)\n")
	b.WriteString("===================================\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", now.UTC().Format("2006-01-02 15:04:05"))

	b.WriteString("Summary of Maintenance Actions\n")
	b.WriteString("============================")
	for i, action := range actions {
		result := results[i]
		fmt.Fprintf(&b, "\nAction %d:\n", i+1)
		fmt.Fprintf(&b, "- ID: %s\n", action.ID)
		fmt.Fprintf(&b, "- Component: %s\n", action.Component)
		fmt.Fprintf(&b, "- Proposed Action: %s\n", action.ProposedAction)
		fmt.Fprintf(&b, "- Overall Compliance Status: %s", statusLabel(result.OverallCompliant))
	}

	b.WriteString("\n\nDetailed Compliance Analysis\n")
	b.WriteString("===========================")
	for i, result := range results {
		fmt.Fprintf(&b, "\n\nAction %d Details:\n------------------", i+1)
		if result.Warning != "" {
			fmt.Fprintf(&b, "\nWARNING: %s", result.Warning)
		}
		for _, d := range result.Details {
			fmt.Fprintf(&b, "\nRule: %s\n", d.RuleID)
			fmt.Fprintf(&b, "Source: %s\n", d.Source)
			fmt.Fprintf(&b, "Regulation Text: %s\n", d.RegulationText)
			fmt.Fprintf(&b, "Similarity Score: %.2f\n", d.SimilarityScore)
			fmt.Fprintf(&b, "Status: %s\n---", statusLabel(d.Compliant))
		}
	}

	b.WriteString("\n\nRecommendations\n")
	b.WriteString("===============")
	for i, result := range results {
		fmt.Fprintf(&b, "\n\nAction %d (%s):", i+1, actions[i].ID)
		for _, rec := range result.Recommendations() {
			b.WriteString("\n")
			b.WriteString(rec)
		}
	}

	return b.String()
}
