package compliance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAggregationPolicyDefaults(t *testing.T) {
	p, err := NewAggregationPolicy("")
	require.NoError(t, err)
	require.Equal(t, DefaultAggregationExpr, p.Expr())
}

func TestNewAggregationPolicyRejectsInvalid(t *testing.T) {
	_, err := NewAggregationPolicy("not a ( valid expression")
	require.Error(t, err)
}

func TestNewAggregationPolicyRejectsNonBool(t *testing.T) {
	_, err := NewAggregationPolicy(`details.size()`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bool")
}

func TestDefaultPolicyAllMustPass(t *testing.T) {
	p, err := NewAggregationPolicy("")
	require.NoError(t, err)

	allPass := []ComplianceDetail{
		{RuleID: "R-1", Compliant: true},
		{RuleID: "R-2", Compliant: true},
	}
	ok, err := p.Decide(allPass, true)
	require.NoError(t, err)
	require.True(t, ok)

	oneFails := []ComplianceDetail{
		{RuleID: "R-1", Compliant: true},
		{RuleID: "R-2", Compliant: false},
	}
	ok, err = p.Decide(oneFails, true)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDefaultPolicyUnmatchedNeverCompliant(t *testing.T) {
	p, err := NewAggregationPolicy("")
	require.NoError(t, err)

	// Even with every detail passing, matched=false decides non-compliant.
	ok, err := p.Decide([]ComplianceDetail{{RuleID: "R-1", Compliant: true}}, false)
	require.NoError(t, err)
	require.False(t, ok)

	// Vacuous all() over no details must not flip the decision either.
	ok, err = p.Decide(nil, false)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCustomPolicyExpression(t *testing.T) {
	// Any single passing high-similarity match suffices.
	p, err := NewAggregationPolicy(`matched && details.exists(d, d.compliant && d.similarity >= 0.8)`)
	require.NoError(t, err)

	details := []ComplianceDetail{
		{RuleID: "R-1", SimilarityScore: 0.91, Compliant: true},
		{RuleID: "R-2", SimilarityScore: 0.40, Compliant: false},
	}
	ok, err := p.Decide(details, true)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = p.Decide(details[1:], true)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPolicyPerSourceExpression(t *testing.T) {
	p, err := NewAggregationPolicy(`matched && details.all(d, d.source != "NRC" || d.compliant)`)
	require.NoError(t, err)

	details := []ComplianceDetail{
		{RuleID: "N-1", Source: "NRC", Compliant: true},
		{RuleID: "A-1", Source: "ASME", Compliant: false},
	}
	ok, err := p.Decide(details, true)
	require.NoError(t, err)
	require.True(t, ok)
}
