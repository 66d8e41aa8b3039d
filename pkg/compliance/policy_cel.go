package compliance

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// DefaultAggregationExpr is the conservative default: the action is
// compliant only when rules matched confidently and every returned detail
// passed. A single failing match fails the whole action.
const DefaultAggregationExpr = `matched && details.all(d, d.compliant)`

// AggregationPolicy decides overall compliance from the per-rule details.
// The policy is a CEL expression over `details` (list of per-rule maps) and
// `matched` (false when no rule met the minimum retrieval confidence), so
// the aggregation rule is configurable without code changes.
type AggregationPolicy struct {
	expr    string
	program cel.Program
}

// NewAggregationPolicy compiles an aggregation expression.
func NewAggregationPolicy(expr string) (*AggregationPolicy, error) {
	if expr == "" {
		expr = DefaultAggregationExpr
	}

	env, err := cel.NewEnv(
		cel.Variable("details", cel.ListType(cel.DynType)),
		cel.Variable("matched", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile aggregation policy: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("aggregation policy must evaluate to bool, got %s", ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("plan aggregation policy: %w", err)
	}
	return &AggregationPolicy{expr: expr, program: program}, nil
}

// Expr returns the policy's source expression.
func (p *AggregationPolicy) Expr() string { return p.expr }

// Decide evaluates the policy over the details of one action. matched is
// false when no rule met the minimum retrieval confidence; the default
// policy then always decides non-compliant.
func (p *AggregationPolicy) Decide(details []ComplianceDetail, matched bool) (bool, error) {
	input := make([]map[string]any, len(details))
	for i, d := range details {
		input[i] = map[string]any{
			"rule_id":    d.RuleID,
			"source":     d.Source,
			"similarity": d.SimilarityScore,
			"compliant":  d.Compliant,
		}
	}

	out, _, err := p.program.Eval(map[string]any{
		"details": input,
		"matched": matched,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate aggregation policy: %w", err)
	}
	decision, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("aggregation policy returned %T, want bool", out.Value())
	}
	return decision, nil
}
