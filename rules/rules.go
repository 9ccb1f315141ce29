package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/nexus-outreach/sdk/scoring"
)

// Rule pairs a boolean CEL expression with the recommendation to emit when
// it evaluates true. The expression sees four double variables: readiness,
// momentum, intent and context, all on the 0-100 scale.
type Rule struct {
	// Name identifies the rule in error messages.
	Name string `json:"name" yaml:"name"`

	// Expr is the CEL expression, e.g. "momentum >= 60.0 && intent > 0.0".
	Expr string `json:"expr" yaml:"expr"`

	// Recommendation is emitted when the expression is true.
	Recommendation scoring.Recommendation `json:"recommendation" yaml:"recommendation"`
}

// compiledRule is a rule with its evaluable program.
type compiledRule struct {
	rule    Rule
	program cel.Program
}

// RuleSet is an ordered list of compiled rules implementing
// scoring.RecommendationPolicy. Evaluation is first match wins; a set where
// nothing matches reports no recommendation so the caller can fall back to
// its defaults.
type RuleSet struct {
	rules []compiledRule
}

// NewRuleSet compiles the given rules. Every expression must type-check as
// bool against the score variables; the first rule that fails aborts
// compilation.
func NewRuleSet(rs []Rule) (*RuleSet, error) {
	env, err := cel.NewEnv(
		cel.Variable("readiness", cel.DoubleType),
		cel.Variable("momentum", cel.DoubleType),
		cel.Variable("intent", cel.DoubleType),
		cel.Variable("context", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rule environment: %w", err)
	}

	set := &RuleSet{rules: make([]compiledRule, 0, len(rs))}
	for _, r := range rs {
		if r.Expr == "" {
			return nil, fmt.Errorf("rule %q: empty expression", r.Name)
		}
		ast, issues := env.Compile(r.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, issues.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("rule %q: expression must evaluate to bool, got %s",
				r.Name, ast.OutputType())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		set.rules = append(set.rules, compiledRule{rule: r, program: program})
	}
	return set, nil
}

// Len returns the number of compiled rules.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// Recommend evaluates the rules in order against the given scores and
// returns the recommendation of the first rule that evaluates true. A rule
// whose evaluation errors is skipped.
func (s *RuleSet) Recommend(scores scoring.ComponentScores, readiness float64) (scoring.Recommendation, bool) {
	activation := map[string]any{
		"readiness": readiness,
		"momentum":  scores.Timing,
		"intent":    scores.Intent,
		"context":   scores.Context,
	}

	for _, cr := range s.rules {
		out, _, err := cr.program.Eval(activation)
		if err != nil {
			continue
		}
		if matched, ok := out.Value().(bool); ok && matched {
			return cr.rule.Recommendation, true
		}
	}
	return "", false
}
