// Package rules provides CEL-based recommendation policies.
//
// A RuleSet compiles a list of boolean CEL expressions over the score
// variables (readiness, momentum, intent, context) and evaluates them in
// order, first match wins. It plugs into the scoring package as a
// RecommendationPolicy, letting deployments recalibrate the decision table
// from configuration without code changes:
//
//	set, err := rules.NewRuleSet([]rules.Rule{
//	    {Name: "hot", Expr: "readiness >= 75.0 && momentum >= 60.0",
//	        Recommendation: scoring.RecommendationActNow},
//	})
//	if err != nil {
//	    return err
//	}
//	calc.WithPolicy(set)
//
// Expressions must evaluate to bool; anything else is rejected at compile
// time. A rule set that matches nothing falls through to the calculator's
// built-in thresholds.
package rules
