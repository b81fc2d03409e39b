// Package evaluation provides the default rule-evaluation collaborator: a
// threshold comparison over a single metric sample. The engine only depends
// on the engine.Evaluator interface, so richer evaluators (query languages,
// multi-condition rules) can replace this one.
package evaluation

import (
	"fmt"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
	"github.com/vibhukrishnas/sams-sub016/internal/engine"
)

// ThresholdEvaluator compares a sample value against the rule's threshold
// using the rule's operator.
type ThresholdEvaluator struct{}

// NewThresholdEvaluator creates a new threshold evaluator
func NewThresholdEvaluator() *ThresholdEvaluator {
	return &ThresholdEvaluator{}
}

// Evaluate applies the rule's operator and threshold to the sample value
func (ev *ThresholdEvaluator) Evaluate(rule *database.AlertRule, sample engine.MetricSample) (engine.EvaluationResult, error) {
	if rule.MetricName != sample.MetricName {
		return engine.EvaluationResult{}, fmt.Errorf("rule %s expects metric %q, got %q",
			rule.ID, rule.MetricName, sample.MetricName)
	}

	var triggered bool
	switch rule.Operator {
	case ">":
		triggered = sample.Value > rule.Threshold
	case ">=":
		triggered = sample.Value >= rule.Threshold
	case "<":
		triggered = sample.Value < rule.Threshold
	case "<=":
		triggered = sample.Value <= rule.Threshold
	case "==":
		triggered = sample.Value == rule.Threshold
	case "!=":
		triggered = sample.Value != rule.Threshold
	default:
		return engine.EvaluationResult{}, fmt.Errorf("rule %s has unknown operator %q", rule.ID, rule.Operator)
	}

	result := engine.EvaluationResult{
		Triggered:      triggered,
		ActualValue:    sample.Value,
		ThresholdValue: rule.Threshold,
	}
	if triggered {
		result.Message = fmt.Sprintf("%s %s %.2f (observed %.2f)",
			sample.MetricName, rule.Operator, rule.Threshold, sample.Value)
	} else {
		result.Message = fmt.Sprintf("%s within threshold (observed %.2f, threshold %.2f)",
			sample.MetricName, sample.Value, rule.Threshold)
	}
	return result, nil
}
