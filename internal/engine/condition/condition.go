// Package condition decides whether a chain step executes
package condition

import (
	"github.com/Dizabanik/droll/internal/entities/roll"
)

// ShouldRun reports whether step executes given the results so far and the
// live variable values. A step gated on a skipped or missing step is itself
// skipped, which propagates skips down the chain.
func ShouldRun(step *roll.Step, prior []*roll.StepResult, variables map[string]int) bool {
	cond := step.Condition
	if cond == nil {
		return true
	}

	if cond.ReadsVariable() {
		if cond.Operator.IsDuality() {
			return false
		}
		return compare(cond.Operator, variables[cond.VariableID], threshold(cond, variables))
	}

	ref := findResult(prior, cond.StepID)
	if ref == nil || ref.Skipped {
		return false
	}

	if cond.Operator.IsDuality() {
		return matchOutcome(cond.Operator, ref.Duality)
	}
	return compare(cond.Operator, ref.Total, threshold(cond, variables))
}

func threshold(cond *roll.Condition, variables map[string]int) int {
	if cond.ThresholdVariableID != "" {
		return variables[cond.ThresholdVariableID]
	}
	return cond.Threshold
}

func compare(op roll.Operator, value, threshold int) bool {
	switch op {
	case roll.OperatorGreater:
		return value > threshold
	case roll.OperatorLess:
		return value < threshold
	case roll.OperatorGreaterEqual:
		return value >= threshold
	case roll.OperatorLessEqual:
		return value <= threshold
	case roll.OperatorEqual:
		return value == threshold
	default:
		return false
	}
}

// matchOutcome checks a duality classification. Hope includes a crit.
func matchOutcome(op roll.Operator, duality *roll.DualityResult) bool {
	if duality == nil {
		return false
	}

	switch op {
	case roll.OperatorIsHope:
		return duality.Outcome == roll.OutcomeHope || duality.Outcome == roll.OutcomeCrit
	case roll.OperatorIsFear:
		return duality.Outcome == roll.OutcomeFear
	case roll.OperatorIsCrit:
		return duality.Outcome == roll.OutcomeCrit
	default:
		return false
	}
}

func findResult(results []*roll.StepResult, stepID string) *roll.StepResult {
	for _, r := range results {
		if r.StepID == stepID {
			return r
		}
	}
	return nil
}
