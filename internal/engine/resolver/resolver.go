// Package resolver turns rolled die faces into a step result.
//
// Resolution is pure: the same step, values, requests, modifier and crit flag
// always produce the same result. Missing die values count as zero instead of
// failing, so a short answer from the dice source still resolves.
package resolver

import (
	"github.com/Dizabanik/droll/internal/entities/roll"
)

// naturalCritSides is the die whose top face counts as a natural critical
const naturalCritSides = 20

// Resolve computes the result of a step from its rolled dice.
// values maps DieRequest IDs to faces; requests must be the step's plan.
func Resolve(
	step *roll.Step,
	values map[string]int,
	requests []roll.DieRequest,
	totalModifier int,
	forceCrit bool,
) *roll.StepResult {
	result := &roll.StepResult{
		StepID:         step.ID,
		Label:          step.Label,
		Formula:        step.Formula,
		Kind:           kindOf(step),
		DamageCategory: step.DamageCategory,
		Modifier:       totalModifier,
		IncludeInTotal: step.IncludeInTotal,
		Rolls:          make([]roll.RolledDie, 0, len(requests)),
	}

	for _, req := range requests {
		result.Rolls = append(result.Rolls, roll.RolledDie{
			ID:       req.ID,
			Sides:    req.Sides,
			Role:     req.Role,
			Value:    values[req.ID],
			Negative: req.Negative,
		})
	}
	result.NaturalCrit = hasNaturalCrit(result.Rolls)

	if result.Kind == roll.StepKindDuality {
		resolveDuality(result)
	} else {
		resolveStandard(result, forceCrit || step.ForceCrit)
	}

	return result
}

// Skipped synthesises the result of a step whose condition failed
func Skipped(step *roll.Step) *roll.StepResult {
	return &roll.StepResult{
		StepID:         step.ID,
		Label:          step.Label,
		Formula:        step.Formula,
		Kind:           kindOf(step),
		DamageCategory: step.DamageCategory,
		IncludeInTotal: step.IncludeInTotal,
		Skipped:        true,
		Rolls:          []roll.RolledDie{},
	}
}

// Classify applies the duality rule: matching dice crit, otherwise the
// higher die names the outcome.
func Classify(hope, fear int) roll.Outcome {
	switch {
	case hope == fear:
		return roll.OutcomeCrit
	case hope >= fear:
		return roll.OutcomeHope
	default:
		return roll.OutcomeFear
	}
}

func resolveDuality(result *roll.StepResult) {
	var hope, fear, extra int
	for _, die := range result.Rolls {
		switch die.Role {
		case roll.DieRoleHope:
			hope = die.Value
		case roll.DieRoleFear:
			fear = die.Value
		default:
			if die.Negative {
				extra -= die.Value
			} else {
				extra += die.Value
			}
		}
	}

	outcome := Classify(hope, fear)
	result.Duality = &roll.DualityResult{
		Hope:    hope,
		Fear:    fear,
		Outcome: outcome,
	}
	result.Total = hope + fear + extra + result.Modifier
	result.WasCrit = outcome == roll.OutcomeCrit
}

// resolveStandard sums the dice. A crit adds every die's maximum face on top
// of what was rolled instead of rolling extra dice.
func resolveStandard(result *roll.StepResult, crit bool) {
	rolled := 0
	maximum := 0
	for _, die := range result.Rolls {
		rolled += die.Value
		maximum += die.Sides
	}

	result.WasCrit = crit
	result.Total = rolled + result.Modifier
	if crit {
		result.Total += maximum
	}
}

func hasNaturalCrit(dice []roll.RolledDie) bool {
	for _, die := range dice {
		if die.Role == roll.DieRoleStandard && die.Sides == naturalCritSides && die.Value == naturalCritSides {
			return true
		}
	}
	return false
}

func kindOf(step *roll.Step) roll.StepKind {
	if step.Kind == roll.StepKindDuality {
		return roll.StepKindDuality
	}
	return roll.StepKindStandard
}
