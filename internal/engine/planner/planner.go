// Package planner decides which dice a chain step needs rolled
package planner

import (
	"github.com/Dizabanik/droll/internal/engine/formula"
	"github.com/Dizabanik/droll/internal/engine/stats"
	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/pkg/idgen"
)

const (
	// DualitySides is the size of the hope and fear dice
	DualitySides = 12

	// dualityBaseDice is how many d12 terms the hope/fear pair absorbs
	dualityBaseDice = 2
)

// Planner turns steps into die requests. Every request gets a fresh ID from
// the generator, so IDs are never shared across steps or rolls.
type Planner struct {
	ids   idgen.Generator
	stats *stats.Resolver
}

// New creates a planner drawing request IDs from ids
func New(ids idgen.Generator) *Planner {
	return &Planner{
		ids:   ids,
		stats: stats.NewResolver(),
	}
}

// PlanStep plans the dice and modifiers for one step
func (p *Planner) PlanStep(step *roll.Step, sheet *roll.StatSheet) *roll.StepPlan {
	plan := &roll.StepPlan{StepID: step.ID}

	switch step.Kind {
	case roll.StepKindDuality:
		p.planDuality(plan, step)
	default:
		p.planStandard(plan, step)
	}

	if step.StatRef != "" {
		plan.StatModifier, plan.StatLabel = p.stats.Resolve(sheet, step.StatRef)
	}

	return plan
}

func (p *Planner) planStandard(plan *roll.StepPlan, step *roll.Step) {
	parsed := formula.ParseSimple(step.Formula)
	plan.BaseModifier = parsed.Modifier

	if parsed.Sides <= 0 {
		return
	}

	count := parsed.Count
	if count > formula.MaxDicePerTerm {
		count = formula.MaxDicePerTerm
	}
	for i := 0; i < count; i++ {
		plan.Requests = append(plan.Requests, p.request(step.ID, parsed.Sides, roll.DieRoleStandard))
	}
}

// planDuality always emits the hope and fear d12s. The first two d12 terms of
// the formula are those same dice; anything else rolls alongside as standard.
func (p *Planner) planDuality(plan *roll.StepPlan, step *roll.Step) {
	plan.Requests = append(plan.Requests,
		p.request(step.ID, DualitySides, roll.DieRoleHope),
		p.request(step.ID, DualitySides, roll.DieRoleFear),
	)

	parsed := formula.ParseAdvanced(step.Formula)
	plan.BaseModifier = parsed.Modifier

	absorbed := 0
	for _, group := range parsed.DiceGroups {
		if group.Sides == DualitySides && !group.Negative && absorbed < dualityBaseDice {
			absorbed++
			continue
		}
		for i := 0; i < group.Count; i++ {
			req := p.request(step.ID, group.Sides, roll.DieRoleStandard)
			req.Negative = group.Negative
			plan.Requests = append(plan.Requests, req)
		}
	}
}

func (p *Planner) request(stepID string, sides int, role roll.DieRole) roll.DieRequest {
	return roll.DieRequest{
		ID:     p.ids.Generate(),
		StepID: stepID,
		Sides:  sides,
		Role:   role,
	}
}
