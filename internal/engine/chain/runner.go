// Package chain executes roll chains: it plans each step, asks a Provider for
// die faces, evaluates conditions and aggregates the step results.
package chain

import (
	"context"
	"log/slog"

	"github.com/Dizabanik/droll/internal/engine/condition"
	"github.com/Dizabanik/droll/internal/engine/planner"
	"github.com/Dizabanik/droll/internal/engine/resolver"
	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/pkg/idgen"
)

// UntypedCategory is the breakdown label for steps without a damage category
const UntypedCategory = "untyped"

// Mode selects when die faces are requested from the provider
type Mode string

const (
	// ModeSequential requests dice one step at a time, and only for steps that run
	ModeSequential Mode = "sequential"
	// ModeSimultaneous requests every step's dice in a single batch up front
	ModeSimultaneous Mode = "simultaneous"
)

// CritPolicy controls whether a critical on one step affects later steps
type CritPolicy string

const (
	// CritPolicyPropagate applies crit math to every later standard step that
	// counts toward the total once any step rolls a qualifying critical
	CritPolicyPropagate CritPolicy = "propagate"
	// CritPolicyPerStep only honours each step's own force crit flag
	CritPolicyPerStep CritPolicy = "per_step"
)

// Provider supplies die faces keyed by DieRequest ID
//
//go:generate mockgen -destination=mock/mock_provider.go -package=chainmock github.com/Dizabanik/droll/internal/engine/chain Provider
type Provider interface {
	Roll(ctx context.Context, requests []roll.DieRequest) (map[string]int, error)
}

// Config holds the dependencies and policies of a Runner
type Config struct {
	Mode       Mode
	CritPolicy CritPolicy
	IDs        idgen.Generator
	Logger     *slog.Logger
}

// Validate checks the config and fills in defaults
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	switch c.Mode {
	case "":
		c.Mode = ModeSequential
	case ModeSequential, ModeSimultaneous:
	default:
		vb.Fieldf("Mode", "unknown mode %q", c.Mode)
	}

	switch c.CritPolicy {
	case "":
		c.CritPolicy = CritPolicyPropagate
	case CritPolicyPropagate, CritPolicyPerStep:
	default:
		vb.Fieldf("CritPolicy", "unknown crit policy %q", c.CritPolicy)
	}

	if c.IDs == nil {
		vb.RequiredField("IDs")
	}

	return vb.Build()
}

// Runner executes chains. It keeps no per-run state and may be shared.
type Runner struct {
	mode       Mode
	critPolicy CritPolicy
	planner    *planner.Planner
	logger     *slog.Logger
}

// New creates a Runner
func New(cfg *Config) (*Runner, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid chain runner config")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		mode:       cfg.Mode,
		critPolicy: cfg.CritPolicy,
		planner:    planner.New(cfg.IDs),
		logger:     logger,
	}, nil
}

// RunInput is what a single chain execution needs
type RunInput struct {
	Chain     *roll.Chain
	Sheet     *roll.StatSheet
	Variables map[string]int
	Provider  Provider
}

// Run executes the chain. Only provider failures and context cancellation
// produce an error; everything else in the chain resolves to a value.
func (r *Runner) Run(ctx context.Context, input *RunInput) (*roll.ChainResult, error) {
	if input == nil || input.Chain == nil {
		return nil, errors.InvalidArgument("chain is required")
	}
	if input.Provider == nil {
		return nil, errors.InvalidArgument("provider is required")
	}

	variables := mergeVariables(input.Chain, input.Variables)

	var (
		results []*roll.StepResult
		err     error
	)
	switch r.mode {
	case ModeSimultaneous:
		results, err = r.runSimultaneous(ctx, input, variables)
	default:
		results, err = r.runSequential(ctx, input, variables)
	}
	if err != nil {
		return nil, err
	}

	result := &roll.ChainResult{
		ChainID:     input.Chain.ID,
		StepResults: results,
	}
	result.GrandTotal, result.Breakdown = Aggregate(results)

	r.logger.DebugContext(ctx, "chain resolved",
		"chain_id", input.Chain.ID,
		"mode", r.mode,
		"steps", len(results),
		"grand_total", result.GrandTotal)

	return result, nil
}

func (r *Runner) runSequential(ctx context.Context, input *RunInput, variables map[string]int) ([]*roll.StepResult, error) {
	results := make([]*roll.StepResult, 0, len(input.Chain.Steps))
	chainCrit := false

	for _, step := range input.Chain.Steps {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeCanceled, "chain roll abandoned")
		}

		if !condition.ShouldRun(step, results, variables) {
			r.logger.DebugContext(ctx, "step skipped", "step_id", step.ID)
			results = append(results, resolver.Skipped(step))
			continue
		}

		plan := r.planner.PlanStep(step, input.Sheet)

		var values map[string]int
		if len(plan.Requests) > 0 {
			var err error
			values, err = input.Provider.Roll(ctx, plan.Requests)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to roll dice for step %s", step.ID)
			}
		}

		result := resolver.Resolve(step, values, plan.Requests, plan.TotalModifier(), r.propagates(chainCrit, step))
		if qualifiesAsCrit(result) {
			chainCrit = true
		}
		results = append(results, result)
	}

	return results, nil
}

// runSimultaneous rolls every planned die in one batch, then resolves twice:
// the first pass finds where the chain first crits, the second applies it.
func (r *Runner) runSimultaneous(ctx context.Context, input *RunInput, variables map[string]int) ([]*roll.StepResult, error) {
	steps := input.Chain.Steps
	plans := make([]*roll.StepPlan, len(steps))
	var requests []roll.DieRequest
	for i, step := range steps {
		plans[i] = r.planner.PlanStep(step, input.Sheet)
		requests = append(requests, plans[i].Requests...)
	}

	var values map[string]int
	if len(requests) > 0 {
		var err error
		values, err = input.Provider.Roll(ctx, requests)
		if err != nil {
			return nil, errors.Wrap(err, "failed to roll chain dice")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeCanceled, "chain roll abandoned")
	}

	firstCrit := -1
	pass := func(critFrom int) []*roll.StepResult {
		results := make([]*roll.StepResult, 0, len(steps))
		for i, step := range steps {
			if !condition.ShouldRun(step, results, variables) {
				results = append(results, resolver.Skipped(step))
				continue
			}
			chainCrit := critFrom >= 0 && i > critFrom
			result := resolver.Resolve(step, values, plans[i].Requests, plans[i].TotalModifier(), r.propagates(chainCrit, step))
			if firstCrit < 0 && qualifiesAsCrit(result) {
				firstCrit = i
			}
			results = append(results, result)
		}
		return results
	}

	results := pass(-1)
	if firstCrit < 0 || r.critPolicy != CritPolicyPropagate {
		return results, nil
	}
	return pass(firstCrit), nil
}

// propagates reports whether the chain crit flag applies to step
func (r *Runner) propagates(chainCrit bool, step *roll.Step) bool {
	if !chainCrit || r.critPolicy != CritPolicyPropagate {
		return false
	}
	return step.Kind != roll.StepKindDuality && step.IncludeInTotal
}

// qualifiesAsCrit is a natural 20 on a standard d20 or a matching duality pair
func qualifiesAsCrit(result *roll.StepResult) bool {
	if result.Skipped {
		return false
	}
	if result.Duality != nil {
		return result.Duality.Outcome == roll.OutcomeCrit
	}
	return result.NaturalCrit
}

func mergeVariables(c *roll.Chain, supplied map[string]int) map[string]int {
	merged := c.VariableDefaults()
	for k, v := range supplied {
		merged[k] = v
	}
	return merged
}

// Aggregate sums every result that counts toward the total and groups the
// same results by damage category in first-seen order.
func Aggregate(results []*roll.StepResult) (int, []roll.CategoryTotal) {
	total := 0
	breakdown := []roll.CategoryTotal{}
	index := map[string]int{}

	for _, result := range results {
		if !result.CountsTowardTotal() {
			continue
		}
		total += result.Total

		category := result.DamageCategory
		if category == "" || category == roll.DamageCategoryNone {
			category = UntypedCategory
		}
		if i, ok := index[category]; ok {
			breakdown[i].Total += result.Total
			continue
		}
		index[category] = len(breakdown)
		breakdown = append(breakdown, roll.CategoryTotal{Category: category, Total: result.Total})
	}

	return total, breakdown
}
