// Package roll holds the shared data model for dice chains and their results
package roll

import (
	"fmt"
	"strings"
	"time"
)

// StepKind selects which rule system resolves a step
type StepKind string

const (
	// StepKindStandard rolls an arbitrary dice formula
	StepKindStandard StepKind = "standard"
	// StepKindDuality rolls the hope/fear d12 pair
	StepKindDuality StepKind = "duality"
)

// DieRole tags what a planned die is used for
type DieRole string

const (
	DieRoleStandard DieRole = "standard"
	DieRoleHope     DieRole = "hope"
	DieRoleFear     DieRole = "fear"
)

// Outcome is the classification of a duality roll
type Outcome string

const (
	OutcomeHope Outcome = "hope"
	OutcomeFear Outcome = "fear"
	OutcomeCrit Outcome = "crit"
)

// DamageCategoryNone marks a step whose total has no damage type
const DamageCategoryNone = "none"

// Item is a named container (e.g. a weapon) that owns roll chains
type Item struct {
	ID          string   `json:"id" yaml:"id"`
	OwnerID     string   `json:"owner_id" yaml:"owner_id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Chains      []*Chain `json:"chains" yaml:"chains"`

	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// FindChain returns the chain with the given ID, or nil
func (i *Item) FindChain(chainID string) *Chain {
	for _, c := range i.Chains {
		if c.ID == chainID {
			return c
		}
	}
	return nil
}

// Chain is an ordered sequence of steps plus the variables they may read.
// A chain is never mutated while it is being rolled.
type Chain struct {
	ID        string      `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name"`
	Steps     []*Step     `json:"steps" yaml:"steps"`
	Variables []*Variable `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// VariableDefaults returns the default value of every declared variable
func (c *Chain) VariableDefaults() map[string]int {
	defaults := make(map[string]int, len(c.Variables))
	for _, v := range c.Variables {
		defaults[v.ID] = v.DefaultValue
	}
	return defaults
}

// Variable is a named numeric input supplied per roll (e.g. target AC)
type Variable struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	DefaultValue int    `json:"default_value" yaml:"default"`
}

// Step is the atomic unit of resolution
type Step struct {
	ID             string     `json:"id" yaml:"id"`
	Label          string     `json:"label" yaml:"label"`
	Kind           StepKind   `json:"kind" yaml:"kind"`
	Formula        string     `json:"formula" yaml:"formula,omitempty"`
	StatRef        string     `json:"stat_ref,omitempty" yaml:"stat,omitempty"`
	DamageCategory string     `json:"damage_category,omitempty" yaml:"damage_category,omitempty"`
	Condition      *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
	IncludeInTotal bool       `json:"include_in_total" yaml:"include_in_total"`
	ForceCrit      bool       `json:"force_crit,omitempty" yaml:"force_crit,omitempty"`
}

// DieRequest is a planned, not yet rolled, die. A negative die is
// subtracted from the step total.
type DieRequest struct {
	ID       string  `json:"id"`
	StepID   string  `json:"step_id"`
	Sides    int     `json:"sides"`
	Role     DieRole `json:"role"`
	Negative bool    `json:"negative,omitempty"`
}

// StepPlan is everything the planner decided for one step
type StepPlan struct {
	StepID       string
	Requests     []DieRequest
	BaseModifier int
	StatModifier int
	StatLabel    string
}

// TotalModifier is the flat amount added to the dice of the step
func (p *StepPlan) TotalModifier() int {
	return p.BaseModifier + p.StatModifier
}

// RolledDie is a die request paired with the face it landed on
type RolledDie struct {
	ID       string  `json:"id"`
	Sides    int     `json:"sides"`
	Role     DieRole `json:"role"`
	Value    int     `json:"value"`
	Negative bool    `json:"negative,omitempty"`
}

// DualityResult is the hope/fear breakdown of a duality step
type DualityResult struct {
	Hope    int     `json:"hope"`
	Fear    int     `json:"fear"`
	Outcome Outcome `json:"outcome"`
}

// StepResult is the immutable outcome of one step
type StepResult struct {
	StepID         string         `json:"step_id"`
	Label          string         `json:"label"`
	Total          int            `json:"total"`
	Rolls          []RolledDie    `json:"rolls"`
	Formula        string         `json:"formula"`
	Kind           StepKind       `json:"kind"`
	DamageCategory string         `json:"damage_category,omitempty"`
	Modifier       int            `json:"modifier"`
	Skipped        bool           `json:"skipped"`
	IncludeInTotal bool           `json:"include_in_total"`
	WasCrit        bool           `json:"was_crit"`
	NaturalCrit    bool           `json:"natural_crit,omitempty"`
	Duality        *DualityResult `json:"duality,omitempty"`
}

// CountsTowardTotal reports whether the result belongs in the grand total
func (r *StepResult) CountsTowardTotal() bool {
	return !r.Skipped && r.IncludeInTotal
}

// CategoryTotal is one entry of the grand total breakdown
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
}

// ChainResult is the output of one full chain execution
type ChainResult struct {
	RollID      string          `json:"roll_id,omitempty"`
	ItemID      string          `json:"item_id,omitempty"`
	ChainID     string          `json:"chain_id"`
	CharacterID string          `json:"character_id,omitempty"`
	StepResults []*StepResult   `json:"step_results"`
	GrandTotal  int             `json:"grand_total"`
	Breakdown   []CategoryTotal `json:"breakdown"`
	RolledAt    time.Time       `json:"rolled_at,omitempty"`
}

// BreakdownString formats the breakdown as "7 fire + 4 slashing"
func (r *ChainResult) BreakdownString() string {
	parts := make([]string, 0, len(r.Breakdown))
	for _, c := range r.Breakdown {
		parts = append(parts, fmt.Sprintf("%d %s", c.Total, c.Category))
	}
	return strings.Join(parts, " + ")
}
