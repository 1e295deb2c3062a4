package roll

import (
	"strings"

	"github.com/Dizabanik/droll/internal/clients/catalog"
	rollentity "github.com/Dizabanik/droll/internal/entities/roll"
)

const (
	// DefaultTargetAC is the target_ac default of an imported weapon
	DefaultTargetAC = 10

	weaponChainID     = "attack"
	weaponAttackStep  = "attack"
	weaponDamageStep  = "damage"
	weaponTargetACVar = "target_ac"
)

// WeaponChain builds the default item for a weapon: a d20 attack roll that
// does not count toward the total, and the weapon's damage when the attack
// meets the target's AC. Finesse and ranged weapons use dexterity, the rest
// strength.
func WeaponChain(w *catalog.WeaponData) *rollentity.Item {
	stat := rollentity.StatRef{Namespace: rollentity.NamespaceAttribute, Key: "strength"}
	if w.Finesse || w.Ranged {
		stat.Key = "dexterity"
	}

	damage := strings.ReplaceAll(w.DamageDice, " ", "")
	if damage == "" {
		damage = "1"
	}
	category := w.DamageType
	if category == "" {
		category = rollentity.DamageCategoryNone
	}

	return &rollentity.Item{
		Name:        w.Name,
		Description: "Imported from the SRD weapon " + w.ID,
		Chains: []*rollentity.Chain{{
			ID:   weaponChainID,
			Name: w.Name + " attack",
			Variables: []*rollentity.Variable{
				{ID: weaponTargetACVar, Name: "Target AC", DefaultValue: DefaultTargetAC},
			},
			Steps: []*rollentity.Step{
				{
					ID:      weaponAttackStep,
					Label:   "Attack roll",
					Kind:    rollentity.StepKindStandard,
					Formula: "1d20",
					StatRef: stat.String(),
				},
				{
					ID:             weaponDamageStep,
					Label:          w.Name + " damage",
					Kind:           rollentity.StepKindStandard,
					Formula:        damage,
					StatRef:        stat.String(),
					DamageCategory: category,
					IncludeInTotal: true,
					Condition: &rollentity.Condition{
						Source:              rollentity.CheckSourceStep,
						StepID:              weaponAttackStep,
						Operator:            rollentity.OperatorGreaterEqual,
						ThresholdVariableID: weaponTargetACVar,
					},
				},
			},
		}},
	}
}
