package chain

import (
	"fmt"
	"strings"

	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
)

var knownNamespaces = map[roll.Namespace]bool{
	roll.NamespaceAttribute: true,
	roll.NamespaceSkill:     true,
	roll.NamespaceTrait:     true,
	roll.NamespaceCustom:    true,
}

// Validate checks a chain before it is stored. Conditions may only look at
// steps declared earlier, which rules out cycles.
func Validate(c *roll.Chain) error {
	if c == nil {
		return errors.InvalidArgument("chain is required")
	}

	vb := errors.NewValidationBuilder()
	validateChain(c, "", vb)
	return vb.Build()
}

// ValidateItem validates the item and every chain it owns
func ValidateItem(item *roll.Item) error {
	if item == nil {
		return errors.InvalidArgument("item is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", item.Name, vb)

	chainIDs := map[string]bool{}
	for i, c := range item.Chains {
		prefix := fmt.Sprintf("chains[%d].", i)
		if c == nil {
			vb.Field(prefix[:len(prefix)-1], "is empty")
			continue
		}
		if chainIDs[c.ID] {
			vb.Fieldf(prefix+"id", "duplicate chain id %q", c.ID)
		}
		chainIDs[c.ID] = true
		validateChain(c, prefix, vb)
	}

	return vb.Build()
}

func validateChain(c *roll.Chain, prefix string, vb *errors.ValidationBuilder) {
	errors.ValidateRequired(prefix+"id", c.ID, vb)
	errors.ValidateRequired(prefix+"name", c.Name, vb)

	variables := map[string]bool{}
	for i, v := range c.Variables {
		field := fmt.Sprintf("%svariables[%d].id", prefix, i)
		switch {
		case v == nil || strings.TrimSpace(v.ID) == "":
			vb.RequiredField(field)
		case variables[v.ID]:
			vb.Fieldf(field, "duplicate variable id %q", v.ID)
		default:
			variables[v.ID] = true
		}
	}

	if len(c.Steps) == 0 {
		vb.Field(prefix+"steps", "must contain at least one step")
		return
	}

	// kinds of the steps seen so far, keyed by step id
	earlier := map[string]roll.StepKind{}
	for i, step := range c.Steps {
		field := fmt.Sprintf("%ssteps[%d]", prefix, i)
		if step == nil {
			vb.Field(field, "is empty")
			continue
		}

		switch {
		case strings.TrimSpace(step.ID) == "":
			vb.RequiredField(field + ".id")
		case hasKey(earlier, step.ID):
			vb.Fieldf(field+".id", "duplicate step id %q", step.ID)
		}

		switch step.Kind {
		case "", roll.StepKindStandard:
			errors.ValidateRequired(field+".formula", step.Formula, vb)
		case roll.StepKindDuality:
		default:
			vb.Fieldf(field+".kind", "unknown step kind %q", step.Kind)
		}

		if step.StatRef != "" {
			ref, ok := roll.ParseStatRef(step.StatRef)
			if !ok {
				vb.InvalidField(field+".stat", "expected namespace:key")
			} else if !knownNamespaces[ref.Namespace] {
				vb.Fieldf(field+".stat", "unknown namespace %q", ref.Namespace)
			}
		}

		if step.Condition != nil {
			validateCondition(step.Condition, field+".condition", earlier, variables, vb)
		}

		earlier[step.ID] = kindOf(step)
	}
}

func validateCondition(
	cond *roll.Condition,
	field string,
	earlier map[string]roll.StepKind,
	variables map[string]bool,
	vb *errors.ValidationBuilder,
) {
	if !cond.Operator.IsNumeric() && !cond.Operator.IsDuality() {
		vb.Fieldf(field+".operator", "unknown operator %q", cond.Operator)
	}

	if cond.ThresholdVariableID != "" && !variables[cond.ThresholdVariableID] {
		vb.Fieldf(field+".threshold_variable", "undeclared variable %q", cond.ThresholdVariableID)
	}

	switch cond.Source {
	case roll.CheckSourceVariable:
		if cond.Operator.IsDuality() {
			vb.Fieldf(field+".operator", "%s needs a step source", cond.Operator)
		}
		if !variables[cond.VariableID] {
			vb.Fieldf(field+".variable", "undeclared variable %q", cond.VariableID)
		}
	case "", roll.CheckSourceStep:
		kind, ok := earlier[cond.StepID]
		if !ok {
			vb.Fieldf(field+".step", "must reference an earlier step, got %q", cond.StepID)
			return
		}
		if cond.Operator.IsDuality() && kind != roll.StepKindDuality {
			vb.Fieldf(field+".operator", "%s needs a duality step, %q is %s", cond.Operator, cond.StepID, kind)
		}
	default:
		vb.Fieldf(field+".source", "unknown source %q", cond.Source)
	}
}

func hasKey(m map[string]roll.StepKind, k string) bool {
	_, ok := m[k]
	return ok
}

func kindOf(step *roll.Step) roll.StepKind {
	if step.Kind == roll.StepKindDuality {
		return roll.StepKindDuality
	}
	return roll.StepKindStandard
}
