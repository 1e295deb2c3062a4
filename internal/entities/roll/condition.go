package roll

// CheckSource selects where a condition reads its value from
type CheckSource string

const (
	// CheckSourceStep reads a prior step's result. The zero value means the same thing.
	CheckSourceStep     CheckSource = "step"
	CheckSourceVariable CheckSource = "variable"
)

// Operator compares a condition's source against its threshold
type Operator string

const (
	OperatorGreater      Operator = ">"
	OperatorLess         Operator = "<"
	OperatorGreaterEqual Operator = ">="
	OperatorLessEqual    Operator = "<="
	OperatorEqual        Operator = "=="

	// Duality operators ignore the threshold and inspect the referenced outcome
	OperatorIsHope Operator = "is-hope"
	OperatorIsFear Operator = "is-fear"
	OperatorIsCrit Operator = "is-crit"
)

// IsDuality reports whether the operator inspects a duality outcome
func (o Operator) IsDuality() bool {
	switch o {
	case OperatorIsHope, OperatorIsFear, OperatorIsCrit:
		return true
	}
	return false
}

// IsNumeric reports whether the operator compares numbers
func (o Operator) IsNumeric() bool {
	switch o {
	case OperatorGreater, OperatorLess, OperatorGreaterEqual, OperatorLessEqual, OperatorEqual:
		return true
	}
	return false
}

// Condition gates whether a step executes
type Condition struct {
	Source     CheckSource `json:"source,omitempty" yaml:"source,omitempty"`
	StepID     string      `json:"step_id,omitempty" yaml:"step,omitempty"`
	VariableID string      `json:"variable_id,omitempty" yaml:"variable,omitempty"`
	Operator   Operator    `json:"operator" yaml:"operator"`
	Threshold  int         `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	// ThresholdVariableID, when set, takes the threshold from a variable instead of Threshold
	ThresholdVariableID string `json:"threshold_variable_id,omitempty" yaml:"threshold_variable,omitempty"`
}

// ReadsVariable reports whether the condition's source is a variable
func (c *Condition) ReadsVariable() bool {
	return c.Source == CheckSourceVariable
}
