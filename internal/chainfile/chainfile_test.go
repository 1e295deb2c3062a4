package chainfile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dizabanik/droll/internal/chainfile"
	"github.com/Dizabanik/droll/internal/engine/chain"
	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
)

const flameTongue = `
id: flame_tongue
name: Flame Tongue Longsword
chains:
  - id: attack
    name: Attack
    variables:
      - id: target_ac
        name: Target AC
        default: 15
    steps:
      - id: attack
        label: Attack
        formula: 1d20+5
        stat: attribute:strength
      - id: damage
        label: Slashing
        formula: 1d8+3
        damage_category: slashing
        include_in_total: true
        condition:
          step: attack
          operator: ">="
          threshold_variable: target_ac
      - id: flame
        label: Fire
        formula: 2d6
        damage_category: fire
        include_in_total: true
        condition:
          step: damage
          operator: ">"
          threshold: 0
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadItem(t *testing.T) {
	item, err := chainfile.LoadItem(writeFile(t, "sword.yaml", flameTongue))
	require.NoError(t, err)

	assert.Equal(t, "flame_tongue", item.ID)
	require.Len(t, item.Chains, 1)
	c := item.Chains[0]
	assert.Equal(t, 15, c.VariableDefaults()["target_ac"])
	require.Len(t, c.Steps, 3)

	assert.Equal(t, roll.StepKindStandard, c.Steps[0].Kind)
	assert.Equal(t, "attribute:strength", c.Steps[0].StatRef)
	assert.Equal(t, "attack", c.Steps[1].Condition.StepID)
	assert.Equal(t, roll.OperatorGreaterEqual, c.Steps[1].Condition.Operator)
	assert.Equal(t, "target_ac", c.Steps[1].Condition.ThresholdVariableID)
	assert.True(t, c.Steps[2].IncludeInTotal)

	assert.NoError(t, chain.ValidateItem(item))
}

func TestLoadItem_Errors(t *testing.T) {
	_, err := chainfile.LoadItem(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsNotFound(err))

	_, err = chainfile.LoadItem(writeFile(t, "bad.yaml", "id: x\nchains: [\n"))
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = chainfile.LoadItem(writeFile(t, "unknown.yaml", "id: x\nweight: 3\n"))
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = chainfile.DecodeItem(strings.NewReader(""))
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestLoadSheet(t *testing.T) {
	sheet, err := chainfile.LoadSheet(writeFile(t, "hero.yaml", `
character_id: char_1
name: Aria
attributes:
  strength: 16
  dexterity: 14
traits:
  agility: 2
custom:
  - id: luck
    name: Luck
    value: 3
`))
	require.NoError(t, err)

	assert.Equal(t, "char_1", sheet.CharacterID)
	assert.Equal(t, 16, sheet.Attributes["strength"])
	assert.Equal(t, 2, sheet.Traits["agility"])
	luck, ok := sheet.FindCustom("luck")
	require.True(t, ok)
	assert.Equal(t, 3, luck.Value)
}

func TestParseVars(t *testing.T) {
	vars, err := chainfile.ParseVars([]string{"target_ac=18", "bonus=+2", " dc = 3.0 ", "penalty=-1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"target_ac": 18, "bonus": 2, "dc": 3, "penalty": -1}, vars)

	vars, err = chainfile.ParseVars(nil)
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestParseVars_Invalid(t *testing.T) {
	_, err := chainfile.ParseVars([]string{"target_ac", "dc=high", "half=2.5"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))

	fields, ok := errors.GetMeta(err)[errors.MetaValidationErrors].(map[string][]string)
	require.True(t, ok)
	assert.Contains(t, fields, "var")
	assert.Contains(t, fields, "dc")
	assert.Contains(t, fields, "half")
}
