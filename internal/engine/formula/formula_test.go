package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSimple(t *testing.T) {
	testCases := []struct {
		name     string
		notation string
		expected Simple
	}{
		{name: "count sides and positive modifier", notation: "2d6+4", expected: Simple{Count: 2, Sides: 6, Modifier: 4}},
		{name: "negative modifier", notation: "1d20-1", expected: Simple{Count: 1, Sides: 20, Modifier: -1}},
		{name: "implicit count", notation: "d8", expected: Simple{Count: 1, Sides: 8}},
		{name: "uppercase and spaces", notation: " 3D10 + 2 ", expected: Simple{Count: 3, Sides: 10, Modifier: 2}},
		{name: "bare constant", notation: "5", expected: Simple{Modifier: 5}},
		{name: "negative constant", notation: "-3", expected: Simple{Modifier: -3}},
		{name: "zero constant", notation: "0", expected: Simple{}},
		{name: "empty string falls back", notation: "", expected: Fallback},
		{name: "garbage falls back", notation: "fireball", expected: Fallback},
		{name: "multi term falls back", notation: "2d6+1d4", expected: Fallback},
		{name: "dangling d falls back", notation: "2d", expected: Fallback},
		{name: "overflowing constant falls back", notation: "99999999999999999999999", expected: Fallback},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tc.expected, ParseSimple(tc.notation))
			})
		})
	}
}

func TestMatchSimple(t *testing.T) {
	s, ok := MatchSimple("4d6")
	assert.True(t, ok)
	assert.Equal(t, Simple{Count: 4, Sides: 6}, s)

	s, ok = MatchSimple("4d6r1")
	assert.False(t, ok)
	assert.Equal(t, Fallback, s)
}

func TestSimpleString(t *testing.T) {
	assert.Equal(t, "2d6+3", Simple{Count: 2, Sides: 6, Modifier: 3}.String())
	assert.Equal(t, "1d20-1", Simple{Count: 1, Sides: 20, Modifier: -1}.String())
	assert.Equal(t, "1d8", Simple{Count: 1, Sides: 8}.String())
	assert.Equal(t, "7", Simple{Modifier: 7}.String())
}

func TestParseAdvanced(t *testing.T) {
	t.Run("explodes every die into its own group", func(t *testing.T) {
		a := ParseAdvanced("2d12+d6+d4+5")

		assert.Equal(t, []DiceGroup{
			{Count: 1, Sides: 12},
			{Count: 1, Sides: 12},
			{Count: 1, Sides: 6},
			{Count: 1, Sides: 4},
		}, a.DiceGroups)
		assert.Equal(t, 5, a.Modifier)
		assert.Equal(t, 4, a.DiceCount())
	})

	t.Run("signed constants accumulate", func(t *testing.T) {
		a := ParseAdvanced("1d8 + 3 - 1 + 2")

		assert.Equal(t, []DiceGroup{{Count: 1, Sides: 8}}, a.DiceGroups)
		assert.Equal(t, 4, a.Modifier)
	})

	t.Run("leading negative constant", func(t *testing.T) {
		a := ParseAdvanced("-2+d6")

		assert.Equal(t, []DiceGroup{{Count: 1, Sides: 6}}, a.DiceGroups)
		assert.Equal(t, -2, a.Modifier)
	})

	t.Run("constant only", func(t *testing.T) {
		a := ParseAdvanced("7")

		assert.Empty(t, a.DiceGroups)
		assert.Equal(t, 7, a.Modifier)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, Advanced{}, ParseAdvanced(""))
	})

	t.Run("zero sided dice are dropped", func(t *testing.T) {
		a := ParseAdvanced("2d0+1")

		assert.Empty(t, a.DiceGroups)
		assert.Equal(t, 1, a.Modifier)
	})

	t.Run("huge counts are capped", func(t *testing.T) {
		a := ParseAdvanced("5000d6")

		assert.Len(t, a.DiceGroups, MaxDicePerTerm)
	})

	t.Run("unreadable input yields nothing", func(t *testing.T) {
		for _, notation := range []string{"fireball", "1d6 * 2", "+", "  "} {
			assert.NotPanics(t, func() {
				assert.Equal(t, Advanced{}, ParseAdvanced(notation), notation)
			})
		}
	})

	t.Run("only the unreadable term is dropped", func(t *testing.T) {
		testCases := []struct {
			notation string
			sides    []int
			modifier int
		}{
			{notation: "2d12+d6+", sides: []int{12, 12, 6}},
			{notation: "2d12+d6+str", sides: []int{12, 12, 6}},
			{notation: "2d12 + 1d6 + 2x", sides: []int{12, 12, 6}},
			{notation: "2d6+", sides: []int{6, 6}},
			{notation: "++3", modifier: 3},
			{notation: "d8 + fire + 2", sides: []int{8}, modifier: 2},
		}

		for _, tc := range testCases {
			a := ParseAdvanced(tc.notation)

			got := make([]int, 0, len(a.DiceGroups))
			for _, g := range a.DiceGroups {
				got = append(got, g.Sides)
			}
			if tc.sides == nil {
				assert.Empty(t, got, tc.notation)
			} else {
				assert.Equal(t, tc.sides, got, tc.notation)
			}
			assert.Equal(t, tc.modifier, a.Modifier, tc.notation)
		}
	})

	t.Run("subtracted dice are marked negative", func(t *testing.T) {
		a := ParseAdvanced("2d12+d6-1d4")

		assert.Equal(t, []DiceGroup{
			{Count: 1, Sides: 12},
			{Count: 1, Sides: 12},
			{Count: 1, Sides: 6},
			{Count: 1, Sides: 4, Negative: true},
		}, a.DiceGroups)
	})
}
