package formula

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// advancedLexer tokenises one term of multi-term notation like "2d12 + d6 - 1"
var advancedLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Dice", Pattern: `[0-9]*[dD][0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Sign", Pattern: `[+-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// term is the grammar root. A term without a sign is read as "+", which
// covers the leading term.
type term struct {
	Sign     string `parser:"@Sign?"`
	Dice     string `parser:"( @Dice"`
	Constant *int   `parser:"| @Int )"`
}

var termParser = participle.MustBuild[term](
	participle.Lexer(advancedLexer),
	participle.Elide("Whitespace"),
)

// DiceGroup is one group of same-sided dice. Negative dice are subtracted.
type DiceGroup struct {
	Count    int
	Sides    int
	Negative bool
}

// Advanced is a multi-term formula broken into single dice
type Advanced struct {
	DiceGroups []DiceGroup
	Modifier   int
}

// DiceCount is the number of dice across every group
func (a Advanced) DiceCount() int {
	n := 0
	for _, g := range a.DiceGroups {
		n += g.Count
	}
	return n
}

// ParseAdvanced parses expressions such as "2d12+d6+d4+5". The notation is
// split on sign boundaries and each term is parsed on its own, so a term the
// grammar cannot read is dropped without losing the rest. Every die becomes
// its own group of count 1 so that callers can address dice individually.
// Constant terms fold into Modifier with their sign.
func ParseAdvanced(notation string) Advanced {
	var out Advanced
	for _, raw := range splitTerms(notation) {
		t, err := termParser.ParseString("", raw)
		if err != nil {
			continue
		}

		if t.Constant != nil {
			if t.Sign == "-" {
				out.Modifier -= *t.Constant
			} else {
				out.Modifier += *t.Constant
			}
			continue
		}

		count, sides, ok := splitDiceTerm(t.Dice)
		if !ok {
			continue
		}
		for i := 0; i < count; i++ {
			out.DiceGroups = append(out.DiceGroups, DiceGroup{Count: 1, Sides: sides, Negative: t.Sign == "-"})
		}
	}

	return out
}

// splitTerms cuts notation before every sign, keeping the sign with the term
// that follows it. Blank pieces are left out.
func splitTerms(notation string) []string {
	var terms []string
	start := 0
	flush := func(end int) {
		if piece := notation[start:end]; strings.TrimSpace(piece) != "" {
			terms = append(terms, piece)
		}
		start = end
	}
	for i := 0; i < len(notation); i++ {
		if notation[i] == '+' || notation[i] == '-' {
			flush(i)
		}
	}
	flush(len(notation))
	return terms
}

// splitDiceTerm reads "NdS" where N may be empty. Dice with no sides or no
// count contribute nothing; the count is capped at MaxDicePerTerm.
func splitDiceTerm(raw string) (count, sides int, ok bool) {
	idx := strings.IndexAny(raw, "dD")
	if idx < 0 {
		return 0, 0, false
	}

	count = 1
	if idx > 0 {
		n, err := strconv.Atoi(raw[:idx])
		if err != nil {
			return 0, 0, false
		}
		count = n
	}

	sides, err := strconv.Atoi(raw[idx+1:])
	if err != nil || sides <= 0 || count <= 0 {
		return 0, 0, false
	}

	if count > MaxDicePerTerm {
		count = MaxDicePerTerm
	}
	return count, sides, true
}
