// Package formula parses dice notation into structured dice and modifier data.
//
// Both parsers are total: every input string produces a result and nothing
// here returns an error or panics. Malformed input falls back to a safe
// default so that a chain with a broken formula still rolls.
package formula

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxDicePerTerm bounds how many dice a single term may expand into
const MaxDicePerTerm = 100

var (
	// Regex for "[N]dS[+/-M]", whitespace already stripped
	simpleNotationRegex = regexp.MustCompile(`(?i)^(\d*)d(\d+)([+-]\d+)?$`)

	// Regex for a bare signed constant like "5" or "-2"
	constantRegex = regexp.MustCompile(`^[+-]?\d+$`)
)

// Simple is a single dice group with a flat modifier
type Simple struct {
	Count    int
	Sides    int
	Modifier int
}

// Fallback is what ParseSimple returns for notation it cannot read
var Fallback = Simple{Count: 1, Sides: 20, Modifier: 0}

// ParseSimple parses "[N]dS[+/-M]". A bare integer is a pure constant with
// zero dice, and anything else is read as a plain d20.
func ParseSimple(notation string) Simple {
	s, _ := MatchSimple(notation)
	return s
}

// MatchSimple is ParseSimple that also reports whether the notation was
// understood. When ok is false the returned value is Fallback.
func MatchSimple(notation string) (s Simple, ok bool) {
	compact := strings.Join(strings.Fields(notation), "")

	if constantRegex.MatchString(compact) {
		modifier, err := strconv.Atoi(compact)
		if err != nil {
			return Fallback, false
		}
		return Simple{Modifier: modifier}, true
	}

	matches := simpleNotationRegex.FindStringSubmatch(compact)
	if len(matches) != 4 {
		return Fallback, false
	}

	count := 1
	if matches[1] != "" {
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			return Fallback, false
		}
		count = n
	}

	sides, err := strconv.Atoi(matches[2])
	if err != nil {
		return Fallback, false
	}

	modifier := 0
	if matches[3] != "" {
		modifier, err = strconv.Atoi(matches[3])
		if err != nil {
			return Fallback, false
		}
	}

	return Simple{Count: count, Sides: sides, Modifier: modifier}, true
}

// String renders the group back into notation, e.g. "2d6+3"
func (s Simple) String() string {
	if s.Count == 0 || s.Sides == 0 {
		return strconv.Itoa(s.Modifier)
	}
	out := strconv.Itoa(s.Count) + "d" + strconv.Itoa(s.Sides)
	switch {
	case s.Modifier > 0:
		out += "+" + strconv.Itoa(s.Modifier)
	case s.Modifier < 0:
		out += strconv.Itoa(s.Modifier)
	}
	return out
}
