// Package stats resolves namespaced stat references against a character's stat sheet
package stats

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Dizabanik/droll/internal/entities/roll"
)

const (
	// Score assumed for an attribute the sheet does not set
	defaultAttributeScore = 10

	// Label shown for a custom stat the sheet does not define
	unknownCustomLabel = "Custom Stat"
)

// attributeAbbreviations maps well-known attributes to their short labels
var attributeAbbreviations = map[string]string{
	"strength":     "STR",
	"dexterity":    "DEX",
	"constitution": "CON",
	"intelligence": "INT",
	"wisdom":       "WIS",
	"charisma":     "CHA",
}

// namespaceResolver resolves one namespace of stat references
type namespaceResolver struct {
	value func(sheet *roll.StatSheet, key string) int
	label func(sheet *roll.StatSheet, key string) string
}

// Resolver dispatches stat references to the resolver for their namespace.
// It never fails: unknown namespaces and missing stats resolve to zero.
type Resolver struct {
	namespaces map[roll.Namespace]namespaceResolver
}

// NewResolver creates a resolver for the attribute, skill, trait and custom namespaces
func NewResolver() *Resolver {
	return &Resolver{
		namespaces: map[roll.Namespace]namespaceResolver{
			roll.NamespaceAttribute: {value: attributeValue, label: attributeLabel},
			roll.NamespaceSkill:     {value: skillValue, label: titleLabel},
			roll.NamespaceTrait:     {value: traitValue, label: titleLabel},
			roll.NamespaceCustom:    {value: customValue, label: customLabel},
		},
	}
}

// ResolveValue returns the numeric modifier a reference contributes
func (r *Resolver) ResolveValue(sheet *roll.StatSheet, ref roll.StatRef) int {
	ns, ok := r.namespaces[ref.Namespace]
	if !ok {
		return 0
	}
	return ns.value(sheet, ref.Key)
}

// ResolveLabel returns a display label for a reference
func (r *Resolver) ResolveLabel(sheet *roll.StatSheet, ref roll.StatRef) string {
	ns, ok := r.namespaces[ref.Namespace]
	if !ok {
		return ""
	}
	return ns.label(sheet, ref.Key)
}

// Resolve parses a raw "namespace:key" string and resolves both value and label.
// An empty or malformed reference resolves to zero with no label.
func (r *Resolver) Resolve(sheet *roll.StatSheet, raw string) (value int, label string) {
	ref, ok := roll.ParseStatRef(raw)
	if !ok {
		return 0, ""
	}
	return r.ResolveValue(sheet, ref), r.ResolveLabel(sheet, ref)
}

// AbilityModifier is floor((score - 10) / 2)
func AbilityModifier(score int) int {
	diff := score - 10
	modifier := diff / 2
	if diff < 0 && diff%2 != 0 {
		modifier-- // Go truncates toward zero; floor instead
	}
	return modifier
}

func attributeValue(sheet *roll.StatSheet, key string) int {
	score := defaultAttributeScore
	if sheet != nil {
		if v, ok := lookup(sheet.Attributes, key); ok {
			score = v
		}
	}
	return AbilityModifier(score)
}

func attributeLabel(_ *roll.StatSheet, key string) string {
	if abbr, ok := attributeAbbreviations[strings.ToLower(key)]; ok {
		return abbr
	}
	return strings.ToUpper(key)
}

func skillValue(sheet *roll.StatSheet, key string) int {
	if sheet == nil {
		return 0
	}
	v, _ := lookup(sheet.Skills, key)
	return v
}

func traitValue(sheet *roll.StatSheet, key string) int {
	if sheet == nil {
		return 0
	}
	v, _ := lookup(sheet.Traits, key)
	return v
}

// lookup finds key in a sheet map ignoring case. Sheets keep their keys as
// written, so "Strength" and "strength" name the same stat.
func lookup(values map[string]int, key string) (int, bool) {
	if v, ok := values[key]; ok {
		return v, true
	}
	for k, v := range values {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return 0, false
}

func customValue(sheet *roll.StatSheet, key string) int {
	c, ok := sheet.FindCustom(key)
	if !ok {
		return 0
	}
	return c.Value
}

func customLabel(sheet *roll.StatSheet, key string) string {
	c, ok := sheet.FindCustom(key)
	if !ok || c.Name == "" {
		return unknownCustomLabel
	}
	return c.Name
}

// titleLabel turns "sleight_of_hand" into "Sleight Of Hand"
func titleLabel(_ *roll.StatSheet, key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
