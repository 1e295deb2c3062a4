package roll

import "strings"

// Namespace is the kind of stat a StatRef points at
type Namespace string

const (
	NamespaceAttribute Namespace = "attribute"
	NamespaceSkill     Namespace = "skill"
	NamespaceTrait     Namespace = "trait"
	NamespaceCustom    Namespace = "custom"
)

// StatRef is a parsed "namespace:key" reference into a stat sheet
type StatRef struct {
	Namespace Namespace
	Key       string
}

// String renders the reference back into its "namespace:key" form
func (r StatRef) String() string {
	return string(r.Namespace) + ":" + r.Key
}

// ParseStatRef splits "namespace:key". ok is false for anything without both halves.
func ParseStatRef(s string) (ref StatRef, ok bool) {
	ns, key, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || ns == "" || key == "" {
		return StatRef{}, false
	}
	return StatRef{
		Namespace: Namespace(strings.ToLower(ns)),
		Key:       key,
	}, true
}

// StatSheet is a read-only snapshot of a character's numbers
type StatSheet struct {
	CharacterID string `json:"character_id" yaml:"character_id"`
	Name        string `json:"name" yaml:"name"`

	// Attributes are raw ability scores (e.g. strength: 16)
	Attributes map[string]int `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Skills     map[string]int `json:"skills,omitempty" yaml:"skills,omitempty"`
	// Traits are duality-system traits (agility, finesse, ...)
	Traits map[string]int `json:"traits,omitempty" yaml:"traits,omitempty"`
	Custom []CustomStat   `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// CustomStat is a user-defined stat addressed by ID
type CustomStat struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

// FindCustom returns the custom stat with the given ID
func (s *StatSheet) FindCustom(id string) (CustomStat, bool) {
	if s == nil {
		return CustomStat{}, false
	}
	for _, c := range s.Custom {
		if c.ID == id {
			return c, true
		}
	}
	return CustomStat{}, false
}
