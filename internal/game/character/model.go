// Package character defines the combatant model tracked in a fight and its
// hit point and condition state machine.
package character

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// ErrInvalidArgument reports a contract violation by the caller, such as a
// negative damage amount. It is never returned for ordinary no-op input.
var ErrInvalidArgument = errors.New("invalid argument")

// Type distinguishes player characters from NPCs.
type Type string

const (
	TypePlayer Type = "player"
	TypeNPC    Type = "npc"
)

// ParseType converts s ("player" or "npc", any case) to a Type.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypePlayer:
		return TypePlayer, nil
	case TypeNPC:
		return TypeNPC, nil
	}
	return "", fmt.Errorf("%w: type must be %q or %q, got %q", ErrInvalidArgument, TypePlayer, TypeNPC, s)
}

// Ability names one of the six ability scores.
type Ability string

const (
	Strength     Ability = "strength"
	Dexterity    Ability = "dexterity"
	Constitution Ability = "constitution"
	Intelligence Ability = "intelligence"
	Wisdom       Ability = "wisdom"
	Charisma     Ability = "charisma"
)

// Abilities lists the six abilities in sheet order.
var Abilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// DefaultAbilityScore is assumed for an ability that was never set.
const DefaultAbilityScore = 10

// AbilityScores maps an ability to its score. A missing key means unset.
type AbilityScores map[Ability]int

// Score returns the score for a, or DefaultAbilityScore when unset.
func (s AbilityScores) Score(a Ability) int {
	if v, ok := s[a]; ok {
		return v
	}
	return DefaultAbilityScore
}

// Clone returns an independent copy; a nil receiver yields an empty map.
func (s AbilityScores) Clone() AbilityScores {
	out := make(AbilityScores, len(s))
	maps.Copy(out, s)
	return out
}

// Params is the typed input for New.
type Params struct {
	Name string
	HP   int
	Type Type

	AC        *int
	CharClass string
	Size      string
	Race      string
	Alignment string
	Notes     string

	InitiativeBonus int
	Abilities       AbilityScores
}

// Owner is the roster a character belongs to. A Fight installs itself as
// owner on insert so that character events surface on the fight and renames
// keep roster names unique.
type Owner interface {
	// CharacterEvent is called after c records event.
	CharacterEvent(c *Character, event string)
	// ResolveName returns a name for c that no other roster member holds.
	ResolveName(c *Character, name string) string
}

// Option configures a Character at construction.
type Option func(*options)

type options struct {
	history int
}

// WithHistory sets how many events the character retains. The default keeps
// only the most recent one.
func WithHistory(n int) Option {
	return func(o *options) { o.history = n }
}
