package character

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/battletracker/internal/game/condition"
	"github.com/cory-johannsen/battletracker/internal/game/eventlog"
)

// Event descriptions recorded by the state machine.
const (
	EventCreated      = "Character Created!"
	EventUpdated      = "Character Updated"
	EventUnconscious  = "Has fallen unconscious!"
	EventFullHealth   = "Returned to full health!"
	EventNormal       = "Returned to normal condition"
	EventReset        = "Has been reset"
	eventDamageFormat = "Took %d points of damage!"
	eventHealFormat   = "Healed %d points!"
)

// Character is one combatant: identity, hit points, conditions, ability
// scores and initiative data.
//
// A character at 0 HP or below is down and carries the Unconscious condition.
// Damage is never floored; only FullDamage stops exactly at 0.
// It is not safe for concurrent use; the caller must serialise access.
type Character struct {
	id    string
	name  string
	typ   Type
	hp    int
	maxHP int

	conditions *condition.Set
	events     *eventlog.Log
	owner      Owner

	initiativeRoll  *int
	initiativeOrder *int

	AC              *int
	CharClass       string
	Size            string
	Race            string
	Alignment       string
	Notes           string
	InitiativeBonus int
	Abilities       AbilityScores
}

// New creates a character at full health with no conditions.
//
// Precondition: p.Name is not blank; p.HP >= 0; p.Type is TypePlayer or TypeNPC.
// Postcondition: HP() == MaxHP() == p.HP and LastEvent() == EventCreated,
// or an error wrapping ErrInvalidArgument.
func New(p Params, opts ...Option) (*Character, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	if p.HP < 0 {
		return nil, fmt.Errorf("%w: hp must be >= 0, got %d", ErrInvalidArgument, p.HP)
	}
	typ, err := ParseType(string(p.Type))
	if err != nil {
		return nil, err
	}

	o := options{history: eventlog.DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Character{
		id:              uuid.NewString(),
		name:            p.Name,
		typ:             typ,
		hp:              p.HP,
		maxHP:           p.HP,
		conditions:      condition.NewSet(),
		events:          eventlog.New(o.history),
		AC:              copyInt(p.AC),
		CharClass:       p.CharClass,
		Size:            p.Size,
		Race:            p.Race,
		Alignment:       p.Alignment,
		Notes:           p.Notes,
		InitiativeBonus: p.InitiativeBonus,
		Abilities:       p.Abilities.Clone(),
	}
	c.events.Append(EventCreated)
	return c, nil
}

// ID returns the character's unique identity.
func (c *Character) ID() string { return c.id }

// Name returns the character's display name.
func (c *Character) Name() string { return c.name }

// Type returns the combatant role.
func (c *Character) Type() Type { return c.typ }

// IsPlayer reports whether the character is a player character.
func (c *Character) IsPlayer() bool { return c.typ == TypePlayer }

// IsNPC reports whether the character is a non-player character.
func (c *Character) IsNPC() bool { return c.typ == TypeNPC }

// HP returns current hit points; negative after overkill damage.
func (c *Character) HP() int { return c.hp }

// MaxHP returns maximum hit points.
func (c *Character) MaxHP() int { return c.maxHP }

// IsDown reports whether HP is at or below 0.
func (c *Character) IsDown() bool { return c.hp <= 0 }

// Conditions returns the active conditions in the order applied.
func (c *Character) Conditions() []string { return c.conditions.All() }

// HasCondition reports whether name is active.
func (c *Character) HasCondition(name string) bool { return c.conditions.Has(name) }

// LastEvent returns the most recent event description.
func (c *Character) LastEvent() string { return c.events.Last() }

// Events returns the retained event history, oldest first.
func (c *Character) Events() []string { return c.events.Events() }

// Owner returns the roster holding c, or nil.
func (c *Character) Owner() Owner { return c.owner }

// Attach installs o as the owning roster; nil detaches.
func (c *Character) Attach(o Owner) { c.owner = o }

// SetLastEvent records an arbitrary event description.
func (c *Character) SetLastEvent(event string) { c.record(event) }

// Rename changes the character's name. An owning roster may substitute a
// deduplicated name; the name actually applied is returned.
//
// Precondition: name is not blank.
func (c *Character) Rename(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return c.name, fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	if name == c.name {
		return name, nil
	}
	if c.owner != nil {
		name = c.owner.ResolveName(c, name)
	}
	c.name = name
	return name, nil
}

// TakeDamage subtracts amount from HP. At 0 HP or below the character gains
// Unconscious.
//
// Precondition: amount >= 0.
// Postcondition: HP() is reduced by amount, saturating at math.MinInt;
// IsDown() implies HasCondition(Unconscious).
func (c *Character) TakeDamage(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: damage must be >= 0, got %d", ErrInvalidArgument, amount)
	}
	if c.hp < math.MinInt+amount {
		c.hp = math.MinInt
	} else {
		c.hp -= amount
	}
	if c.hp <= 0 {
		c.conditions.Add(condition.Unconscious)
		c.record(EventUnconscious)
		return nil
	}
	c.record(fmt.Sprintf(eventDamageFormat, amount))
	return nil
}

// FullDamage drops the character to exactly 0 HP. No-op when already down.
func (c *Character) FullDamage() {
	if c.hp <= 0 {
		return
	}
	// hp > 0 so the amount is valid
	_ = c.TakeDamage(c.hp)
}

// Heal restores amount HP, clamped to MaxHP. Healing a character below 0 HP
// starts from 0. No-op at full health.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= HP() <= MaxHP() unless the character was already at or above MaxHP.
func (c *Character) Heal(amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: healing must be >= 0, got %d", ErrInvalidArgument, amount)
	}
	if c.hp >= c.maxHP {
		return nil
	}
	base := max(c.hp, 0)
	c.hp = base + min(amount, c.maxHP-base)
	if c.hp > 0 {
		c.conditions.Remove(condition.Unconscious)
	}
	if c.hp == c.maxHP {
		c.record(EventFullHealth)
	} else {
		c.record(fmt.Sprintf(eventHealFormat, amount))
	}
	return nil
}

// FullHeal restores the character to MaxHP.
func (c *Character) FullHeal() {
	if c.hp >= c.maxHP {
		return
	}
	// healing starts from 0, so the gap never exceeds maxHP
	_ = c.Heal(c.maxHP - max(c.hp, 0))
}

// AddCondition applies name. No-op for a blank or already active name.
func (c *Character) AddCondition(name string) {
	if c.conditions.Add(name) {
		c.record("Is now " + name)
	}
}

// RemoveCondition clears name. No-op when not active.
func (c *Character) RemoveCondition(name string) {
	if c.conditions.Remove(name) {
		c.record("Is no longer " + name)
	}
}

// RemoveAllConditions clears every condition.
func (c *Character) RemoveAllConditions() {
	c.conditions.Clear()
	c.record(EventNormal)
}

// SetMaxHP changes maximum hit points. A character at full health stays at
// full health; otherwise HP is lowered only if it exceeds the new maximum.
// Dropping to 0 HP this way applies Unconscious.
//
// Precondition: maxHP >= 0.
func (c *Character) SetMaxHP(maxHP int) error {
	if maxHP < 0 {
		return fmt.Errorf("%w: max hp must be >= 0, got %d", ErrInvalidArgument, maxHP)
	}
	lowered := false
	if c.hp == c.maxHP || c.hp > maxHP {
		lowered = maxHP < c.hp
		c.hp = maxHP
	}
	c.maxHP = maxHP
	if lowered && c.hp <= 0 && c.conditions.Add(condition.Unconscious) {
		c.record(EventUnconscious)
	}
	return nil
}

// Reset restores full health and clears all conditions.
//
// Postcondition: HP() == MaxHP(), Conditions() is empty and LastEvent() == EventReset.
func (c *Character) Reset() {
	c.FullHeal()
	c.RemoveAllConditions()
	c.record(EventReset)
}

// Initiative returns the initiative roll, if one has been made.
func (c *Character) Initiative() (int, bool) { return deref(c.initiativeRoll) }

// InitiativeOrder returns the 1-based turn position, if computed.
func (c *Character) InitiativeOrder() (int, bool) { return deref(c.initiativeOrder) }

// SetInitiativeRoll records a natural initiative roll.
func (c *Character) SetInitiativeRoll(roll int) { c.initiativeRoll = &roll }

// SetInitiativeOrder records the 1-based turn position.
func (c *Character) SetInitiativeOrder(order int) { c.initiativeOrder = &order }

// ClearInitiative forgets the roll and turn position.
func (c *Character) ClearInitiative() {
	c.initiativeRoll = nil
	c.initiativeOrder = nil
}

// Copy returns an independent character named name with the same stats,
// at full health, with no conditions and no initiative.
//
// Postcondition: c is unchanged; the copy has a new ID and no owner.
func (c *Character) Copy(name string) *Character {
	cp := &Character{
		id:              uuid.NewString(),
		name:            name,
		typ:             c.typ,
		hp:              c.maxHP,
		maxHP:           c.maxHP,
		conditions:      condition.NewSet(),
		events:          eventlog.New(c.events.Cap()),
		AC:              copyInt(c.AC),
		CharClass:       c.CharClass,
		Size:            c.Size,
		Race:            c.Race,
		Alignment:       c.Alignment,
		Notes:           c.Notes,
		InitiativeBonus: c.InitiativeBonus,
		Abilities:       c.Abilities.Clone(),
	}
	cp.events.Append(EventCreated)
	return cp
}

func (c *Character) record(event string) {
	c.events.Append(event)
	if c.owner != nil {
		c.owner.CharacterEvent(c, event)
	}
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
