package fight

import (
	"cmp"
	"math"
	"slices"

	"github.com/cory-johannsen/battletracker/internal/game/character"
	"github.com/cory-johannsen/battletracker/internal/game/condition"
	"github.com/cory-johannsen/battletracker/internal/game/dice"
)

// RollInitiative rolls a d20 for every character that has no roll yet,
// computes the turn order and switches the display to initiative order.
//
// Precondition: roller must be non-nil.
// Postcondition: Every character has a roll in [1, 20] and an order in [1, Len()].
func (f *Fight) RollInitiative(roller *dice.Roller) {
	for _, c := range f.characters {
		if _, ok := c.Initiative(); !ok {
			c.SetInitiativeRoll(roller.D20())
		}
	}
	f.SetInitiativeOrder(roller.Source())
	if len(f.characters) > 0 {
		f.sortOrder = OrderInitiative
	}
	f.events.Append(EventInitiativeRolled)
}

// InitiativeRolled reports whether any character holds an initiative roll.
func (f *Fight) InitiativeRolled() bool {
	return slices.ContainsFunc(f.characters, func(c *character.Character) bool {
		_, ok := c.Initiative()
		return ok
	})
}

// turnKey is the composite initiative key of one character.
type turnKey struct {
	c        *character.Character
	dead     bool
	rolled   bool
	roll     int
	dex      int
	bonus    int
	order    int
	hasOrder bool
	random   int
}

// SetInitiativeOrder assigns every character a 1-based turn position from a
// single stable sort.
//
// Dead characters go after everyone else. Within each group, characters
// without a roll go last; the rest sort descending by roll, then dexterity
// (default 10), then initiative bonus. Remaining ties put characters with a
// previous turn position first, in that order, and are otherwise broken by a
// value drawn from src.
//
// Precondition: src must be non-nil.
// Postcondition: InitiativeOrder() of the i-th character in turn order is i.
func (f *Fight) SetInitiativeOrder(src dice.Source) {
	keys := make([]turnKey, len(f.characters))
	for i, c := range f.characters {
		roll, rolled := c.Initiative()
		order, hasOrder := c.InitiativeOrder()
		keys[i] = turnKey{
			c:        c,
			dead:     c.HasCondition(condition.Dead),
			rolled:   rolled,
			roll:     roll,
			dex:      c.Abilities.Score(character.Dexterity),
			bonus:    c.InitiativeBonus,
			order:    order,
			hasOrder: hasOrder,
			random:   src.Intn(math.MaxInt32),
		}
	}

	slices.SortStableFunc(keys, compareTurnKeys)

	for i, k := range keys {
		k.c.SetInitiativeOrder(i + 1)
	}
}

func compareTurnKeys(a, b turnKey) int {
	if a.dead != b.dead {
		if a.dead {
			return 1
		}
		return -1
	}
	if a.rolled != b.rolled {
		if a.rolled {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(b.roll, a.roll); c != 0 {
		return c
	}
	if c := cmp.Compare(b.dex, a.dex); c != 0 {
		return c
	}
	if c := cmp.Compare(b.bonus, a.bonus); c != 0 {
		return c
	}
	if a.hasOrder != b.hasOrder {
		if a.hasOrder {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.order, b.order); c != 0 {
		return c
	}
	return cmp.Compare(b.random, a.random)
}
