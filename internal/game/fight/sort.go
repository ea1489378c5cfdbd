package fight

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/cory-johannsen/battletracker/internal/game/character"
)

// ErrInvalidSortOrder is returned by SetSortOrder for an order that is not
// currently one of SortOptions.
var ErrInvalidSortOrder = errors.New("invalid sort order")

// SortOrder names a display ordering of the roster.
type SortOrder string

const (
	OrderCreated          SortOrder = "Order Created"
	OrderCreatedReverse   SortOrder = "Reverse Order Created"
	OrderAlphabetical     SortOrder = "Alphabetical"
	OrderAlphabeticalDesc SortOrder = "Reverse Alphabetical"
	OrderMaxHPHighest     SortOrder = "Highest Max HP"
	OrderMaxHPLowest      SortOrder = "Lowest Max HP"
	OrderHPHighest        SortOrder = "Highest Remaining HP"
	OrderHPLowest         SortOrder = "Lowest Remaining HP"
	OrderInitiative       SortOrder = "Initiative"
	OrderInitiativeDesc   SortOrder = "Reverse Initiative"
)

var baseOrders = []SortOrder{
	OrderCreated, OrderCreatedReverse,
	OrderAlphabetical, OrderAlphabeticalDesc,
	OrderMaxHPHighest, OrderMaxHPLowest,
	OrderHPHighest, OrderHPLowest,
}

var initiativeOrders = []SortOrder{OrderInitiative, OrderInitiativeDesc}

// comparators holds the comparison sort for every order except the two
// creation orders.
var comparators = map[SortOrder]func(a, b *character.Character) int{
	OrderAlphabetical: func(a, b *character.Character) int {
		return cmp.Compare(a.Name(), b.Name())
	},
	OrderAlphabeticalDesc: func(a, b *character.Character) int {
		return cmp.Compare(b.Name(), a.Name())
	},
	OrderMaxHPHighest: func(a, b *character.Character) int {
		return cmp.Compare(b.MaxHP(), a.MaxHP())
	},
	OrderMaxHPLowest: func(a, b *character.Character) int {
		return cmp.Compare(a.MaxHP(), b.MaxHP())
	},
	OrderHPHighest: func(a, b *character.Character) int {
		return cmp.Compare(b.HP(), a.HP())
	},
	OrderHPLowest: func(a, b *character.Character) int {
		return cmp.Compare(a.HP(), b.HP())
	},
	OrderInitiative: func(a, b *character.Character) int {
		return compareTurn(a, b, false)
	},
	OrderInitiativeDesc: func(a, b *character.Character) int {
		return compareTurn(a, b, true)
	},
}

// compareTurn orders by InitiativeOrder; characters without one go last
// in either direction.
func compareTurn(a, b *character.Character, reverse bool) int {
	ao, aok := a.InitiativeOrder()
	bo, bok := b.InitiativeOrder()
	switch {
	case aok != bok:
		if aok {
			return -1
		}
		return 1
	case reverse:
		return cmp.Compare(bo, ao)
	default:
		return cmp.Compare(ao, bo)
	}
}

// ParseSortOrder matches s against the known orders ignoring case.
func ParseSortOrder(s string) (SortOrder, error) {
	for _, o := range slices.Concat(baseOrders, initiativeOrders) {
		if strings.EqualFold(string(o), strings.TrimSpace(s)) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, s)
}

// SortOrder returns the active display ordering.
func (f *Fight) SortOrder() SortOrder { return f.sortOrder }

// SortOptions returns the orders currently valid for SetSortOrder. The
// initiative orders are offered only while initiative is rolled.
func (f *Fight) SortOptions() []SortOrder {
	if f.InitiativeRolled() {
		return slices.Concat(baseOrders, initiativeOrders)
	}
	return slices.Clone(baseOrders)
}

// SetSortOrder changes the display ordering.
//
// Postcondition: Returns ErrInvalidSortOrder and leaves the order unchanged
// when order is not in SortOptions().
func (f *Fight) SetSortOrder(order SortOrder) error {
	if !slices.Contains(f.SortOptions(), order) {
		return fmt.Errorf("%w: %q", ErrInvalidSortOrder, order)
	}
	f.sortOrder = order
	return nil
}

// EachCharacter yields the roster in the active sort order. The roster
// itself is not reordered. Comparison sorts are stable, so ties keep
// insertion order.
func (f *Fight) EachCharacter() iter.Seq[*character.Character] {
	return func(yield func(*character.Character) bool) {
		view := f.sorted()
		for _, c := range view {
			if !yield(c) {
				return
			}
		}
	}
}

// Sorted returns a snapshot of EachCharacter.
func (f *Fight) Sorted() []*character.Character {
	return slices.Collect(f.EachCharacter())
}

func (f *Fight) sorted() []*character.Character {
	view := slices.Clone(f.characters)
	switch f.sortOrder {
	case OrderCreated:
	case OrderCreatedReverse:
		slices.Reverse(view)
	default:
		if compare, ok := comparators[f.sortOrder]; ok {
			slices.SortStableFunc(view, compare)
		}
	}
	return view
}
