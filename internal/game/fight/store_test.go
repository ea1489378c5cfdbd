package fight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battletracker/internal/game/character"
	"github.com/cory-johannsen/battletracker/internal/game/fight"
)

func TestStore_CreateAndGet(t *testing.T) {
	s := fight.NewStore()
	f, err := s.Create("  Goblin Ambush ")
	require.NoError(t, err)
	assert.Equal(t, "Goblin Ambush", f.Name())

	got, ok := s.Get("goblin ambush")
	require.True(t, ok)
	assert.Same(t, f, got)
	assert.Equal(t, 1, s.Len())
}

func TestStore_CreateErrors(t *testing.T) {
	s := fight.NewStore(fight.WithMaxFights(2))
	_, err := s.Create(" ")
	assert.ErrorIs(t, err, fight.ErrInvalidName)

	_, err = s.Create("a")
	require.NoError(t, err)
	_, err = s.Create("A")
	assert.ErrorIs(t, err, fight.ErrNameTaken)

	_, err = s.Create("b")
	require.NoError(t, err)
	_, err = s.Create("c")
	assert.ErrorIs(t, err, fight.ErrTooManyFights)
	assert.Equal(t, []string{"a", "b"}, s.Names())
}

func TestStore_Delete(t *testing.T) {
	s := fight.NewStore()
	_, err := s.Create("a")
	require.NoError(t, err)

	require.NoError(t, s.Delete("A"))
	assert.Equal(t, 0, s.Len())
	assert.ErrorIs(t, s.Delete("a"), fight.ErrFightNotFound)
}

func TestStore_Duplicate(t *testing.T) {
	s := fight.NewStore()
	f, err := s.Create("fight")
	require.NoError(t, err)
	f.Insert(newChar(t, "npc", 10, character.TypeNPC))

	d1, err := s.Duplicate("fight")
	require.NoError(t, err)
	d2, err := s.Duplicate("fight")
	require.NoError(t, err)
	d3, err := s.Duplicate("fight(2)")
	require.NoError(t, err)

	assert.Equal(t, []string{"fight", "fight(2)", "fight(3)", "fight(4)"}, s.Names())
	assert.Equal(t, 1, d1.Len())
	assert.NotSame(t, f.Characters()[0], d1.Characters()[0])
	assert.Equal(t, "fight(3)", d2.Name())
	assert.Equal(t, "fight(4)", d3.Name())

	_, err = s.Duplicate("nope")
	assert.ErrorIs(t, err, fight.ErrFightNotFound)
}

func TestStore_DuplicateIgnoresCaseCollisions(t *testing.T) {
	s := fight.NewStore()
	_, err := s.Create("fight")
	require.NoError(t, err)
	_, err = s.Create("FIGHT(2)")
	require.NoError(t, err)

	d, err := s.Duplicate("fight")
	require.NoError(t, err)
	assert.Equal(t, "fight(3)", d.Name())
}

func TestStore_Rename(t *testing.T) {
	s := fight.NewStore()
	_, err := s.Create("a")
	require.NoError(t, err)
	_, err = s.Create("b")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Rename("a", "B"), fight.ErrNameTaken)
	assert.ErrorIs(t, s.Rename("zzz", "c"), fight.ErrFightNotFound)
	assert.ErrorIs(t, s.Rename("a", ""), fight.ErrInvalidName)
	require.NoError(t, s.Rename("a", "A"))
	require.NoError(t, s.Rename("b", "c"))
	assert.Equal(t, []string{"A", "c"}, s.Names())
}

func TestStore_FightOptions(t *testing.T) {
	s := fight.NewStore(fight.WithFightOptions(fight.WithHistory(5)))
	f, err := s.Create("a")
	require.NoError(t, err)
	assert.Equal(t, 5, f.History())

	d, err := s.Duplicate("a")
	require.NoError(t, err)
	assert.Equal(t, 5, d.History())
}

func TestStore_FightsInCreationOrder(t *testing.T) {
	s := fight.NewStore()
	for _, n := range []string{"c", "a", "b"} {
		_, err := s.Create(n)
		require.NoError(t, err)
	}
	var names []string
	for _, f := range s.Fights() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}
