package character_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battletracker/internal/game/character"
	"github.com/cory-johannsen/battletracker/internal/game/condition"
)

type testingT interface {
	require.TestingT
	Helper()
}

func newNPC(t testingT, name string, hp int) *character.Character {
	t.Helper()
	c, err := character.New(character.Params{Name: name, HP: hp, Type: character.TypeNPC})
	require.NoError(t, err)
	return c
}

// recordingOwner captures forwarded events and appends a suffix on rename.
type recordingOwner struct {
	events []string
}

func (o *recordingOwner) CharacterEvent(c *character.Character, event string) {
	o.events = append(o.events, c.Name()+": "+event)
}

func (o *recordingOwner) ResolveName(_ *character.Character, name string) string {
	return name + "(2)"
}

func TestNew_StartingState(t *testing.T) {
	c := newNPC(t, "npc", 10)
	assert.Equal(t, "npc", c.Name())
	assert.Equal(t, 10, c.HP())
	assert.Equal(t, 10, c.MaxHP())
	assert.Empty(t, c.Conditions())
	assert.Equal(t, 0, c.InitiativeBonus)
	assert.Nil(t, c.AC)
	assert.Equal(t, character.EventCreated, c.LastEvent())
	assert.NotEmpty(t, c.ID())
	_, rolled := c.Initiative()
	assert.False(t, rolled)
	_, ordered := c.InitiativeOrder()
	assert.False(t, ordered)
}

func TestNew_Validation(t *testing.T) {
	tests := []character.Params{
		{Name: "", HP: 10, Type: character.TypeNPC},
		{Name: "  ", HP: 10, Type: character.TypeNPC},
		{Name: "x", HP: -1, Type: character.TypeNPC},
		{Name: "x", HP: 10, Type: "monster"},
	}
	for _, p := range tests {
		_, err := character.New(p)
		assert.ErrorIs(t, err, character.ErrInvalidArgument, "params=%+v", p)
	}
}

func TestTypePredicates(t *testing.T) {
	p, err := character.New(character.Params{Name: "player", HP: 10, Type: character.TypePlayer})
	require.NoError(t, err)
	n := newNPC(t, "npc", 10)

	assert.True(t, p.IsPlayer())
	assert.False(t, p.IsNPC())
	assert.True(t, n.IsNPC())
	assert.False(t, n.IsPlayer())
}

func TestTakeDamage(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.TakeDamage(5))
	assert.Equal(t, 5, c.HP())
	assert.Equal(t, "Took 5 points of damage!", c.LastEvent())
}

func TestTakeDamage_GoesNegative(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.TakeDamage(15))
	assert.Equal(t, -5, c.HP())
	assert.True(t, c.IsDown())
}

func TestTakeDamage_ZeroHPSetsUnconscious(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.TakeDamage(10))
	assert.Equal(t, character.EventUnconscious, c.LastEvent())
	assert.Contains(t, c.Conditions(), condition.Unconscious)
}

func TestTakeDamage_SaturatesAtMinInt(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.TakeDamage(math.MaxInt))
	require.NoError(t, c.TakeDamage(math.MaxInt))
	assert.Equal(t, math.MinInt, c.HP())
	assert.True(t, c.IsDown())
	assert.True(t, c.HasCondition(condition.Unconscious))

	c.FullHeal()
	assert.Equal(t, 10, c.HP())
	assert.False(t, c.HasCondition(condition.Unconscious))
}

func TestTakeDamage_NegativeAmountRejected(t *testing.T) {
	c := newNPC(t, "npc", 10)
	err := c.TakeDamage(-1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, character.ErrInvalidArgument))
	assert.Equal(t, 10, c.HP())
	assert.Equal(t, character.EventCreated, c.LastEvent())
}

func TestFullDamage(t *testing.T) {
	c := newNPC(t, "npc", 10)
	c.FullDamage()
	assert.Equal(t, 0, c.HP())
	assert.True(t, c.HasCondition(condition.Unconscious))
}

func TestFullDamage_NoOpWhenDown(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.TakeDamage(12))
	c.SetLastEvent("marker")
	c.FullDamage()
	assert.Equal(t, -2, c.HP())
	assert.Equal(t, "marker", c.LastEvent())
}

func TestHeal(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.TakeDamage(5))
	require.NoError(t, c.Heal(4))
	assert.Equal(t, 9, c.HP())
	assert.Equal(t, "Healed 4 points!", c.LastEvent())

	require.NoError(t, c.Heal(4))
	assert.Equal(t, 10, c.HP())
	assert.Equal(t, character.EventFullHealth, c.LastEvent())
}

func TestHeal_NoOpAtFullHealth(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.Heal(1))
	assert.Equal(t, 10, c.HP())
	assert.Equal(t, character.EventCreated, c.LastEvent())
}

func TestHeal_FromNegativeStartsAtZero(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.TakeDamage(15))
	require.NoError(t, c.Heal(3))
	assert.Equal(t, 3, c.HP())
	assert.False(t, c.HasCondition(condition.Unconscious))
}

func TestHeal_LargeAmounts(t *testing.T) {
	tests := []struct {
		name   string
		damage int
		heal   int
		wantHP int
	}{
		{"max int from wounded", 5, math.MaxInt, 10},
		{"max int from negative", 25, math.MaxInt, 10},
		{"max int from min int", math.MaxInt, math.MaxInt, 10},
		{"exact gap", 4, 4, 10},
		{"partial", 25, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newNPC(t, "npc", 10)
			require.NoError(t, c.TakeDamage(tt.damage))
			if tt.damage == math.MaxInt {
				require.NoError(t, c.TakeDamage(tt.damage))
			}
			require.NoError(t, c.Heal(tt.heal))
			assert.Equal(t, tt.wantHP, c.HP())
			assert.False(t, c.HasCondition(condition.Unconscious))
			if tt.wantHP == 10 {
				assert.Equal(t, character.EventFullHealth, c.LastEvent())
			}
		})
	}
}

func TestHeal_NegativeAmountRejected(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.TakeDamage(5))
	assert.ErrorIs(t, c.Heal(-3), character.ErrInvalidArgument)
	assert.Equal(t, 5, c.HP())
}

func TestFullHeal(t *testing.T) {
	c := newNPC(t, "npc", 10)
	c.FullDamage()
	c.FullHeal()
	assert.Equal(t, 10, c.HP())
	assert.Empty(t, c.Conditions())
	assert.Equal(t, character.EventFullHealth, c.LastEvent())
}

func TestAddCondition(t *testing.T) {
	c := newNPC(t, "npc", 10)
	c.AddCondition("new")
	assert.Equal(t, []string{"new"}, c.Conditions())
	assert.Equal(t, "Is now new", c.LastEvent())

	c.AddCondition("second")
	assert.Equal(t, []string{"new", "second"}, c.Conditions())
}

func TestAddCondition_IgnoresEmptyAndDuplicate(t *testing.T) {
	c := newNPC(t, "npc", 10)
	c.AddCondition("Prone")
	c.SetLastEvent("marker")
	c.AddCondition("Prone")
	c.AddCondition("")
	assert.Equal(t, []string{"Prone"}, c.Conditions())
	assert.Equal(t, "marker", c.LastEvent())
}

func TestRemoveCondition(t *testing.T) {
	c := newNPC(t, "npc", 10)
	c.AddCondition("new")
	c.AddCondition("second")

	c.RemoveCondition("not there")
	assert.Equal(t, "Is now second", c.LastEvent())

	c.RemoveCondition("new")
	assert.Equal(t, []string{"second"}, c.Conditions())
	assert.Equal(t, "Is no longer new", c.LastEvent())
}

func TestRemoveAllConditions(t *testing.T) {
	c := newNPC(t, "npc", 10)
	c.AddCondition("new")
	c.RemoveAllConditions()
	assert.Empty(t, c.Conditions())
	assert.Equal(t, character.EventNormal, c.LastEvent())
}

func TestSetMaxHP_OnlyChangesHPIfFull(t *testing.T) {
	hurt := newNPC(t, "npc_0", 10)
	full := newNPC(t, "npc_1", 10)

	require.NoError(t, hurt.TakeDamage(5))
	require.NoError(t, hurt.SetMaxHP(20))
	require.NoError(t, full.SetMaxHP(20))

	assert.Equal(t, 5, hurt.HP())
	assert.Equal(t, 20, full.HP())
	assert.Equal(t, 20, hurt.MaxHP())
}

func TestSetMaxHP_LowersHPAboveNewMax(t *testing.T) {
	c := newNPC(t, "npc", 20)
	require.NoError(t, c.TakeDamage(2))
	require.NoError(t, c.SetMaxHP(10))
	assert.Equal(t, 10, c.HP())
	assert.ErrorIs(t, c.SetMaxHP(-1), character.ErrInvalidArgument)
}

func TestSetMaxHP_ZeroKnocksOut(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.SetMaxHP(0))
	assert.Equal(t, 0, c.HP())
	assert.True(t, c.HasCondition(condition.Unconscious))
	assert.Equal(t, character.EventUnconscious, c.LastEvent())

	require.NoError(t, c.SetMaxHP(8))
	assert.Equal(t, 8, c.HP(), "a full-health character stays full")
	assert.False(t, c.HasCondition(condition.Unconscious))
}

func TestSetMaxHP_AlreadyDownKeepsEvent(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.TakeDamage(12))
	c.SetLastEvent("marker")
	require.NoError(t, c.SetMaxHP(0))
	assert.Equal(t, -2, c.HP())
	assert.Equal(t, "marker", c.LastEvent())
}

func TestReset(t *testing.T) {
	c := newNPC(t, "npc", 10)
	require.NoError(t, c.TakeDamage(5))
	c.AddCondition("prone")

	c.Reset()

	assert.Equal(t, 10, c.HP())
	assert.Empty(t, c.Conditions())
	assert.Equal(t, character.EventReset, c.LastEvent())
}

func TestCopy_IsIndependent(t *testing.T) {
	ac := 15
	src, err := character.New(character.Params{
		Name: "npc", HP: 10, Type: character.TypeNPC, AC: &ac, Race: "elf",
		InitiativeBonus: 2, Abilities: character.AbilityScores{character.Dexterity: 14},
	})
	require.NoError(t, err)
	require.NoError(t, src.TakeDamage(7))
	src.AddCondition("Prone")
	src.SetInitiativeRoll(12)

	cp := src.Copy("npc(2)")

	assert.Equal(t, "npc(2)", cp.Name())
	assert.NotEqual(t, src.ID(), cp.ID())
	assert.Equal(t, 10, cp.HP())
	assert.Empty(t, cp.Conditions())
	assert.Equal(t, character.EventCreated, cp.LastEvent())
	assert.Equal(t, "elf", cp.Race)
	assert.Equal(t, 2, cp.InitiativeBonus)
	_, rolled := cp.Initiative()
	assert.False(t, rolled)

	// no aliasing
	*cp.AC = 99
	cp.Abilities[character.Dexterity] = 3
	assert.Equal(t, 15, *src.AC)
	assert.Equal(t, 14, src.Abilities[character.Dexterity])

	// source untouched
	assert.Equal(t, 3, src.HP())
	assert.Equal(t, []string{"Prone"}, src.Conditions())
}

func TestWithHistory_KeepsRecentEvents(t *testing.T) {
	c, err := character.New(character.Params{Name: "npc", HP: 10, Type: character.TypeNPC}, character.WithHistory(3))
	require.NoError(t, err)
	require.NoError(t, c.TakeDamage(1))
	require.NoError(t, c.TakeDamage(2))
	require.NoError(t, c.TakeDamage(3))
	assert.Equal(t, []string{
		"Took 1 points of damage!",
		"Took 2 points of damage!",
		"Took 3 points of damage!",
	}, c.Events())

	cp := c.Copy("copy")
	require.NoError(t, cp.TakeDamage(1))
	assert.Len(t, cp.Events(), 2)
}

func TestOwner_ReceivesEventsAndResolvesNames(t *testing.T) {
	c := newNPC(t, "npc", 10)
	o := &recordingOwner{}
	c.Attach(o)

	require.NoError(t, c.TakeDamage(3))
	got, err := c.Rename("goblin")
	require.NoError(t, err)
	assert.Equal(t, "goblin(2)", got)
	assert.Equal(t, "goblin(2)", c.Name())
	c.AddCondition("Prone")

	assert.Equal(t, []string{"npc: Took 3 points of damage!", "goblin(2): Is now Prone"}, o.events)

	c.Attach(nil)
	c.Reset()
	assert.Len(t, o.events, 2)
}

func TestRename_RejectsBlank(t *testing.T) {
	c := newNPC(t, "npc", 10)
	_, err := c.Rename(" ")
	assert.ErrorIs(t, err, character.ErrInvalidArgument)
	assert.Equal(t, "npc", c.Name())
}

func TestAbilityScores_DefaultTen(t *testing.T) {
	var s character.AbilityScores
	assert.Equal(t, 10, s.Score(character.Dexterity))
	s = character.AbilityScores{character.Dexterity: 16}
	assert.Equal(t, 16, s.Score(character.Dexterity))
}

// Property: healing never leaves HP outside [0, MaxHP].
func TestHeal_Property_WithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(1, 200).Draw(rt, "max_hp")
		amount := rapid.OneOf(rapid.IntRange(0, 400), rapid.IntRange(math.MaxInt-400, math.MaxInt))
		dmg := amount.Draw(rt, "dmg")
		heal := amount.Draw(rt, "heal")

		c := newNPC(rt, "x", maxHP)
		require.NoError(rt, c.TakeDamage(dmg))
		require.NoError(rt, c.Heal(heal))
		assert.GreaterOrEqual(rt, c.HP(), 0)
		assert.LessOrEqual(rt, c.HP(), maxHP)
		assert.Equal(rt, c.HP() <= 0, c.HasCondition(condition.Unconscious))
	})
}

// Property: any run of damage keeps IsDown and Unconscious in step.
func TestTakeDamage_Property_DownMeansUnconscious(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(1, 200).Draw(rt, "max_hp")
		hits := rapid.SliceOfN(rapid.OneOf(rapid.IntRange(0, 50), rapid.Just(math.MaxInt)), 1, 5).Draw(rt, "hits")

		c := newNPC(rt, "x", maxHP)
		for _, hit := range hits {
			require.NoError(rt, c.TakeDamage(hit))
			assert.Equal(rt, c.IsDown(), c.HasCondition(condition.Unconscious))
			assert.LessOrEqual(rt, c.HP(), maxHP)
		}
	})
}

// Property: damage followed by an equal heal restores HP when nothing was clamped.
func TestDamageThenHeal_Property_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(2, 200).Draw(rt, "max_hp")
		dmg := rapid.IntRange(0, maxHP-1).Draw(rt, "dmg")

		c := newNPC(rt, "x", maxHP)
		before := c.HP()
		require.NoError(rt, c.TakeDamage(dmg))
		require.NoError(rt, c.Heal(dmg))
		assert.Equal(rt, before, c.HP())
	})
}

// Property: Copy never mutates the source and always starts fresh.
func TestCopy_Property_FreshAndIndependent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(0, 100).Draw(rt, "max_hp")
		dmg := rapid.IntRange(0, 150).Draw(rt, "dmg")
		conds := rapid.SliceOf(rapid.SampledFrom([]string{"Prone", "Stunned", "Blinded"})).Draw(rt, "conds")

		src := newNPC(rt, "src", maxHP)
		require.NoError(rt, src.TakeDamage(dmg))
		for _, cn := range conds {
			src.AddCondition(cn)
		}
		hp, before := src.HP(), src.Conditions()

		cp := src.Copy("dst")
		assert.Equal(rt, cp.MaxHP(), cp.HP())
		assert.Empty(rt, cp.Conditions())
		assert.Equal(rt, hp, src.HP())
		assert.Equal(rt, before, src.Conditions())
	})
}
