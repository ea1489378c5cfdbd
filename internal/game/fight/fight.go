// Package fight implements the encounter aggregate: a named roster of
// characters with unique names, derived NPC views, sorting and initiative.
package fight

import (
	"slices"
	"time"

	"github.com/cory-johannsen/battletracker/internal/game/character"
	"github.com/cory-johannsen/battletracker/internal/game/eventlog"
	"github.com/cory-johannsen/battletracker/internal/game/naming"
)

// Status is the two-state fight lifecycle.
type Status string

const (
	StatusPrepping Status = "Prepping"
	StatusStarted  Status = "Started"
)

// Fight-level event descriptions.
const (
	EventCreated          = "Fight Created!"
	EventRestarted        = "Fight Restarted!"
	EventInitiativeRolled = "Initiative Rolled!"
	EventStarted          = "Fight Started!"
)

var _ character.Owner = (*Fight)(nil)

// Fight owns an ordered roster of characters.
//
// Roster order is insertion order and is never changed by sorting.
// No two roster members share a name once Insert returns.
// It is not safe for concurrent use; the caller must serialise access.
type Fight struct {
	name       string
	notes      string
	characters []*character.Character
	status     Status
	sortOrder  SortOrder
	startedAt  time.Time
	events     *eventlog.Log
	history    int
}

// Option configures a Fight at construction.
type Option func(*options)

type options struct {
	history int
}

// WithHistory sets how many events the fight and the characters it creates
// retain. The default keeps only the most recent one.
func WithHistory(n int) Option {
	return func(o *options) { o.history = n }
}

// New creates an empty fight in the Prepping state.
//
// Postcondition: LastEvent() == EventCreated and SortOrder() == OrderCreated.
func New(name string, opts ...Option) *Fight {
	o := options{history: eventlog.DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	f := &Fight{
		name:      name,
		status:    StatusPrepping,
		sortOrder: OrderCreated,
		events:    eventlog.New(o.history),
		history:   max(o.history, 1),
	}
	f.events.Append(EventCreated)
	return f
}

// Name returns the fight's display name.
func (f *Fight) Name() string { return f.name }

// Rename changes the fight's name. Uniqueness among sibling fights is the
// owning Store's concern.
func (f *Fight) Rename(name string) { f.name = name }

// Notes returns the free-form notes.
func (f *Fight) Notes() string { return f.notes }

// SetNotes replaces the free-form notes.
func (f *Fight) SetNotes(notes string) { f.notes = notes }

// Status returns the lifecycle state.
func (f *Fight) Status() Status { return f.status }

// History returns the event capacity used for the fight and its characters.
func (f *Fight) History() int { return f.history }

// LastEvent returns the most recent fight or character event.
func (f *Fight) LastEvent() string { return f.events.Last() }

// Events returns the retained event history, oldest first.
func (f *Fight) Events() []string { return f.events.Events() }

// SetLastEvent records an arbitrary event description.
func (f *Fight) SetLastEvent(event string) { f.events.Append(event) }

// Characters returns the roster in insertion order. The slice is a copy; the
// characters are not.
func (f *Fight) Characters() []*character.Character { return slices.Clone(f.characters) }

// Len returns the roster size.
func (f *Fight) Len() int { return len(f.characters) }

// Names returns the roster names in insertion order.
func (f *Fight) Names() []string {
	names := make([]string, len(f.characters))
	for i, c := range f.characters {
		names[i] = c.Name()
	}
	return names
}

// Insert adds c to the roster, renaming it first if its name is taken.
// The fight becomes c's owner: c's later events surface on the fight and
// later renames stay unique.
//
// Precondition: c is not a member of any roster.
// Postcondition: c is the last roster member and its name is unique; returns that name.
func (f *Fight) Insert(c *character.Character) string {
	name := naming.Resolve(c.Name(), f.Names())
	c.Attach(nil)
	if name != c.Name() {
		// name is never blank here
		_, _ = c.Rename(name)
	}
	f.characters = append(f.characters, c)
	c.Attach(f)
	f.events.Append(name + " created!")
	return name
}

// RemoveCharacter removes c by identity and detaches it from the fight.
//
// Postcondition: Returns false and leaves the fight unchanged when c is not a member.
func (f *Fight) RemoveCharacter(c *character.Character) bool {
	i := slices.IndexFunc(f.characters, func(m *character.Character) bool { return m.ID() == c.ID() })
	if i < 0 {
		return false
	}
	removed := f.characters[i]
	f.characters = slices.Delete(f.characters, i, i+1)
	removed.Attach(nil)
	f.events.Append(removed.Name() + " removed!")
	return true
}

// FetchCharacter returns the first roster member named exactly name.
func (f *Fight) FetchCharacter(name string) (*character.Character, bool) {
	i := slices.IndexFunc(f.characters, func(c *character.Character) bool { return c.Name() == name })
	if i < 0 {
		return nil, false
	}
	return f.characters[i], true
}

// NPCs returns the NPC roster members in insertion order.
func (f *Fight) NPCs() []*character.Character {
	var out []*character.Character
	for _, c := range f.characters {
		if c.IsNPC() {
			out = append(out, c)
		}
	}
	return out
}

// NPCCount returns the number of NPCs in the roster.
func (f *Fight) NPCCount() int { return len(f.NPCs()) }

// PlayerCount returns the number of player characters in the roster.
func (f *Fight) PlayerCount() int { return len(f.characters) - f.NPCCount() }

// StrongestNPC returns the NPC with the highest MaxHP; the earliest inserted
// wins a tie.
func (f *Fight) StrongestNPC() (*character.Character, bool) {
	var best *character.Character
	for _, c := range f.NPCs() {
		if best == nil || c.MaxHP() > best.MaxHP() {
			best = c
		}
	}
	return best, best != nil
}

// NPCHealthPercentage returns the NPCs' combined remaining HP as a
// percentage of their combined MaxHP. A character below 0 HP counts as 0.
//
// Postcondition: Returns 0 when there are no NPCs or their combined MaxHP is 0.
func (f *Fight) NPCHealthPercentage() float64 {
	var hp, maxHP int
	for _, c := range f.NPCs() {
		hp += max(c.HP(), 0)
		maxHP += c.MaxHP()
	}
	if maxHP == 0 {
		return 0
	}
	return float64(hp) / float64(maxHP) * 100
}

// Duplicate returns a new fight named uniquely against existing, holding a
// fresh Copy of every character inserted in roster order.
//
// Postcondition: The result shares no character with f; f is unchanged.
func (f *Fight) Duplicate(existing []string) *Fight {
	dup := New(naming.Resolve(f.name, existing), WithHistory(f.history))
	dup.notes = f.notes
	for _, c := range f.characters {
		dup.Insert(c.Copy(c.Name()))
	}
	dup.events.Reset(EventCreated)
	return dup
}

// Restart resets every character, clears initiative and returns the fight to
// Prepping in creation order.
func (f *Fight) Restart() {
	for _, c := range f.characters {
		c.Reset()
		c.ClearInitiative()
	}
	f.sortOrder = OrderCreated
	f.status = StatusPrepping
	f.startedAt = time.Time{}
	f.events.Append(EventRestarted)
}

// Start marks the fight as running from at.
func (f *Fight) Start(at time.Time) {
	f.status = StatusStarted
	f.startedAt = at
	f.events.Append(EventStarted)
}

// StartedAt returns when Start was called, or the zero time.
func (f *Fight) StartedAt() time.Time { return f.startedAt }

// Elapsed returns how long the fight has been running at now, or 0 when it
// has not started.
func (f *Fight) Elapsed(now time.Time) time.Duration {
	if f.status != StatusStarted || now.Before(f.startedAt) {
		return 0
	}
	return now.Sub(f.startedAt)
}

// CharacterEvent surfaces a roster member's event on the fight.
func (f *Fight) CharacterEvent(c *character.Character, event string) {
	f.events.Append(c.Name() + ": " + event)
}

// ResolveName returns name, deduplicated against every other roster member.
func (f *Fight) ResolveName(c *character.Character, name string) string {
	others := make([]string, 0, len(f.characters))
	for _, m := range f.characters {
		if m.ID() != c.ID() {
			others = append(others, m.Name())
		}
	}
	return naming.Resolve(name, others)
}

// NewCharacter builds a character from params carrying the fight's history
// capacity and inserts it.
func (f *Fight) NewCharacter(params map[string]string) (*character.Character, error) {
	c, err := character.FromParams(params, character.WithHistory(f.history))
	if err != nil {
		return nil, err
	}
	f.Insert(c)
	return c, nil
}
