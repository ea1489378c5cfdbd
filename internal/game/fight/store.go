package fight

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/battletracker/internal/game/naming"
)

var (
	// ErrInvalidName is returned for a blank fight name.
	ErrInvalidName = errors.New("fight name must not be empty")
	// ErrNameTaken is returned when a fight with the same name, ignoring case, exists.
	ErrNameTaken = errors.New("fight name already taken")
	// ErrFightNotFound is returned when no fight has the given name.
	ErrFightNotFound = errors.New("fight not found")
	// ErrTooManyFights is returned when the store is at capacity.
	ErrTooManyFights = errors.New("too many fights")
)

// Store is the caller-owned collection of fights for one session, keyed by
// name. Fight names are unique ignoring case.
// It is not safe for concurrent use; the caller must serialise access.
type Store struct {
	fights    []*Fight
	maxFights int
	fightOpts []Option
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMaxFights caps how many fights the store holds; n < 1 means no cap.
func WithMaxFights(n int) StoreOption {
	return func(s *Store) { s.maxFights = n }
}

// WithFightOptions sets the options applied to every fight the store creates.
func WithFightOptions(opts ...Option) StoreOption {
	return func(s *Store) { s.fightOpts = append(s.fightOpts, opts...) }
}

// NewStore creates an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a new empty fight named name.
//
// Postcondition: Returns ErrInvalidName, ErrNameTaken or ErrTooManyFights
// without modifying the store, or the new fight.
func (s *Store) Create(name string) (*Fight, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if _, ok := s.Get(name); ok {
		return nil, fmt.Errorf("creating %q: %w", name, ErrNameTaken)
	}
	if err := s.checkCapacity(); err != nil {
		return nil, err
	}
	f := New(name, s.fightOpts...)
	s.fights = append(s.fights, f)
	return f, nil
}

// Get returns the fight whose name matches name ignoring case.
func (s *Store) Get(name string) (*Fight, bool) {
	i := s.index(name)
	if i < 0 {
		return nil, false
	}
	return s.fights[i], true
}

// Delete removes the fight named name.
func (s *Store) Delete(name string) error {
	i := s.index(name)
	if i < 0 {
		return fmt.Errorf("deleting %q: %w", name, ErrFightNotFound)
	}
	s.fights = slices.Delete(s.fights, i, i+1)
	return nil
}

// Duplicate copies the fight named name under a fresh unique name and adds
// the copy to the store.
func (s *Store) Duplicate(name string) (*Fight, error) {
	src, ok := s.Get(name)
	if !ok {
		return nil, fmt.Errorf("duplicating %q: %w", name, ErrFightNotFound)
	}
	if err := s.checkCapacity(); err != nil {
		return nil, err
	}
	dup := src.Duplicate(s.Names())
	dup.Rename(s.unique(dup.Name()))
	s.fights = append(s.fights, dup)
	return dup, nil
}

// Rename changes a fight's name, keeping names unique.
func (s *Store) Rename(from, to string) error {
	f, ok := s.Get(from)
	if !ok {
		return fmt.Errorf("renaming %q: %w", from, ErrFightNotFound)
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrInvalidName
	}
	if other, ok := s.Get(to); ok && other != f {
		return fmt.Errorf("renaming %q to %q: %w", from, to, ErrNameTaken)
	}
	f.Rename(to)
	return nil
}

// Names returns the fight names in creation order.
func (s *Store) Names() []string {
	names := make([]string, len(s.fights))
	for i, f := range s.fights {
		names[i] = f.Name()
	}
	return names
}

// Fights returns the fights in creation order.
func (s *Store) Fights() []*Fight { return slices.Clone(s.fights) }

// Len returns the number of fights.
func (s *Store) Len() int { return len(s.fights) }

func (s *Store) index(name string) int {
	name = strings.TrimSpace(name)
	return slices.IndexFunc(s.fights, func(f *Fight) bool { return strings.EqualFold(f.Name(), name) })
}

func (s *Store) checkCapacity() error {
	if s.maxFights > 0 && len(s.fights) >= s.maxFights {
		return fmt.Errorf("%w: limit is %d", ErrTooManyFights, s.maxFights)
	}
	return nil
}

// unique advances name through the "(n)" sequence until no fight holds it,
// ignoring case.
func (s *Store) unique(name string) string {
	for i := 0; i <= len(s.fights); i++ {
		if s.index(name) < 0 {
			return name
		}
		name = naming.Next(name)
	}
	return name
}
