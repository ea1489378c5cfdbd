// Package condition provides the condition catalog and the per-character
// collection of active condition names.
package condition

import "slices"

// Set is an insertion-ordered collection of distinct, non-empty condition names.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	names []string
}

// NewSet creates a Set holding names, skipping blanks and duplicates.
func NewSet(names ...string) *Set {
	s := &Set{}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add appends name to the set.
//
// Postcondition: Returns true iff name was non-empty and not already present.
func (s *Set) Add(name string) bool {
	if name == "" || s.Has(name) {
		return false
	}
	s.names = append(s.names, name)
	return true
}

// Remove deletes name from the set, preserving the order of the rest.
//
// Postcondition: Has(name) is false; returns true iff name was present.
func (s *Set) Remove(name string) bool {
	i := slices.Index(s.names, name)
	if i < 0 {
		return false
	}
	s.names = slices.Delete(s.names, i, i+1)
	return true
}

// Has reports whether name is in the set.
func (s *Set) Has(name string) bool {
	return slices.Contains(s.names, name)
}

// Clear removes every name.
func (s *Set) Clear() {
	s.names = nil
}

// Len returns the number of names in the set.
func (s *Set) Len() int { return len(s.names) }

// All returns the names in insertion order.
// The slice is a new allocation; mutating it does not affect the set.
func (s *Set) All() []string {
	return slices.Clone(s.names)
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	return &Set{names: slices.Clone(s.names)}
}
