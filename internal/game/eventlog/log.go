// Package eventlog provides a fixed-capacity, insertion-ordered buffer of
// human-readable event descriptions.
package eventlog

import "iter"

// DefaultCapacity keeps exactly one event: the most recent.
const DefaultCapacity = 1

// Log is a bounded queue of events. Once more than Cap entries have been
// appended the oldest entry is evicted.
// It is not safe for concurrent use; the caller must serialise access.
type Log struct {
	capacity int
	// entries is a ring; start indexes the oldest entry.
	entries []string
	start   int
}

// New creates an empty Log holding at most capacity entries.
//
// Precondition: capacity >= 1; values below 1 are raised to 1.
// Postcondition: Len() == 0 and Last() == "".
func New(capacity int) *Log {
	if capacity < 1 {
		capacity = 1
	}
	return &Log{capacity: capacity, entries: make([]string, 0, capacity)}
}

// Append records event, evicting the oldest entry when the log is full.
//
// Postcondition: Last() == event; Len() <= Cap().
func (l *Log) Append(event string) {
	if len(l.entries) < l.capacity {
		l.entries = append(l.entries, event)
		return
	}
	l.entries[l.start] = event
	l.start = (l.start + 1) % l.capacity
}

// Last returns the most recently appended event, or "" if the log is empty.
func (l *Log) Last() string {
	if len(l.entries) == 0 {
		return ""
	}
	if len(l.entries) < l.capacity {
		return l.entries[len(l.entries)-1]
	}
	return l.entries[(l.start+l.capacity-1)%l.capacity]
}

// Len returns the number of retained events.
func (l *Log) Len() int { return len(l.entries) }

// Cap returns the maximum number of retained events.
func (l *Log) Cap() int { return l.capacity }

// All yields the retained events oldest-first.
func (l *Log) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		n := len(l.entries)
		for i := 0; i < n; i++ {
			if !yield(l.entries[(l.start+i)%n]) {
				return
			}
		}
	}
}

// Events returns a snapshot of the retained events, oldest-first.
func (l *Log) Events() []string {
	out := make([]string, 0, len(l.entries))
	for e := range l.All() {
		out = append(out, e)
	}
	return out
}

// Reset discards all events and records event as the only entry.
func (l *Log) Reset(event string) {
	l.entries = l.entries[:0]
	l.start = 0
	l.Append(event)
}
