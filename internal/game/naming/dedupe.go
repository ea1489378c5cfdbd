// Package naming resolves name collisions for fights and roster entries.
package naming

import (
	"regexp"
	"strconv"
)

// counterSuffix matches a trailing "(<n>)" marker, e.g. "Goblin(3)".
var counterSuffix = regexp.MustCompile(`\((\d+)\)$`)

// Resolve returns a name that does not appear in existing.
//
// If candidate is free it is returned unchanged. Otherwise a trailing "(n)"
// marker is incremented, or "(2)" is appended when there is none, until the
// result is free.
//
// Postcondition: the returned name is not an element of existing.
// Postcondition: Resolve(x, nil) == x.
func Resolve(candidate string, existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		taken[name] = struct{}{}
	}

	name := candidate
	// Each step yields a distinct name, so at most len(taken) of them can collide.
	for i := 0; i <= len(taken); i++ {
		if _, ok := taken[name]; !ok {
			return name
		}
		name = Next(name)
	}
	return name
}

// Next returns the successor of name in the "(n)" counter sequence:
// "npc" -> "npc(2)", "npc(2)" -> "npc(3)".
func Next(name string) string {
	loc := counterSuffix.FindStringSubmatchIndex(name)
	if loc == nil {
		return name + "(2)"
	}
	n, err := strconv.Atoi(name[loc[2]:loc[3]])
	if err != nil {
		// digits too long for an int; start a fresh counter
		return name + "(2)"
	}
	return name[:loc[0]] + "(" + strconv.Itoa(n+1) + ")"
}
