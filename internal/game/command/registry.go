package command

import (
	"fmt"
	"slices"
	"strings"
)

// Registry maps command names and aliases to Command definitions. Input that
// matches neither resolves when it is a prefix of exactly one command name.
type Registry struct {
	lookup map[string]*Command // name or alias → command
	names  []string            // canonical names, sorted
}

// NewRegistry creates a Registry populated with the given commands.
//
// Precondition: No two commands may share a canonical name or alias.
// Postcondition: Returns a Registry or an error on name/alias collisions.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{lookup: make(map[string]*Command, len(cmds)*2)}
	aliasOf := make(map[string]string)

	for i := range cmds {
		cmd := &cmds[i]
		if prev, exists := r.lookup[cmd.Name]; exists {
			if prev.Name == cmd.Name {
				return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
			}
			return nil, fmt.Errorf("command name %q conflicts with an alias of %q", cmd.Name, prev.Name)
		}
		r.lookup[cmd.Name] = cmd
		r.names = append(r.names, cmd.Name)

		for _, alias := range cmd.Aliases {
			if owner, exists := aliasOf[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, owner, cmd.Name)
			}
			if _, exists := r.lookup[alias]; exists {
				return nil, fmt.Errorf("alias %q of %q conflicts with a command name", alias, cmd.Name)
			}
			aliasOf[alias] = cmd.Name
			r.lookup[alias] = cmd
		}
	}
	slices.Sort(r.names)
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
//
// Postcondition: Returns a Registry with all built-in commands registered.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name, alias, or unambiguous name prefix.
//
// Postcondition: Returns (command, true) if found, or (nil, false).
func (r *Registry) Resolve(input string) (*Command, bool) {
	if cmd, ok := r.lookup[input]; ok {
		return cmd, true
	}
	matches := r.Suggest(input)
	if len(matches) != 1 {
		return nil, false
	}
	return r.lookup[matches[0]], true
}

// Suggest returns the canonical names starting with input, sorted.
//
// Postcondition: Returns nil for empty input.
func (r *Registry) Suggest(input string) []string {
	if input == "" {
		return nil
	}
	start, _ := slices.BinarySearch(r.names, input)
	var out []string
	for _, name := range r.names[start:] {
		if !strings.HasPrefix(name, input) {
			break
		}
		out = append(out, name)
	}
	return out
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	result := make([]*Command, 0, len(r.names))
	for _, name := range r.names {
		result = append(result, r.lookup[name])
	}
	return result
}

// CommandsByCategory returns commands grouped by category, each group sorted by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.Commands() {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}
