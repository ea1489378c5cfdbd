package condition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Names of conditions the tracker applies or inspects itself.
const (
	// Unconscious is applied when a character drops to 0 HP or below.
	Unconscious = "Unconscious"
	// Dead sorts a character after all living ones in initiative order.
	Dead = "Dead"
)

// ConditionDef is the static description of a named condition, loaded from YAML.
type ConditionDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Registry holds the condition catalog keyed by ID.
type Registry struct {
	defs map[string]*ConditionDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*ConditionDef)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *ConditionDef) {
	r.defs[def.ID] = def
}

// Get returns the ConditionDef for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*ConditionDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Lookup finds a definition by display name, ignoring case.
func (r *Registry) Lookup(name string) (*ConditionDef, bool) {
	for _, d := range r.defs {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return nil, false
}

// All returns a snapshot of all definitions sorted by Name.
func (r *Registry) All() []*ConditionDef {
	out := make([]*ConditionDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *ConditionDef) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Names returns the display names of all definitions, sorted.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.Name
	}
	return names
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int { return len(r.defs) }

// standard is the built-in catalog: the SRD conditions plus Dead.
var standard = []ConditionDef{
	{ID: "blinded", Name: "Blinded", Description: "Can't see; fails checks that require sight."},
	{ID: "charmed", Name: "Charmed", Description: "Can't attack the charmer."},
	{ID: "dead", Name: Dead, Description: "Out of the fight for good."},
	{ID: "deafened", Name: "Deafened", Description: "Can't hear; fails checks that require hearing."},
	{ID: "exhaustion", Name: "Exhaustion", Description: "Cumulative penalties from fatigue."},
	{ID: "frightened", Name: "Frightened", Description: "Disadvantage while the source of fear is in sight."},
	{ID: "grappled", Name: "Grappled", Description: "Speed becomes 0."},
	{ID: "incapacitated", Name: "Incapacitated", Description: "Can't take actions or reactions."},
	{ID: "invisible", Name: "Invisible", Description: "Impossible to see without special senses."},
	{ID: "paralyzed", Name: "Paralyzed", Description: "Incapacitated; can't move or speak."},
	{ID: "petrified", Name: "Petrified", Description: "Transformed into solid inanimate substance."},
	{ID: "poisoned", Name: "Poisoned", Description: "Disadvantage on attack rolls and ability checks."},
	{ID: "prone", Name: "Prone", Description: "Can only crawl; disadvantage on attack rolls."},
	{ID: "restrained", Name: "Restrained", Description: "Speed becomes 0; disadvantage on attacks."},
	{ID: "stunned", Name: "Stunned", Description: "Incapacitated; can't move."},
	{ID: "unconscious", Name: Unconscious, Description: "Incapacitated; drops whatever it's holding and falls prone."},
}

// DefaultRegistry returns a Registry populated with the built-in catalog.
//
// Postcondition: Lookup(Unconscious) and Lookup(Dead) both succeed.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for i := range standard {
		def := standard[i]
		reg.Register(&def)
	}
	return reg
}

// LoadDirectory reads every *.yaml file in dir, parses each as a ConditionDef,
// and returns a populated Registry.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def ConditionDef
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if def.ID == "" || def.Name == "" {
			return nil, fmt.Errorf("parsing %q: id and name are required", path)
		}
		reg.Register(&def)
	}
	return reg, nil
}
