package character

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Param keys recognised by FromParams and Update.
const (
	KeyName            = "name"
	KeyHP              = "hp"
	KeyType            = "type"
	KeyAC              = "ac"
	KeyCharClass       = "char_class"
	KeySize            = "size"
	KeyRace            = "race"
	KeyNotes           = "notes"
	KeyAlignment       = "alignment"
	KeyInitiativeBonus = "initiative_bonus"
)

// ParamKeys lists every recognised key, required ones first.
var ParamKeys = []string{
	KeyName, KeyHP, KeyType, KeyAC, KeyCharClass, KeySize, KeyRace, KeyNotes,
	KeyAlignment, KeyInitiativeBonus,
	string(Strength), string(Dexterity), string(Constitution),
	string(Intelligence), string(Wisdom), string(Charisma),
}

// FromParams builds a character from a flat key/value mapping, as submitted
// by a form or typed at the console.
//
// name, hp and type are required. Optional numeric fields that are blank or
// not numbers are treated as unset.
//
// Precondition: every key is one of ParamKeys.
// Postcondition: Returns a new Character or an error wrapping ErrInvalidArgument.
func FromParams(params map[string]string, opts ...Option) (*Character, error) {
	if err := checkKeys(params); err != nil {
		return nil, err
	}
	for _, k := range []string{KeyName, KeyHP, KeyType} {
		if strings.TrimSpace(params[k]) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidArgument, k)
		}
	}
	hp, err := parseHP(params[KeyHP])
	if err != nil {
		return nil, err
	}
	typ, err := ParseType(params[KeyType])
	if err != nil {
		return nil, err
	}

	p := Params{
		Name:            params[KeyName],
		HP:              hp,
		Type:            typ,
		AC:              optionalInt(params[KeyAC]),
		CharClass:       params[KeyCharClass],
		Size:            params[KeySize],
		Race:            params[KeyRace],
		Notes:           params[KeyNotes],
		Alignment:       params[KeyAlignment],
		InitiativeBonus: intOr(params[KeyInitiativeBonus], 0),
		Abilities:       abilitiesFrom(params, nil),
	}
	return New(p, opts...)
}

// Update re-applies the keys present in params. A present hp sets the
// maximum (see SetMaxHP); a present name renames through the owner.
// The type is fixed at creation and may not change.
//
// Postcondition: On success LastEvent() == EventUpdated. On error c is unchanged.
func (c *Character) Update(params map[string]string) error {
	if err := checkKeys(params); err != nil {
		return err
	}
	if v, ok := params[KeyType]; ok {
		typ, err := ParseType(v)
		if err != nil {
			return err
		}
		if typ != c.typ {
			return fmt.Errorf("%w: type cannot change from %s to %s", ErrInvalidArgument, c.typ, typ)
		}
	}
	name, renamed := params[KeyName]
	if renamed && strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	hp := c.maxHP
	if v, ok := params[KeyHP]; ok {
		var err error
		if hp, err = parseHP(v); err != nil {
			return err
		}
	}

	if renamed {
		// name validated above
		_, _ = c.Rename(name)
	}
	_ = c.SetMaxHP(hp)
	if v, ok := params[KeyAC]; ok {
		c.AC = optionalInt(v)
	}
	setString(params, KeyCharClass, &c.CharClass)
	setString(params, KeySize, &c.Size)
	setString(params, KeyRace, &c.Race)
	setString(params, KeyNotes, &c.Notes)
	setString(params, KeyAlignment, &c.Alignment)
	if v, ok := params[KeyInitiativeBonus]; ok {
		c.InitiativeBonus = intOr(v, 0)
	}
	c.Abilities = abilitiesFrom(params, c.Abilities)

	c.record(EventUpdated)
	return nil
}

func checkKeys(params map[string]string) error {
	for k := range params {
		if !slices.Contains(ParamKeys, k) {
			return fmt.Errorf("%w: unknown parameter %q", ErrInvalidArgument, k)
		}
	}
	return nil
}

func parseHP(s string) (int, error) {
	hp, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: hp must be a whole number, got %q", ErrInvalidArgument, s)
	}
	if hp < 0 {
		return 0, fmt.Errorf("%w: hp must be >= 0, got %d", ErrInvalidArgument, hp)
	}
	return hp, nil
}

// abilitiesFrom overlays the ability keys present in params onto base.
// A blank or non-numeric value unsets the ability.
func abilitiesFrom(params map[string]string, base AbilityScores) AbilityScores {
	out := base.Clone()
	for _, a := range Abilities {
		v, ok := params[string(a)]
		if !ok {
			continue
		}
		if n := optionalInt(v); n != nil {
			out[a] = *n
		} else {
			delete(out, a)
		}
	}
	return out
}

func optionalInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func intOr(s string, def int) int {
	if n := optionalInt(s); n != nil {
		return *n
	}
	return def
}

func setString(params map[string]string, key string, dst *string) {
	if v, ok := params[key]; ok {
		*dst = v
	}
}
