package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battletracker/internal/frontend/telnet"
	"github.com/cory-johannsen/battletracker/internal/game/character"
	"github.com/cory-johannsen/battletracker/internal/game/command"
	"github.com/cory-johannsen/battletracker/internal/game/dice"
	"github.com/cory-johannsen/battletracker/internal/game/fight"
	"github.com/cory-johannsen/battletracker/internal/game/session"
	"github.com/cory-johannsen/battletracker/internal/observability"
)

// consoleContext carries all inputs a console handler needs.
type consoleContext struct {
	h      *TrackerHandler
	sess   *session.Session
	conn   *telnet.Conn
	cmd    *command.Command
	parsed command.ParseResult
	logger *zap.Logger
}

// consoleHandlerFunc runs one command. quit is true when the session should
// end cleanly; err is non-nil only when the connection failed.
type consoleHandlerFunc func(cctx *consoleContext) (quit bool, err error)

// ConsoleHandlers returns the map from Handler constant to console function.
// Exported so TestAllCommandHandlersAreWired can verify completeness.
func ConsoleHandlers() map[string]consoleHandlerFunc {
	return consoleHandlerMap
}

// consoleHandlerMap is the single source of truth for command dispatch.
// To add a new command: add a Handler constant to commands.go AND add an entry here.
var consoleHandlerMap = map[string]consoleHandlerFunc{
	command.HandlerHelp:       consoleHelp,
	command.HandlerQuit:       consoleQuit,
	command.HandlerFights:     consoleFights,
	command.HandlerNew:        consoleNew,
	command.HandlerOpen:       consoleOpen,
	command.HandlerDelete:     consoleDelete,
	command.HandlerDuplicate:  consoleDuplicate,
	command.HandlerRename:     consoleRename,
	command.HandlerNotes:      consoleNotes,
	command.HandlerShow:       consoleShow,
	command.HandlerHistory:    consoleHistory,
	command.HandlerAdd:        consoleAdd,
	command.HandlerEdit:       consoleEdit,
	command.HandlerRemove:     consoleRemove,
	command.HandlerInfo:       consoleInfo,
	command.HandlerDamage:     consoleDamage,
	command.HandlerDown:       consoleDown,
	command.HandlerHeal:       consoleHeal,
	command.HandlerFullHeal:   consoleFullHeal,
	command.HandlerMaxHP:      consoleMaxHP,
	command.HandlerReset:      consoleReset,
	command.HandlerCond:       consoleCond,
	command.HandlerUncond:     consoleUncond,
	command.HandlerClearCond:  consoleClearCond,
	command.HandlerConditions: consoleConditions,
	command.HandlerSort:       consoleSort,
	command.HandlerRoll:       consoleRoll,
	command.HandlerStart:      consoleStart,
	command.HandlerRestart:    consoleRestart,
}

// fail writes a red error message.
// Precondition: msg must be non-empty.
func (c *consoleContext) fail(msg string) (bool, error) {
	_ = c.conn.WriteLine(telnet.Colorize(telnet.Red, msg))
	return false, nil
}

// failErr writes err as a user-facing error.
func (c *consoleContext) failErr(err error) (bool, error) {
	return c.fail(capitalize(err.Error()))
}

// usage reports a malformed invocation.
func (c *consoleContext) usage() (bool, error) {
	return c.fail("Usage: " + c.cmd.Usage)
}

func (c *consoleContext) reply(lines ...string) (bool, error) {
	_ = c.conn.WriteLines(lines...)
	return false, nil
}

// openFight returns the session's current fight, reporting when none is open.
func (c *consoleContext) openFight() (*fight.Fight, bool) {
	f, ok := c.sess.Current()
	if !ok {
		_, _ = c.fail("No fight is open. Use 'new <fight>' or 'open <fight>'.")
	}
	return f, ok
}

// character resolves the first argument to a roster member of the open fight.
// Precondition: the command takes at least minArgs arguments, the first being a character name.
func (c *consoleContext) character(minArgs int) (*fight.Fight, *character.Character, bool) {
	if len(c.parsed.Args) < minArgs {
		_, _ = c.usage()
		return nil, nil, false
	}
	f, ok := c.openFight()
	if !ok {
		return nil, nil, false
	}
	name := c.parsed.Args[0]
	ch, ok := findCharacter(f, name)
	if !ok {
		_, _ = c.fail(fmt.Sprintf("No character named %q in %s.", name, f.Name()))
		return nil, nil, false
	}
	return f, ch, true
}

// fightName joins the arguments, so quoted and unquoted multi-word names match.
func (c *consoleContext) fightName() string {
	return strings.Join(c.parsed.Args, " ")
}

// findCharacter matches name exactly, then ignoring case.
func findCharacter(f *fight.Fight, name string) (*character.Character, bool) {
	if ch, ok := f.FetchCharacter(name); ok {
		return ch, true
	}
	for _, ch := range f.Characters() {
		if strings.EqualFold(ch.Name(), name) {
			return ch, true
		}
	}
	return nil, false
}

// status is the one-line summary written after a health change.
func status(ch *character.Character) string {
	return fmt.Sprintf("%s %s %s",
		telnet.Colorize(telnet.BrightWhite, ch.Name()+":"),
		ch.LastEvent(),
		telnet.Colorf(telnet.HealthColor(ch.HP(), ch.MaxHP()), "(%d/%d)", ch.HP(), ch.MaxHP()),
	)
}

func characterFields(ch *character.Character) []zap.Field {
	return observability.CharacterFields(ch.ID(), ch.Name(), ch.HP(), ch.MaxHP())
}

// maxDice bounds how many dice one console roll may throw.
const maxDice = 100

// parseAmount reads a whole number or rolls a dice expression such as 2d6+3.
// A roll totalling below zero counts as zero.
//
// Postcondition: Returns the amount and, for a roll, its breakdown.
func parseAmount(roller *dice.Roller, s string) (int, string, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, "", nil
	}
	expr, err := dice.Parse(strings.ToLower(s))
	if err != nil {
		return 0, "", fmt.Errorf("%q is neither a number nor a dice expression", s)
	}
	if expr.Count > maxDice {
		return 0, "", fmt.Errorf("%q throws more than %d dice", s, maxDice)
	}
	result := roller.Roll(expr)
	return max(result.Total(), 0), result.String(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// System

func consoleHelp(cctx *consoleContext) (bool, error) {
	if len(cctx.parsed.Args) == 0 {
		return cctx.reply(RenderHelp(cctx.h.registry)...)
	}
	cmd, ok := cctx.h.registry.Resolve(strings.ToLower(cctx.parsed.Args[0]))
	if !ok {
		return cctx.fail(fmt.Sprintf("No help for %q.", cctx.parsed.Args[0]))
	}
	return cctx.reply(RenderCommandHelp(cmd)...)
}

func consoleQuit(cctx *consoleContext) (bool, error) {
	_ = cctx.conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
	cctx.logger.Info("client quit")
	return true, nil
}

// Fights

func consoleFights(cctx *consoleContext) (bool, error) {
	current, _ := cctx.sess.Current()
	return cctx.reply(RenderFights(cctx.sess.Store, current)...)
}

func consoleNew(cctx *consoleContext) (bool, error) {
	if len(cctx.parsed.Args) == 0 {
		return cctx.usage()
	}
	f, err := cctx.sess.Store.Create(cctx.fightName())
	if err != nil {
		return cctx.failErr(err)
	}
	cctx.sess.SetCurrent(f)
	cctx.logger.Info("fight created", observability.FightFields(f.Name(), f.Len())...)
	return cctx.reply(telnet.Colorf(telnet.BrightGreen, "Created %s.", f.Name()))
}

func consoleOpen(cctx *consoleContext) (bool, error) {
	if len(cctx.parsed.Args) == 0 {
		return cctx.usage()
	}
	f, err := cctx.sess.Open(cctx.fightName())
	if err != nil {
		return cctx.failErr(err)
	}
	return cctx.reply(RenderFight(f, cctx.h.now())...)
}

func consoleDelete(cctx *consoleContext) (bool, error) {
	if len(cctx.parsed.Args) == 0 {
		return cctx.usage()
	}
	name := cctx.fightName()
	if err := cctx.sess.Store.Delete(name); err != nil {
		return cctx.failErr(err)
	}
	cctx.logger.Info("fight deleted", zap.String("fight", name))
	return cctx.reply(telnet.Colorf(telnet.Yellow, "Deleted %s.", name))
}

func consoleDuplicate(cctx *consoleContext) (bool, error) {
	name := cctx.fightName()
	if name == "" {
		f, ok := cctx.openFight()
		if !ok {
			return false, nil
		}
		name = f.Name()
	}
	dup, err := cctx.sess.Store.Duplicate(name)
	if err != nil {
		return cctx.failErr(err)
	}
	cctx.sess.SetCurrent(dup)
	cctx.logger.Info("fight duplicated",
		append(observability.FightFields(dup.Name(), dup.Len()), zap.String("source", name))...)
	return cctx.reply(telnet.Colorf(telnet.BrightGreen, "Duplicated %s as %s.", name, dup.Name()))
}

func consoleRename(cctx *consoleContext) (bool, error) {
	if len(cctx.parsed.Args) == 0 {
		return cctx.usage()
	}
	f, ok := cctx.openFight()
	if !ok {
		return false, nil
	}
	if err := cctx.sess.Store.Rename(f.Name(), cctx.fightName()); err != nil {
		return cctx.failErr(err)
	}
	return cctx.reply(telnet.Colorf(telnet.BrightGreen, "Renamed to %s.", f.Name()))
}

func consoleNotes(cctx *consoleContext) (bool, error) {
	f, ok := cctx.openFight()
	if !ok {
		return false, nil
	}
	args := cctx.parsed.Args
	if len(args) == 0 {
		if f.Notes() == "" {
			return cctx.reply(telnet.Colorize(telnet.Dim, "No notes."))
		}
		return cctx.reply(f.Notes())
	}
	// notes "" clears
	f.SetNotes(strings.Join(args, " "))
	return cctx.reply(telnet.Colorize(telnet.BrightGreen, "Notes updated."))
}

func consoleShow(cctx *consoleContext) (bool, error) {
	f, ok := cctx.openFight()
	if !ok {
		return false, nil
	}
	return cctx.reply(RenderFight(f, cctx.h.now())...)
}

func consoleHistory(cctx *consoleContext) (bool, error) {
	f, ok := cctx.openFight()
	if !ok {
		return false, nil
	}
	return cctx.reply(RenderEvents(f.Events())...)
}

// Roster

func consoleAdd(cctx *consoleContext) (bool, error) {
	args := cctx.parsed.Args
	if len(args) < 3 {
		return cctx.usage()
	}
	f, ok := cctx.openFight()
	if !ok {
		return false, nil
	}
	params, err := command.ParseParams(args[3:])
	if err != nil {
		return cctx.failErr(err)
	}
	params[character.KeyType] = args[0]
	params[character.KeyName] = args[1]
	params[character.KeyHP] = args[2]

	ch, err := f.NewCharacter(params)
	if err != nil {
		return cctx.failErr(err)
	}
	cctx.logger.Debug("character added",
		append(observability.FightFields(f.Name(), f.Len()), characterFields(ch)...)...)
	return cctx.reply(telnet.Colorf(telnet.BrightGreen, "Added %s (%s, %d HP).", ch.Name(), ch.Type(), ch.MaxHP()))
}

func consoleEdit(cctx *consoleContext) (bool, error) {
	_, ch, ok := cctx.character(2)
	if !ok {
		return false, nil
	}
	params, err := command.ParseParams(cctx.parsed.Args[1:])
	if err != nil {
		return cctx.failErr(err)
	}
	if err := ch.Update(params); err != nil {
		return cctx.failErr(err)
	}
	return cctx.reply(RenderCharacter(ch)...)
}

func consoleRemove(cctx *consoleContext) (bool, error) {
	f, ch, ok := cctx.character(1)
	if !ok {
		return false, nil
	}
	f.RemoveCharacter(ch)
	cctx.logger.Debug("character removed", characterFields(ch)...)
	return cctx.reply(telnet.Colorf(telnet.Yellow, "Removed %s.", ch.Name()))
}

func consoleInfo(cctx *consoleContext) (bool, error) {
	_, ch, ok := cctx.character(1)
	if !ok {
		return false, nil
	}
	return cctx.reply(RenderCharacter(ch)...)
}

// Health

func consoleDamage(cctx *consoleContext) (bool, error) {
	return applyAmount(cctx, (*character.Character).TakeDamage)
}

func consoleHeal(cctx *consoleContext) (bool, error) {
	return applyAmount(cctx, (*character.Character).Heal)
}

// applyAmount parses "<name> <amount|dice>" and applies the amount with apply.
func applyAmount(cctx *consoleContext, apply func(*character.Character, int) error) (bool, error) {
	if len(cctx.parsed.Args) != 2 {
		return cctx.usage()
	}
	_, ch, ok := cctx.character(2)
	if !ok {
		return false, nil
	}
	amount, rolled, err := parseAmount(cctx.h.roller, cctx.parsed.Args[1])
	if err != nil {
		return cctx.failErr(err)
	}
	if err := apply(ch, amount); err != nil {
		return cctx.failErr(err)
	}
	cctx.logger.Debug(cctx.cmd.Name, append(characterFields(ch), zap.Int("amount", amount))...)
	if rolled != "" {
		return cctx.reply(telnet.Colorize(telnet.Dim, "Rolled "+rolled), status(ch))
	}
	return cctx.reply(status(ch))
}

func consoleDown(cctx *consoleContext) (bool, error) {
	_, ch, ok := cctx.character(1)
	if !ok {
		return false, nil
	}
	ch.FullDamage()
	return cctx.reply(status(ch))
}

func consoleFullHeal(cctx *consoleContext) (bool, error) {
	_, ch, ok := cctx.character(1)
	if !ok {
		return false, nil
	}
	ch.FullHeal()
	return cctx.reply(status(ch))
}

func consoleMaxHP(cctx *consoleContext) (bool, error) {
	_, ch, ok := cctx.character(2)
	if !ok {
		return false, nil
	}
	maxHP, err := strconv.Atoi(cctx.parsed.Args[1])
	if err != nil {
		return cctx.usage()
	}
	if err := ch.SetMaxHP(maxHP); err != nil {
		return cctx.failErr(err)
	}
	return cctx.reply(fmt.Sprintf("%s max HP is now %d %s",
		ch.Name(), ch.MaxHP(), telnet.HPBar(ch.HP(), ch.MaxHP(), hpBarWidth)))
}

func consoleReset(cctx *consoleContext) (bool, error) {
	_, ch, ok := cctx.character(1)
	if !ok {
		return false, nil
	}
	ch.Reset()
	return cctx.reply(status(ch))
}

// Conditions

func consoleCond(cctx *consoleContext) (bool, error) {
	_, ch, ok := cctx.character(2)
	if !ok {
		return false, nil
	}
	name := strings.Join(cctx.parsed.Args[1:], " ")
	def, ok := cctx.h.conditions.Lookup(name)
	if !ok {
		return cctx.fail(fmt.Sprintf("Unknown condition %q. Type 'conditions' for the list.", name))
	}
	if ch.HasCondition(def.Name) {
		return cctx.fail(fmt.Sprintf("%s is already %s.", ch.Name(), def.Name))
	}
	ch.AddCondition(def.Name)
	return cctx.reply(status(ch))
}

func consoleUncond(cctx *consoleContext) (bool, error) {
	_, ch, ok := cctx.character(2)
	if !ok {
		return false, nil
	}
	name := strings.Join(cctx.parsed.Args[1:], " ")
	if def, ok := cctx.h.conditions.Lookup(name); ok {
		name = def.Name
	}
	if !ch.HasCondition(name) {
		return cctx.fail(fmt.Sprintf("%s is not %s.", ch.Name(), name))
	}
	ch.RemoveCondition(name)
	return cctx.reply(status(ch))
}

func consoleClearCond(cctx *consoleContext) (bool, error) {
	_, ch, ok := cctx.character(1)
	if !ok {
		return false, nil
	}
	ch.RemoveAllConditions()
	return cctx.reply(status(ch))
}

func consoleConditions(cctx *consoleContext) (bool, error) {
	if len(cctx.parsed.Args) == 0 {
		return cctx.reply(RenderConditionList(cctx.h.conditions)...)
	}
	name := strings.Join(cctx.parsed.Args, " ")
	def, ok := cctx.h.conditions.Lookup(name)
	if !ok {
		return cctx.fail(fmt.Sprintf("Unknown condition %q.", name))
	}
	return cctx.reply(RenderCondition(def)...)
}

// Initiative

func consoleSort(cctx *consoleContext) (bool, error) {
	f, ok := cctx.openFight()
	if !ok {
		return false, nil
	}
	if len(cctx.parsed.Args) == 0 {
		return cctx.reply(RenderSortOptions(f)...)
	}
	order, err := fight.ParseSortOrder(strings.Join(cctx.parsed.Args, " "))
	if err == nil {
		err = f.SetSortOrder(order)
	}
	if errors.Is(err, fight.ErrInvalidSortOrder) {
		return cctx.reply(append([]string{telnet.Colorize(telnet.Red, capitalize(err.Error()))}, RenderSortOptions(f)...)...)
	}
	if err != nil {
		return cctx.failErr(err)
	}
	return cctx.reply(RenderFight(f, cctx.h.now())...)
}

func consoleRoll(cctx *consoleContext) (bool, error) {
	switch len(cctx.parsed.Args) {
	case 0:
		f, ok := cctx.openFight()
		if !ok {
			return false, nil
		}
		if f.Len() == 0 {
			return cctx.fail("Add characters before rolling initiative.")
		}
		f.RollInitiative(cctx.h.roller)
		return cctx.reply(RenderFight(f, cctx.h.now())...)
	case 2:
		f, ch, ok := cctx.character(2)
		if !ok {
			return false, nil
		}
		roll, err := strconv.Atoi(cctx.parsed.Args[1])
		if err != nil {
			return cctx.usage()
		}
		ch.SetInitiativeRoll(roll)
		ch.SetLastEvent(fmt.Sprintf("Rolled %d for initiative", roll))
		f.SetInitiativeOrder(cctx.h.roller.Source())
		return cctx.reply(status(ch))
	default:
		return cctx.usage()
	}
}

func consoleStart(cctx *consoleContext) (bool, error) {
	f, ok := cctx.openFight()
	if !ok {
		return false, nil
	}
	if f.Status() == fight.StatusStarted {
		return cctx.fail(fmt.Sprintf("%s is already running.", f.Name()))
	}
	f.Start(cctx.h.now())
	cctx.logger.Info("fight started", observability.FightFields(f.Name(), f.Len())...)
	return cctx.reply(telnet.Colorf(telnet.BrightRed, "%s has begun!", f.Name()))
}

func consoleRestart(cctx *consoleContext) (bool, error) {
	f, ok := cctx.openFight()
	if !ok {
		return false, nil
	}
	f.Restart()
	return cctx.reply(RenderFight(f, cctx.h.now())...)
}
