// Package command provides the command registry, parser, and built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryFights     = "fights"
	CategoryRoster     = "roster"
	CategoryHealth     = "health"
	CategoryConditions = "conditions"
	CategoryInitiative = "initiative"
	CategorySystem     = "system"
)

// CategoryOrder is the order categories are listed in help output.
var CategoryOrder = []string{
	CategoryFights, CategoryRoster, CategoryHealth,
	CategoryConditions, CategoryInitiative, CategorySystem,
}

// Handler identifiers mapping commands to console handlers.
const (
	HandlerHelp       = "help"
	HandlerQuit       = "quit"
	HandlerFights     = "fights"
	HandlerNew        = "new"
	HandlerOpen       = "open"
	HandlerDelete     = "delete"
	HandlerDuplicate  = "duplicate"
	HandlerRename     = "rename"
	HandlerNotes      = "notes"
	HandlerShow       = "show"
	HandlerAdd        = "add"
	HandlerEdit       = "edit"
	HandlerRemove     = "remove"
	HandlerInfo       = "info"
	HandlerDamage     = "damage"
	HandlerDown       = "down"
	HandlerHeal       = "heal"
	HandlerFullHeal   = "fullheal"
	HandlerMaxHP      = "maxhp"
	HandlerReset      = "reset"
	HandlerCond       = "cond"
	HandlerUncond     = "uncond"
	HandlerClearCond  = "clearcond"
	HandlerConditions = "conditions"
	HandlerSort       = "sort"
	HandlerRoll       = "roll"
	HandlerStart      = "start"
	HandlerRestart    = "restart"
	HandlerHistory    = "history"
)

// Command defines a console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text.
	Help string
	// Usage shows the argument form, e.g. "damage <name> <amount|dice>".
	Usage string
	// Category groups the command for help output.
	Category string
	// Handler maps to the console handler.
	Handler string
}

// BuiltinCommands returns all built-in tracker commands.
func BuiltinCommands() []Command {
	return []Command{
		// Fight commands
		{Name: "fights", Aliases: []string{"ls"}, Help: "List your fights", Usage: "fights", Category: CategoryFights, Handler: HandlerFights},
		{Name: "new", Aliases: []string{"create"}, Help: "Create a fight and open it", Usage: "new <fight>", Category: CategoryFights, Handler: HandlerNew},
		{Name: "open", Aliases: []string{"use"}, Help: "Open an existing fight", Usage: "open <fight>", Category: CategoryFights, Handler: HandlerOpen},
		{Name: "delete", Aliases: []string{"rm"}, Help: "Delete a fight", Usage: "delete <fight>", Category: CategoryFights, Handler: HandlerDelete},
		{Name: "duplicate", Aliases: []string{"dup"}, Help: "Copy a fight with every character at full health", Usage: "duplicate [fight]", Category: CategoryFights, Handler: HandlerDuplicate},
		{Name: "rename", Aliases: nil, Help: "Rename the open fight", Usage: "rename <new name>", Category: CategoryFights, Handler: HandlerRename},
		{Name: "notes", Aliases: nil, Help: "Show or replace the open fight's notes", Usage: "notes [text]", Category: CategoryFights, Handler: HandlerNotes},
		{Name: "show", Aliases: []string{"look", "l"}, Help: "Show the open fight", Usage: "show", Category: CategoryFights, Handler: HandlerShow},
		{Name: "history", Aliases: []string{"log"}, Help: "Show the open fight's recent events", Usage: "history", Category: CategoryFights, Handler: HandlerHistory},

		// Roster commands
		{Name: "add", Aliases: []string{"a"}, Help: "Add a character", Usage: "add <npc|player> <name> <hp> [key=value ...]", Category: CategoryRoster, Handler: HandlerAdd},
		{Name: "edit", Aliases: nil, Help: "Update a character's fields", Usage: "edit <name> key=value ...", Category: CategoryRoster, Handler: HandlerEdit},
		{Name: "remove", Aliases: []string{"del"}, Help: "Remove a character", Usage: "remove <name>", Category: CategoryRoster, Handler: HandlerRemove},
		{Name: "info", Aliases: []string{"i"}, Help: "Show a character's details", Usage: "info <name>", Category: CategoryRoster, Handler: HandlerInfo},

		// Health commands
		{Name: "damage", Aliases: []string{"dmg", "hit"}, Help: "Deal damage", Usage: "damage <name> <amount|dice>", Category: CategoryHealth, Handler: HandlerDamage},
		{Name: "down", Aliases: []string{"ko"}, Help: "Drop a character to 0 HP", Usage: "down <name>", Category: CategoryHealth, Handler: HandlerDown},
		{Name: "heal", Aliases: []string{"h"}, Help: "Restore hit points", Usage: "heal <name> <amount|dice>", Category: CategoryHealth, Handler: HandlerHeal},
		{Name: "fullheal", Aliases: []string{"fh"}, Help: "Restore a character to full health", Usage: "fullheal <name>", Category: CategoryHealth, Handler: HandlerFullHeal},
		{Name: "maxhp", Aliases: nil, Help: "Change a character's maximum HP", Usage: "maxhp <name> <hp>", Category: CategoryHealth, Handler: HandlerMaxHP},
		{Name: "reset", Aliases: nil, Help: "Restore full health and clear conditions", Usage: "reset <name>", Category: CategoryHealth, Handler: HandlerReset},

		// Condition commands
		{Name: "cond", Aliases: []string{"c"}, Help: "Apply a condition", Usage: "cond <name> <condition>", Category: CategoryConditions, Handler: HandlerCond},
		{Name: "uncond", Aliases: []string{"uc"}, Help: "Clear a condition", Usage: "uncond <name> <condition>", Category: CategoryConditions, Handler: HandlerUncond},
		{Name: "clearcond", Aliases: []string{"cc"}, Help: "Clear every condition", Usage: "clearcond <name>", Category: CategoryConditions, Handler: HandlerClearCond},
		{Name: "conditions", Aliases: []string{"conds"}, Help: "List known conditions", Usage: "conditions [condition]", Category: CategoryConditions, Handler: HandlerConditions},

		// Initiative commands
		{Name: "roll", Aliases: []string{"init"}, Help: "Roll initiative for everyone without a roll", Usage: "roll [name roll]", Category: CategoryInitiative, Handler: HandlerRoll},
		{Name: "sort", Aliases: nil, Help: "Show or change the display order", Usage: "sort [order]", Category: CategoryInitiative, Handler: HandlerSort},
		{Name: "start", Aliases: nil, Help: "Start the fight clock", Usage: "start", Category: CategoryInitiative, Handler: HandlerStart},
		{Name: "restart", Aliases: nil, Help: "Reset every character and clear initiative", Usage: "restart", Category: CategoryInitiative, Handler: HandlerRestart},

		// System commands
		{Name: "quit", Aliases: []string{"exit"}, Help: "Disconnect", Usage: "quit", Category: CategorySystem, Handler: HandlerQuit},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Usage: "help [command]", Category: CategorySystem, Handler: HandlerHelp},
	}
}
