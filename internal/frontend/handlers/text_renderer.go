package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cory-johannsen/battletracker/internal/frontend/telnet"
	"github.com/cory-johannsen/battletracker/internal/game/character"
	"github.com/cory-johannsen/battletracker/internal/game/command"
	"github.com/cory-johannsen/battletracker/internal/game/condition"
	"github.com/cory-johannsen/battletracker/internal/game/fight"
)

const hpBarWidth = 10

// RenderFight formats the fight's roster in its current sort order, followed
// by the NPC summary and the latest event.
func RenderFight(f *fight.Fight, now time.Time) []string {
	lines := []string{
		telnet.Colorize(telnet.BrightYellow, f.Name()) + "  " +
			statusLabel(f) + "  " +
			telnet.Colorf(telnet.Dim, "sorted by %s", f.SortOrder()),
	}
	if f.Notes() != "" {
		lines = append(lines, telnet.Colorize(telnet.White, f.Notes()))
	}

	if f.Len() == 0 {
		lines = append(lines, telnet.Colorize(telnet.Dim, "  No characters. Add one with 'add <npc|player> <name> <hp>'."))
	} else {
		nameWidth := 4
		for _, c := range f.Characters() {
			nameWidth = max(nameWidth, len([]rune(c.Name())))
		}
		lines = append(lines, telnet.Colorize(telnet.Bold,
			fmt.Sprintf("  %-4s %-*s %-12s %-9s %s", "Init", nameWidth, "Name", "HP", "", "Conditions")))
		for c := range f.EachCharacter() {
			lines = append(lines, renderRow(c, nameWidth))
		}
	}

	lines = append(lines, renderSummary(f))
	if f.Status() == fight.StatusStarted {
		lines = append(lines, telnet.Colorf(telnet.Cyan, "Elapsed: %s", f.Elapsed(now).Truncate(time.Second)))
	}
	lines = append(lines, telnet.Colorf(telnet.Dim, "Last: %s", f.LastEvent()))
	return lines
}

func statusLabel(f *fight.Fight) string {
	if f.Status() == fight.StatusStarted {
		return telnet.Colorf(telnet.BrightRed, "[%s]", f.Status())
	}
	return telnet.Colorf(telnet.BrightGreen, "[%s]", f.Status())
}

func renderRow(c *character.Character, nameWidth int) string {
	init := "-"
	if roll, ok := c.Initiative(); ok {
		init = strconv.Itoa(roll)
	}
	name := c.Name()
	if c.IsPlayer() {
		name = telnet.Colorize(telnet.BrightCyan, name)
	} else {
		name = telnet.Colorize(telnet.BrightMagenta, name)
	}
	hp := fmt.Sprintf("%d/%d", c.HP(), c.MaxHP())
	return fmt.Sprintf("  %-4s %s %s %s %s",
		init,
		telnet.PadRight(name, nameWidth),
		telnet.HPBar(c.HP(), c.MaxHP(), hpBarWidth),
		telnet.PadRight(telnet.Colorize(telnet.HealthColor(c.HP(), c.MaxHP()), hp), 9),
		renderConditions(c.Conditions()),
	)
}

func renderConditions(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	styled := make([]string, len(conds))
	for i, name := range conds {
		color := telnet.Yellow
		if name == condition.Unconscious || name == condition.Dead {
			color = telnet.Red
		}
		styled[i] = telnet.Colorize(color, name)
	}
	return strings.Join(styled, ", ")
}

func renderSummary(f *fight.Fight) string {
	summary := fmt.Sprintf("NPCs: %d (%.1f%% health)  Players: %d",
		f.NPCCount(), f.NPCHealthPercentage(), f.PlayerCount())
	if c, ok := f.StrongestNPC(); ok {
		summary += fmt.Sprintf("  Strongest: %s (%d)", c.Name(), c.MaxHP())
	}
	return telnet.Colorize(telnet.Green, summary)
}

// RenderCharacter formats every field of c followed by its retained events.
func RenderCharacter(c *character.Character) []string {
	lines := []string{
		telnet.Colorize(telnet.BrightYellow, c.Name()) + "  " +
			telnet.Colorf(telnet.Dim, "(%s)", c.Type()),
		fmt.Sprintf("HP: %s %s", telnet.HPBar(c.HP(), c.MaxHP(), hpBarWidth),
			telnet.Colorf(telnet.HealthColor(c.HP(), c.MaxHP()), "%d/%d", c.HP(), c.MaxHP())),
	}

	var details []string
	if c.AC != nil {
		details = append(details, fmt.Sprintf("AC %d", *c.AC))
	}
	for _, kv := range [][2]string{
		{"Class", c.CharClass}, {"Race", c.Race}, {"Size", c.Size}, {"Alignment", c.Alignment},
	} {
		if kv[1] != "" {
			details = append(details, kv[0]+" "+kv[1])
		}
	}
	if len(details) > 0 {
		lines = append(lines, strings.Join(details, "  "))
	}

	scores := make([]string, len(character.Abilities))
	for i, a := range character.Abilities {
		scores[i] = fmt.Sprintf("%s %d", strings.ToUpper(string(a)[:3]), c.Abilities.Score(a))
	}
	lines = append(lines, strings.Join(scores, "  "))

	init := fmt.Sprintf("Initiative bonus %+d", c.InitiativeBonus)
	if roll, ok := c.Initiative(); ok {
		init += fmt.Sprintf("  roll %d", roll)
	}
	if order, ok := c.InitiativeOrder(); ok {
		init += fmt.Sprintf("  turn %d", order)
	}
	lines = append(lines, init)

	if conds := c.Conditions(); len(conds) > 0 {
		lines = append(lines, "Conditions: "+renderConditions(conds))
	}
	if c.Notes != "" {
		lines = append(lines, "Notes: "+c.Notes)
	}
	return append(lines, RenderEvents(c.Events())...)
}

// RenderEvents formats events oldest first under a heading.
func RenderEvents(events []string) []string {
	lines := []string{telnet.Colorize(telnet.BrightWhite, "Recent events:")}
	for _, e := range events {
		lines = append(lines, telnet.Colorize(telnet.Dim, "  "+e))
	}
	return lines
}

// RenderFights lists the store's fights, marking the open one.
func RenderFights(store *fight.Store, current *fight.Fight) []string {
	if store.Len() == 0 {
		return []string{telnet.Colorize(telnet.Dim, "No fights. Create one with 'new <fight>'.")}
	}
	lines := []string{telnet.Colorize(telnet.BrightWhite, "Fights:")}
	for _, f := range store.Fights() {
		marker := "  "
		if f == current {
			marker = telnet.Colorize(telnet.BrightGreen, "* ")
		}
		lines = append(lines, fmt.Sprintf("%s%s  %s  %d characters",
			marker, telnet.Colorize(telnet.BrightYellow, f.Name()), f.Status(), f.Len()))
	}
	return lines
}

// RenderHelp lists every command grouped by category.
func RenderHelp(registry *command.Registry) []string {
	lines := []string{telnet.Colorize(telnet.BrightWhite, "Available commands:")}
	byCategory := registry.CommandsByCategory()
	for _, cat := range command.CategoryOrder {
		cmds := byCategory[cat]
		if len(cmds) == 0 {
			continue
		}
		lines = append(lines, telnet.Colorf(telnet.BrightYellow, "  %s:", strings.ToUpper(cat[:1])+cat[1:]))
		for _, cmd := range cmds {
			aliases := ""
			if len(cmd.Aliases) > 0 {
				aliases = " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			lines = append(lines, telnet.Colorf(telnet.Green, "    %-12s", cmd.Name)+aliases+": "+cmd.Help)
		}
	}
	return lines
}

// RenderCommandHelp formats the usage of a single command.
func RenderCommandHelp(cmd *command.Command) []string {
	lines := []string{
		telnet.Colorize(telnet.Green, cmd.Usage),
		"  " + cmd.Help,
	}
	if len(cmd.Aliases) > 0 {
		lines = append(lines, telnet.Colorize(telnet.Dim, "  aliases: "+strings.Join(cmd.Aliases, ", ")))
	}
	return lines
}

// RenderConditionList lists the catalog's condition names.
func RenderConditionList(reg *condition.Registry) []string {
	return []string{
		telnet.Colorize(telnet.BrightWhite, "Conditions:"),
		"  " + strings.Join(reg.Names(), ", "),
	}
}

// RenderCondition describes one condition.
func RenderCondition(def *condition.ConditionDef) []string {
	return []string{
		telnet.Colorize(telnet.Yellow, def.Name),
		"  " + def.Description,
	}
}

// RenderSortOptions shows the current order and the ones available.
func RenderSortOptions(f *fight.Fight) []string {
	lines := []string{telnet.Colorf(telnet.BrightWhite, "Sorted by %s. Options:", f.SortOrder())}
	for _, o := range f.SortOptions() {
		lines = append(lines, "  "+string(o))
	}
	return lines
}
