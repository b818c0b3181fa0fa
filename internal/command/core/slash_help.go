// Package core holds the informational commands every install gets: help,
// about and ping.
package core

import (
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"woot/internal/command"
	"woot/internal/discord"
	"woot/internal/version"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List available commands" }
func (c *HelpCommand) Aliases() []string   { return nil }
func (c *HelpCommand) Group() string       { return "core" }
func (c *HelpCommand) Category() string    { return "🕯️ Information" }
func (c *HelpCommand) RequireAdmin() bool  { return false }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *HelpCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	return discord.RespondEmbedEphemeral(slash.Session, slash.Event, &discordgo.MessageEmbed{
		Title:       version.AppName + " Help",
		Description: buildHelpByCategory(),
		Color:       discord.EmbedColor,
	})
}

func buildHelpByCategory() string {
	byCategory := make(map[string][]command.Command)
	for _, cmd := range command.All() {
		byCategory[cmd.Category()] = append(byCategory[cmd.Category()], cmd)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var sb strings.Builder
	for _, cat := range categories {
		cmds := byCategory[cat]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })

		sb.WriteString("**" + cat + "**\n")
		for _, cmd := range cmds {
			sb.WriteString("`/" + cmd.Name() + "` - " + cmd.Description())
			if cmd.RequireAdmin() {
				sb.WriteString(" *(admin)*")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
