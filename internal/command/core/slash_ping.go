package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"woot/internal/command"
	"woot/internal/discord"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check the bot's gateway latency" }
func (c *PingCommand) Aliases() []string   { return nil }
func (c *PingCommand) Group() string       { return "core" }
func (c *PingCommand) Category() string    { return "🕯️ Information" }
func (c *PingCommand) RequireAdmin() bool  { return false }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *PingCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}
	latency := slash.Session.HeartbeatLatency().Milliseconds()
	return discord.RespondEphemeral(slash.Session, slash.Event, fmt.Sprintf("🏓 Pong! %dms", latency))
}
