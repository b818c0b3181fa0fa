package core

import (
	"runtime"

	embed "github.com/clinet/discordgo-embed"

	"github.com/bwmarrin/discordgo"

	"woot/internal/command"
	"woot/internal/discord"
	"woot/internal/version"
)

type AboutCommand struct{}

func (c *AboutCommand) Name() string        { return "about" }
func (c *AboutCommand) Description() string { return "Show bot version and build info" }
func (c *AboutCommand) Aliases() []string   { return nil }
func (c *AboutCommand) Group() string       { return "core" }
func (c *AboutCommand) Category() string    { return "🕯️ Information" }
func (c *AboutCommand) RequireAdmin() bool  { return false }

func (c *AboutCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *AboutCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	buildDate := version.BuildDate
	if buildDate == "" {
		buildDate = "unknown"
	}

	about := embed.NewEmbed().
		SetTitle(version.AppFullName).
		SetDescription("Music, games and moderation for your server.").
		AddField("Build date", buildDate).
		AddField("Go version", runtime.Version()).
		SetColor(discord.EmbedColor).
		MessageEmbed

	return discord.RespondEmbedEphemeral(slash.Session, slash.Event, about)
}
