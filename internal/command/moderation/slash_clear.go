package moderation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"woot/internal/command"
	"woot/internal/discord"
)

type ClearCommand struct{}

func (c *ClearCommand) Name() string        { return "clear" }
func (c *ClearCommand) Description() string { return "Bulk delete recent messages in this channel" }
func (c *ClearCommand) Aliases() []string   { return []string{"purge"} }
func (c *ClearCommand) Group() string       { return "moderation" }
func (c *ClearCommand) Category() string    { return "🔨 Moderation" }
func (c *ClearCommand) RequireAdmin() bool  { return true }

var (
	clearMin = float64(1)
	clearMax = 100.0
)

func (c *ClearCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "count",
				Description: "How many messages to delete (1-100)",
				Required:    true,
				MinValue:    &clearMin,
				MaxValue:    clearMax,
			},
		},
	}
}

func (c *ClearCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}
	s, e := slash.Session, slash.Event

	var count int64
	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Name == "count" {
			count = opt.IntValue()
		}
	}

	msgs, err := s.ChannelMessages(e.ChannelID, int(count), "", "", "")
	if err != nil {
		return discord.RespondEphemeral(s, e, "Failed to fetch messages: "+err.Error())
	}

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	if err := s.ChannelMessagesBulkDelete(e.ChannelID, ids); err != nil {
		return discord.RespondEphemeral(s, e, "Failed to delete messages: "+err.Error())
	}

	return discord.RespondEphemeral(s, e, fmt.Sprintf("🧹 Deleted %d message(s).", len(ids)))
}
