// Package moderation implements member management commands: kick, ban, mute,
// message cleanup and user lookups.
package moderation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"woot/internal/command"
	"woot/internal/discord"
)

type KickCommand struct{}

func (c *KickCommand) Name() string        { return "kick" }
func (c *KickCommand) Description() string { return "Kick a member from the server" }
func (c *KickCommand) Aliases() []string   { return nil }
func (c *KickCommand) Group() string       { return "moderation" }
func (c *KickCommand) Category() string    { return "🔨 Moderation" }
func (c *KickCommand) RequireAdmin() bool  { return true }

func (c *KickCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to kick",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Reason for the kick",
			},
		},
	}
}

func (c *KickCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}
	s, e := slash.Session, slash.Event

	var target *discordgo.User
	var reason string
	for _, opt := range e.ApplicationCommandData().Options {
		switch opt.Name {
		case "member":
			target = opt.UserValue(s)
		case "reason":
			reason = opt.StringValue()
		}
	}
	if target == nil {
		return discord.RespondEphemeral(s, e, "Member is required.")
	}

	if err := s.GuildMemberDeleteWithReason(e.GuildID, target.ID, reason); err != nil {
		return discord.RespondEphemeral(s, e, fmt.Sprintf("Failed to kick %s: %v", target.Username, err))
	}

	msg := fmt.Sprintf("👢 **%s** was kicked.", target.Username)
	if reason != "" {
		msg += " Reason: " + reason
	}
	return discord.Respond(s, e, msg)
}
