package moderation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"woot/internal/command"
	"woot/internal/discord"
)

type BanCommand struct{}

func (c *BanCommand) Name() string        { return "ban" }
func (c *BanCommand) Description() string { return "Ban or unban a member" }
func (c *BanCommand) Aliases() []string   { return nil }
func (c *BanCommand) Group() string       { return "moderation" }
func (c *BanCommand) Category() string    { return "🔨 Moderation" }
func (c *BanCommand) RequireAdmin() bool  { return true }

var deleteDaysMax = 7.0

func (c *BanCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Ban a member",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "member",
						Description: "Member to ban",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "reason",
						Description: "Reason for the ban",
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "delete_days",
						Description: "Days of messages to delete (0-7)",
						MaxValue:    deleteDaysMax,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Unban a user by ID",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "user_id",
						Description: "ID of the banned user",
						Required:    true,
					},
				},
			},
		},
	}
}

func (c *BanCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}
	s, e := slash.Session, slash.Event

	if len(e.ApplicationCommandData().Options) == 0 {
		return discord.RespondEphemeral(s, e, "Missing subcommand.")
	}
	sub := e.ApplicationCommandData().Options[0]

	switch sub.Name {
	case "add":
		return c.runBan(s, e, sub)
	case "remove":
		return c.runUnban(s, e, sub)
	default:
		return discord.RespondEphemeral(s, e, "Unknown subcommand: "+sub.Name)
	}
}

func (c *BanCommand) runBan(s *discordgo.Session, e *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	var target *discordgo.User
	var reason string
	var deleteDays int64
	for _, opt := range sub.Options {
		switch opt.Name {
		case "member":
			target = opt.UserValue(s)
		case "reason":
			reason = opt.StringValue()
		case "delete_days":
			deleteDays = opt.IntValue()
		}
	}
	if target == nil {
		return discord.RespondEphemeral(s, e, "Member is required.")
	}

	if err := s.GuildBanCreateWithReason(e.GuildID, target.ID, reason, int(deleteDays)); err != nil {
		return discord.RespondEphemeral(s, e, fmt.Sprintf("Failed to ban %s: %v", target.Username, err))
	}

	msg := fmt.Sprintf("🔨 **%s** was banned.", target.Username)
	if reason != "" {
		msg += " Reason: " + reason
	}
	return discord.Respond(s, e, msg)
}

func (c *BanCommand) runUnban(s *discordgo.Session, e *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	var userID string
	for _, opt := range sub.Options {
		if opt.Name == "user_id" {
			userID = opt.StringValue()
		}
	}
	if userID == "" {
		return discord.RespondEphemeral(s, e, "User ID is required.")
	}

	if err := s.GuildBanDelete(e.GuildID, userID); err != nil {
		return discord.RespondEphemeral(s, e, fmt.Sprintf("Failed to unban <@%s>: %v", userID, err))
	}
	return discord.Respond(s, e, fmt.Sprintf("🕊 <@%s> was unbanned.", userID))
}
