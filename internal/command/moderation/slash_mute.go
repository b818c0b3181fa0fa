package moderation

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"woot/internal/command"
	"woot/internal/discord"
	"woot/internal/storage"
)

const mutedRoleName = "Muted"

type MuteCommand struct{}

func (c *MuteCommand) Name() string        { return "mute" }
func (c *MuteCommand) Description() string { return "Mute or unmute a member" }
func (c *MuteCommand) Aliases() []string   { return nil }
func (c *MuteCommand) Group() string       { return "moderation" }
func (c *MuteCommand) Category() string    { return "🔨 Moderation" }
func (c *MuteCommand) RequireAdmin() bool  { return true }

func (c *MuteCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Mute a member",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "member",
						Description: "Member to mute",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "duration",
						Description: "How long, e.g. 10m, 2h (omit for indefinite)",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Unmute a member",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "member",
						Description: "Member to unmute",
						Required:    true,
					},
				},
			},
		},
	}
}

func (c *MuteCommand) Run(ctx interface{}) error {
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
		return c.runMute(slash, sub)
	case "remove":
		return c.runUnmute(slash, sub)
	default:
		return discord.RespondEphemeral(s, e, "Unknown subcommand: "+sub.Name)
	}
}

func (c *MuteCommand) runMute(slash *command.SlashContext, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	s, e := slash.Session, slash.Event

	var target *discordgo.User
	var rawDuration string
	for _, opt := range sub.Options {
		switch opt.Name {
		case "member":
			target = opt.UserValue(s)
		case "duration":
			rawDuration = opt.StringValue()
		}
	}
	if target == nil {
		return discord.RespondEphemeral(s, e, "Member is required.")
	}

	var duration time.Duration
	if rawDuration != "" {
		var err error
		duration, err = time.ParseDuration(rawDuration)
		if err != nil || duration <= 0 {
			return discord.RespondEphemeral(s, e, "Invalid duration, use forms like `10m` or `2h`.")
		}
	}

	roleID, err := ensureMutedRole(s, slash.Storage, e.GuildID)
	if err != nil {
		return discord.RespondEphemeral(s, e, "Failed to set up the muted role: "+err.Error())
	}

	if err := s.GuildMemberRoleAdd(e.GuildID, target.ID, roleID); err != nil {
		return discord.RespondEphemeral(s, e, fmt.Sprintf("Failed to mute %s: %v", target.Username, err))
	}

	if duration > 0 {
		until := time.Now().Add(duration)
		if err := slash.Storage.SetMuteExpiry(e.GuildID, target.ID, until); err == nil {
			discord.ScheduleUnmute(s, slash.Storage, e.GuildID, target.ID, duration)
		}
		return discord.Respond(s, e, fmt.Sprintf("🔇 **%s** muted for %s.", target.Username, duration))
	}
	return discord.Respond(s, e, fmt.Sprintf("🔇 **%s** muted indefinitely.", target.Username))
}

func (c *MuteCommand) runUnmute(slash *command.SlashContext, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	s, e := slash.Session, slash.Event

	var target *discordgo.User
	for _, opt := range sub.Options {
		if opt.Name == "member" {
			target = opt.UserValue(s)
		}
	}
	if target == nil {
		return discord.RespondEphemeral(s, e, "Member is required.")
	}

	roleID, err := slash.Storage.MutedRole(e.GuildID)
	if err != nil || roleID == "" {
		return discord.RespondEphemeral(s, e, "No muted role is configured for this server.")
	}

	if err := s.GuildMemberRoleRemove(e.GuildID, target.ID, roleID); err != nil {
		return discord.RespondEphemeral(s, e, fmt.Sprintf("Failed to unmute %s: %v", target.Username, err))
	}
	_ = slash.Storage.SetMuteExpiry(e.GuildID, target.ID, time.Time{})

	return discord.Respond(s, e, fmt.Sprintf("🔊 **%s** unmuted.", target.Username))
}

// ensureMutedRole finds or creates the guild's muted role and denies it send
// permissions in every text channel.
func ensureMutedRole(s *discordgo.Session, store *storage.Storage, guildID string) (string, error) {
	if roleID, err := store.MutedRole(guildID); err == nil && roleID != "" {
		return roleID, nil
	}

	roles, err := s.GuildRoles(guildID)
	if err != nil {
		return "", err
	}
	for _, r := range roles {
		if r.Name == mutedRoleName {
			_ = store.SetMutedRole(guildID, r.ID)
			return r.ID, nil
		}
	}

	var noPerms int64
	role, err := s.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        mutedRoleName,
		Permissions: &noPerms,
	})
	if err != nil {
		return "", err
	}

	channels, err := s.GuildChannels(guildID)
	if err == nil {
		for _, ch := range channels {
			if ch.Type != discordgo.ChannelTypeGuildText {
				continue
			}
			_ = s.ChannelPermissionSet(ch.ID, role.ID, discordgo.PermissionOverwriteTypeRole,
				0, discordgo.PermissionSendMessages|discordgo.PermissionAddReactions)
		}
	}

	if err := store.SetMutedRole(guildID, role.ID); err != nil {
		return "", err
	}
	return role.ID, nil
}
