package moderation

import (
	"fmt"
	"strings"

	embed "github.com/clinet/discordgo-embed"

	"github.com/bwmarrin/discordgo"

	"woot/internal/command"
	"woot/internal/discord"
)

type UserInfoCommand struct{}

func (c *UserInfoCommand) Name() string        { return "userinfo" }
func (c *UserInfoCommand) Description() string { return "Show information about a member" }
func (c *UserInfoCommand) Aliases() []string   { return []string{"whois"} }
func (c *UserInfoCommand) Group() string       { return "moderation" }
func (c *UserInfoCommand) Category() string    { return "🔨 Moderation" }
func (c *UserInfoCommand) RequireAdmin() bool  { return false }

func (c *UserInfoCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to inspect (defaults to you)",
			},
		},
	}
}

func (c *UserInfoCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}
	s, e := slash.Session, slash.Event

	target := e.Member.User
	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Name == "member" {
			target = opt.UserValue(s)
		}
	}

	member, err := s.GuildMember(e.GuildID, target.ID)
	if err != nil {
		return discord.RespondEphemeral(s, e, "Failed to fetch member: "+err.Error())
	}

	roles := make([]string, 0, len(member.Roles))
	for _, id := range member.Roles {
		roles = append(roles, "<@&"+id+">")
	}
	roleList := "none"
	if len(roles) > 0 {
		roleList = strings.Join(roles, " ")
	}

	info := embed.NewEmbed().
		SetTitle(target.Username).
		SetThumbnail(target.AvatarURL("")).
		AddField("ID", target.ID).
		AddField("Joined", member.JoinedAt.Format("2006-01-02 15:04")).
		AddField("Account created", fmt.Sprintf("<t:%d:D>", snowflakeTime(target.ID))).
		AddField("Roles", roleList).
		SetColor(discord.EmbedColor).
		MessageEmbed

	return discord.RespondEmbed(s, e, info)
}

// snowflakeTime extracts the unix creation time from a Discord ID.
func snowflakeTime(id string) int64 {
	var n uint64
	for _, r := range id {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + uint64(r-'0')
	}
	const discordEpoch = 1420070400000
	return int64((n>>22)+discordEpoch) / 1000
}
