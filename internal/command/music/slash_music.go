// Package music implements the /music slash command group: playback control
// for the guild's player session.
package music

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"woot/internal/command"
	"woot/internal/discord"
	"woot/internal/music/player"
)

type MusicCommand struct {
	Bot discord.BotVoice

	mu       sync.Mutex
	announce map[string]string // guildID -> text channel for player events
}

func New(bot discord.BotVoice) *MusicCommand {
	return &MusicCommand{
		Bot:      bot,
		announce: make(map[string]string),
	}
}

func (c *MusicCommand) Name() string        { return "music" }
func (c *MusicCommand) Description() string { return "Control music playback" }
func (c *MusicCommand) Aliases() []string   { return nil }
func (c *MusicCommand) Group() string       { return "music" }
func (c *MusicCommand) Category() string    { return "🎵 Music" }
func (c *MusicCommand) RequireAdmin() bool  { return false }

func (c *MusicCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "play",
				Description: "Queue a track, playlist, album or radio stream",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "input",
						Description: "Link (YouTube/Spotify/radio) or search query",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "skip",
				Description: "Skip to the next track",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "pause",
				Description: "Pause playback",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "resume",
				Description: "Resume paused playback",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "stop",
				Description: "Stop playback and clear the queue",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "loop",
				Description: "Set the loop mode",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "mode",
						Description: "How finished tracks are re-queued",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "off", Value: string(player.LoopOff)},
							{Name: "track", Value: string(player.LoopTrack)},
							{Name: "queue", Value: string(player.LoopQueue)},
						},
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "volume",
				Description: "Set your personal volume for tracks you request",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "percent",
						Description: "0 to 200, default 100",
						Required:    true,
						MinValue:    &volumeMin,
						MaxValue:    200,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "queue",
				Description: "Show the current queue",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "jump",
				Description: "Jump to a queue position, dropping everything before it",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "position",
						Description: "Queue position to jump to (1 = next)",
						Required:    true,
						MinValue:    &positionMin,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "shuffle",
				Description: "Shuffle the pending queue",
			},
		},
	}
}

var (
	volumeMin   = float64(0)
	positionMin = float64(1)
)

func (c *MusicCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	s := slash.Session
	e := slash.Event

	if len(e.ApplicationCommandData().Options) == 0 {
		return discord.RespondEphemeral(s, e, "Missing subcommand.")
	}
	sub := e.ApplicationCommandData().Options[0]

	switch sub.Name {
	case "play":
		return c.runPlay(s, e, sub)
	case "skip":
		return c.runSkip(s, e)
	case "pause":
		return c.runPause(s, e)
	case "resume":
		return c.runResume(s, e)
	case "stop":
		return c.runStop(s, e)
	case "loop":
		return c.runLoop(s, e, sub)
	case "volume":
		return c.runVolume(s, e, sub)
	case "queue":
		return c.runQueue(s, e)
	case "jump":
		return c.runJump(s, e, sub)
	case "shuffle":
		return c.runShuffle(s, e)
	default:
		return discord.RespondEphemeral(s, e, "Unknown subcommand: "+sub.Name)
	}
}

func (c *MusicCommand) runPlay(s *discordgo.Session, e *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	var input string
	for _, opt := range sub.Options {
		if opt.Name == "input" {
			input = opt.StringValue()
		}
	}
	if strings.TrimSpace(input) == "" {
		return discord.RespondEphemeral(s, e, "🎵 Input is required.")
	}

	voiceState, err := c.Bot.FindUserVoiceState(e.GuildID, e.Member.User.ID)
	if err != nil {
		return discord.RespondEphemeral(s, e, "🎵 "+err.Error())
	}

	session, created := c.Bot.Players().GetOrCreate(e.GuildID)
	if created {
		go c.listenEvents(s, session)
	}
	c.setAnnounceChannel(e.GuildID, e.ChannelID)

	if err := session.Enqueue(input, e.Member.User.ID, voiceState.ChannelID); err != nil {
		return discord.RespondEphemeral(s, e, "🎵 "+err.Error())
	}

	return discord.RespondEmbed(s, e, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("🔍 Resolving `%s`...", input),
		Color:       discord.EmbedColor,
	})
}

func (c *MusicCommand) runSkip(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	session := c.Bot.Players().Get(e.GuildID)
	if session == nil {
		return discord.RespondEphemeral(s, e, "🎵 Nothing is playing.")
	}
	if err := session.Skip(); err != nil {
		return discord.RespondEphemeral(s, e, "🎵 "+err.Error())
	}
	return discord.Respond(s, e, "⏭ Skipped.")
}

func (c *MusicCommand) runPause(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	session := c.Bot.Players().Get(e.GuildID)
	if session == nil {
		return discord.RespondEphemeral(s, e, "🎵 Nothing is playing.")
	}
	if err := session.Pause(); err != nil {
		return discord.RespondEphemeral(s, e, "🎵 "+err.Error())
	}
	return discord.Respond(s, e, "⏸ Paused.")
}

func (c *MusicCommand) runResume(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	session := c.Bot.Players().Get(e.GuildID)
	if session == nil {
		return discord.RespondEphemeral(s, e, "🎵 Nothing to resume.")
	}
	if err := session.Resume(); err != nil {
		return discord.RespondEphemeral(s, e, "🎵 "+err.Error())
	}
	return discord.Respond(s, e, "▶️ Resumed.")
}

func (c *MusicCommand) runStop(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	session := c.Bot.Players().Get(e.GuildID)
	if session == nil {
		return discord.RespondEphemeral(s, e, "🎵 Nothing is playing.")
	}
	if err := session.Stop(); err != nil {
		return discord.RespondEphemeral(s, e, "🎵 "+err.Error())
	}
	// a stopped session is done for good; the next play gets a fresh one
	c.Bot.Players().Remove(e.GuildID)
	return discord.Respond(s, e, "⏹ Stopped playback and cleared the queue.")
}

func (c *MusicCommand) runLoop(s *discordgo.Session, e *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	var raw string
	for _, opt := range sub.Options {
		if opt.Name == "mode" {
			raw = opt.StringValue()
		}
	}
	mode, err := player.ParseLoopMode(raw)
	if err != nil {
		return discord.RespondEphemeral(s, e, "🎵 "+err.Error())
	}

	session, created := c.Bot.Players().GetOrCreate(e.GuildID)
	if created {
		go c.listenEvents(s, session)
	}
	session.SetLoopMode(mode)
	return discord.Respond(s, e, "🔁 Loop mode set to **"+string(mode)+"**.")
}

func (c *MusicCommand) runVolume(s *discordgo.Session, e *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	var percent int64 = 100
	for _, opt := range sub.Options {
		if opt.Name == "percent" {
			percent = opt.IntValue()
		}
	}

	session, created := c.Bot.Players().GetOrCreate(e.GuildID)
	if created {
		go c.listenEvents(s, session)
	}
	applied := session.SetVolume(e.Member.User.ID, float64(percent)/100)
	return discord.Respond(s, e, fmt.Sprintf("🔊 Your volume is now **%.0f%%**. It applies to tracks you request.", applied*100))
}

func (c *MusicCommand) runQueue(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	session := c.Bot.Players().Get(e.GuildID)
	if session == nil {
		return discord.RespondEphemeral(s, e, "🎵 The queue is empty.")
	}

	snap := session.Snapshot()
	var sb strings.Builder

	if snap.Current != nil {
		fmt.Fprintf(&sb, "**Now playing:** %s (requested by <@%s>)\n\n", snap.Current.DisplayTitle(), snap.Current.RequestedBy)
	}
	if len(snap.Queue) == 0 && snap.Current == nil {
		return discord.RespondEphemeral(s, e, "🎵 The queue is empty.")
	}

	const maxShown = 10
	for i, t := range snap.Queue {
		if i >= maxShown {
			fmt.Fprintf(&sb, "...and %d more\n", len(snap.Queue)-maxShown)
			break
		}
		fmt.Fprintf(&sb, "`%2d.` %s (<@%s>)\n", i+1, t.DisplayTitle(), t.RequestedBy)
	}

	return discord.RespondEmbed(s, e, &discordgo.MessageEmbed{
		Title:       "🎶 Queue",
		Description: sb.String(),
		Color:       discord.EmbedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Status: %s | Loop: %s", snap.Status, snap.LoopMode),
		},
	})
}

func (c *MusicCommand) runJump(s *discordgo.Session, e *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	var position int64
	for _, opt := range sub.Options {
		if opt.Name == "position" {
			position = opt.IntValue()
		}
	}

	session := c.Bot.Players().Get(e.GuildID)
	if session == nil {
		return discord.RespondEphemeral(s, e, "🎵 The queue is empty.")
	}
	if err := session.JumpTo(int(position) - 1); err != nil {
		return discord.RespondEphemeral(s, e, "🎵 "+err.Error())
	}
	return discord.Respond(s, e, fmt.Sprintf("⏭ Jumped to position %d.", position))
}

func (c *MusicCommand) runShuffle(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	session := c.Bot.Players().Get(e.GuildID)
	if session == nil {
		return discord.RespondEphemeral(s, e, "🎵 The queue is empty.")
	}
	if err := session.Shuffle(); err != nil {
		return discord.RespondEphemeral(s, e, "🎵 "+err.Error())
	}
	return discord.Respond(s, e, "🔀 Queue shuffled.")
}

// Component handles the playback control buttons under now-playing messages.
// They route through the same session methods as the slash subcommands.
func (c *MusicCommand) Component(ctx *command.ComponentContext) error {
	if len(ctx.Args) < 1 {
		return nil
	}
	action := ctx.Args[0]
	s, e := ctx.Session, ctx.Event

	session := c.Bot.Players().Get(e.GuildID)
	if session == nil {
		return discord.RespondEphemeral(s, e, "🎵 Nothing is playing.")
	}

	var err error
	var msg string
	switch action {
	case "pause":
		err, msg = session.Pause(), "⏸ Paused."
	case "resume":
		err, msg = session.Resume(), "▶️ Resumed."
	case "skip":
		err, msg = session.Skip(), "⏭ Skipped."
	case "stop":
		err, msg = session.Stop(), "⏹ Stopped playback and cleared the queue."
	default:
		return nil
	}
	if err != nil {
		return discord.RespondEphemeral(s, e, "🎵 "+err.Error())
	}
	if action == "stop" {
		c.Bot.Players().Remove(e.GuildID)
	}
	return discord.Respond(s, e, msg)
}

func playerButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "⏸", Style: discordgo.SecondaryButton, CustomID: "music:pause"},
				discordgo.Button{Label: "▶️", Style: discordgo.SecondaryButton, CustomID: "music:resume"},
				discordgo.Button{Label: "⏭", Style: discordgo.SecondaryButton, CustomID: "music:skip"},
				discordgo.Button{Label: "⏹", Style: discordgo.DangerButton, CustomID: "music:stop"},
			},
		},
	}
}

func (c *MusicCommand) setAnnounceChannel(guildID, channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.announce[guildID] = channelID
}

func (c *MusicCommand) announceChannel(guildID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.announce[guildID]
}

// listenEvents relays session events to the guild's last play channel. One
// goroutine per session; exits when the session closes.
func (c *MusicCommand) listenEvents(s *discordgo.Session, session *player.Session) {
	for ev := range session.Events {
		channelID := c.announceChannel(session.GuildID)
		if channelID == "" {
			continue
		}

		switch ev.Type {
		case player.EventTrackStarted:
			desc := "🎶 " + ev.Track.DisplayTitle()
			if ev.Track.Title != "" && ev.Track.URL != "" && !strings.HasPrefix(ev.Track.URL, "ytsearch") {
				desc = fmt.Sprintf("🎶 [%s](%s)", ev.Track.Title, ev.Track.URL)
			}
			_ = discord.MessageEmbedComponents(s, channelID, &discordgo.MessageEmbed{
				Title:       ev.Type.Emoji() + " Now Playing",
				Description: desc,
				Color:       discord.EmbedColor,
			}, playerButtons())

		case player.EventTracksAdded:
			if len(ev.Added) > 1 {
				_ = discord.MessageEmbed(s, channelID, &discordgo.MessageEmbed{
					Title:       ev.Type.Emoji() + " Tracks Added",
					Description: fmt.Sprintf("Added **%d** tracks to the queue.", len(ev.Added)),
					Color:       discord.EmbedColor,
				})
			}

		case player.EventResolveFailed:
			_ = discord.MessageEmbed(s, channelID, &discordgo.MessageEmbed{
				Title:       ev.Type.Emoji() + " Resolve Failed",
				Description: fmt.Sprintf("Could not resolve `%s`: %v", ev.Input, ev.Err),
				Color:       discord.EmbedColor,
			})

		case player.EventTrackFailed:
			_ = discord.MessageEmbed(s, channelID, &discordgo.MessageEmbed{
				Title:       ev.Type.Emoji() + " Track Failed",
				Description: fmt.Sprintf("Skipping **%s**: %v", ev.Track.DisplayTitle(), ev.Err),
				Color:       discord.EmbedColor,
			})

		case player.EventTooManyFailures:
			_ = discord.MessageEmbed(s, channelID, &discordgo.MessageEmbed{
				Title:       ev.Type.Emoji() + " Playback Halted",
				Description: "Too many consecutive failures; stopping until the next request.",
				Color:       discord.EmbedColor,
			})

		case player.EventQueueEnded:
			_ = discord.MessageEmbed(s, channelID, &discordgo.MessageEmbed{
				Description: ev.Type.Emoji() + " Queue finished.",
				Color:       discord.EmbedColor,
			})

		case player.EventSessionStopped:
			if session.Closed() {
				return
			}
		}
	}
}
