// Package discord wires the bot together: the gateway session, slash command
// sync, interaction dispatch and the music session registry.
package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"woot/internal/command"
	"woot/internal/config"
	"woot/internal/logging"
	"woot/internal/music/player"
	"woot/internal/music/source_resolver"
	"woot/internal/music/stream"
	"woot/internal/storage"
)

// Bot is the Discord bot.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	store   *storage.Storage
	players *player.Registry
	log     zerolog.Logger
}

func NewBot(cfg *config.Config, store *storage.Storage) *Bot {
	return &Bot{
		cfg:   cfg,
		store: store,
		log:   logging.Component("discord"),
	}
}

// Run opens the gateway session and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	resolver := source_resolver.New(ctx, b.cfg.SpotifyClientID, b.cfg.SpotifyClientSecret)
	b.players = player.NewRegistry(
		source_resolver.NewPlayerResolver(resolver),
		stream.NewOpener(),
		func(guildID string) player.Driver { return stream.NewDiscordDriver(dg, guildID) },
		player.Config{
			MaxFailures:    b.cfg.PlayerMaxFailures,
			VolumeMax:      b.cfg.PlayerVolumeMax,
			ResolveTimeout: b.cfg.PlayerResolveTimeout,
		},
		b.cfg.PlayerIdleTimeout,
	)

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	b.players.StartSweeper()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, cleaning up")
	b.players.Shutdown()
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentGuildModeration
}

// Players exposes the music session registry to commands.
func (b *Bot) Players() *player.Registry {
	return b.players
}

// Session exposes the gateway session for jobs that outlive an interaction.
func (b *Bot) Session() *discordgo.Session {
	return b.dg
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		if b.cfg.InitSlashCommands {
			if err := b.registerCommands(g.ID); err != nil {
				b.log.Error().Err(err).Str("guild_id", g.ID).Msg("failed to register slash commands")
			}
		}
	}
	if !b.cfg.InitSlashCommands {
		b.log.Info().Msg("slash command registration skipped")
	}
	b.resumeMuteTimers()
	b.log.Info().Str("user", s.State.User.Username).Int("guilds", len(r.Guilds)).Msg("bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Info().Str("guild_id", g.Guild.ID).Str("guild", g.Guild.Name).Msg("joined guild")
	if !b.cfg.InitSlashCommands {
		return
	}
	if err := b.registerCommands(g.Guild.ID); err != nil {
		b.log.Error().Err(err).Str("guild_id", g.Guild.ID).Msg("failed to register commands for new guild")
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		cmd, ok := command.Get(name)
		if !ok {
			b.log.Warn().Str("command", name).Msg("unknown command")
			return
		}
		ctx := &command.SlashContext{Session: s, Event: i, Storage: b.store}
		if err := cmd.Run(ctx); err != nil {
			b.log.Error().Err(err).Str("command", name).Msg("command failed")
			_ = RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
				Description: fmt.Sprintf("Error running command: %v", err),
			})
		}

	case discordgo.InteractionMessageComponent:
		parts := strings.Split(i.MessageComponentData().CustomID, ":")
		if len(parts) == 0 {
			return
		}
		cmd, ok := command.Get(parts[0])
		if !ok {
			return
		}
		handler, ok := cmd.(command.ComponentHandler)
		if !ok {
			return
		}
		ctx := &command.ComponentContext{Session: s, Event: i, Storage: b.store, Args: parts[1:]}
		if err := handler.Component(ctx); err != nil {
			b.log.Error().Err(err).Str("custom_id", i.MessageComponentData().CustomID).Msg("component handler failed")
		}
	}
}
