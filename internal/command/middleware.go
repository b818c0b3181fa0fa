package command

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"woot/internal/logging"
	"woot/internal/storage"
)

type Middleware func(Command) Command

type WrappedCommand struct {
	Command
	Wrap func(ctx interface{}) error
}

func (w *WrappedCommand) Run(ctx interface{}) error {
	if w.Wrap != nil {
		return w.Wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *WrappedCommand) Component(ctx *ComponentContext) error {
	if ch, ok := w.Command.(ComponentHandler); ok {
		return ch.Component(ctx)
	}
	return nil
}

func (w *WrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// ApplyMiddlewares wraps a command innermost-first.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithGuildOnly rejects invocations from DMs.
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &WrappedCommand{
			Command: cmd,
			Wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashContext); ok && v.Event.GuildID == "" {
					return respondEphemeral(v.Session, v.Event, "You must be in a server to use this command.")
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithAdminOnly enforces the command's RequireAdmin flag against the invoking
// member's permissions.
func WithAdminOnly() Middleware {
	return func(cmd Command) Command {
		return &WrappedCommand{
			Command: cmd,
			Wrap: func(ctx interface{}) error {
				v, ok := ctx.(*SlashContext)
				if !ok || !cmd.RequireAdmin() {
					return cmd.Run(ctx)
				}
				if v.Event.Member == nil || v.Event.Member.Permissions&discordgo.PermissionAdministrator == 0 {
					return respondEphemeral(v.Session, v.Event, "You need administrator permissions for this command.")
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithCommandLogger records successful invocations in the guild's command
// history and the structured log.
func WithCommandLogger() Middleware {
	log := logging.Component("command")
	return func(cmd Command) Command {
		return &WrappedCommand{
			Command: cmd,
			Wrap: func(ctx interface{}) error {
				err := cmd.Run(ctx)

				if v, ok := ctx.(*SlashContext); ok {
					user := resolveUser(v.Event)
					log.Info().
						Str("command", cmd.Name()).
						Str("guild_id", v.Event.GuildID).
						Str("user", user.Username).
						Err(err).
						Msg("command invoked")
					if v.Storage != nil && v.Event.GuildID != "" {
						record := storage.CommandHistoryRecord{
							ChannelID: v.Event.ChannelID,
							UserID:    user.ID,
							Username:  user.Username,
							Command:   cmd.Name(),
							Datetime:  time.Now(),
						}
						if sErr := v.Storage.AddCommandHistory(v.Event.GuildID, record); sErr != nil {
							log.Warn().Err(sErr).Str("command", cmd.Name()).Msg("failed to record command history")
						}
					}
				}
				return err
			},
		}
	}
}

func resolveUser(e *discordgo.InteractionCreate) *discordgo.User {
	if e.Member != nil && e.Member.User != nil {
		return e.Member.User
	}
	if e.User != nil {
		return e.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}

func respondEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate, msg string) error {
	return s.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
