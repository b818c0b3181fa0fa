package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"woot/internal/music/player"
)

// BotVoice is what music commands need from the bot.
type BotVoice interface {
	Players() *player.Registry
	FindUserVoiceState(guildID, userID string) (*discordgo.VoiceState, error)
}

// FindUserVoiceState returns the user's current voice state in a guild.
func (b *Bot) FindUserVoiceState(guildID, userID string) (*discordgo.VoiceState, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		guild, err = b.dg.Guild(guildID)
		if err != nil {
			return nil, err
		}
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs, nil
		}
	}
	return nil, errors.New("you must be in a voice channel")
}
