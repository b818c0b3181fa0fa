package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"woot/internal/logging"
	"woot/internal/storage"
)

// ScheduleUnmute removes the muted role after d and clears the stored expiry.
// Fire-and-forget; a failed removal stays in storage and is retried on the
// next restart.
func ScheduleUnmute(s *discordgo.Session, store *storage.Storage, guildID, userID string, d time.Duration) {
	if d < 0 {
		d = 0
	}
	log := logging.Component("moderation")

	time.AfterFunc(d, func() {
		roleID, err := store.MutedRole(guildID)
		if err != nil || roleID == "" {
			log.Warn().Err(err).Str("guild_id", guildID).Msg("no muted role configured for scheduled unmute")
			return
		}
		if err := s.GuildMemberRoleRemove(guildID, userID, roleID); err != nil {
			log.Warn().Err(err).Str("guild_id", guildID).Str("user_id", userID).Msg("scheduled unmute failed")
			return
		}
		if err := store.SetMuteExpiry(guildID, userID, time.Time{}); err != nil {
			log.Warn().Err(err).Str("guild_id", guildID).Str("user_id", userID).Msg("failed to clear mute expiry")
		}
		log.Info().Str("guild_id", guildID).Str("user_id", userID).Msg("mute expired, role removed")
	})
}

// resumeMuteTimers reschedules unmutes persisted before a restart.
func (b *Bot) resumeMuteTimers() {
	for _, g := range b.dg.State.Guilds {
		expiries, err := b.store.MuteExpiries(g.ID)
		if err != nil {
			b.log.Warn().Err(err).Str("guild_id", g.ID).Msg("failed to load mute expiries")
			continue
		}
		for userID, until := range expiries {
			ScheduleUnmute(b.dg, b.store, g.ID, userID, time.Until(until))
		}
	}
}
