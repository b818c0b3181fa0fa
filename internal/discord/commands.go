package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"woot/internal/command"
)

// registerCommands syncs slash commands for a guild with Discord: deletes
// obsolete ones, creates or updates commands whose definition has changed.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID

	remote, _ := b.dg.ApplicationCommands(appID, guildID)
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, c := range remote {
		remoteByName[c.Name] = c
	}

	local := buildCommandDefinitions()
	cached := loadCommandHashes(guildID)

	b.deleteObsoleteCommands(appID, guildID, remoteByName, local)
	b.upsertChangedCommands(appID, guildID, local, cached)

	return nil
}

// buildCommandDefinitions collects slash definitions from the registry.
func buildCommandDefinitions() []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range command.All() {
		sp, ok := c.(command.SlashProvider)
		if !ok {
			continue
		}
		if def := sp.SlashDefinition(); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

// deleteObsoleteCommands removes commands no longer in the local registry.
func (b *Bot) deleteObsoleteCommands(appID, guildID string, remote map[string]*discordgo.ApplicationCommand, local []*discordgo.ApplicationCommand) {
	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		localNames[d.Name] = struct{}{}
	}

	hashes := loadCommandHashes(guildID)
	for name, rc := range remote {
		if _, exists := localNames[name]; exists {
			continue
		}
		b.log.Info().Str("guild_id", guildID).Str("command", name).Msg("deleting obsolete command")
		if err := b.dg.ApplicationCommandDelete(appID, guildID, rc.ID); err != nil {
			b.log.Error().Err(err).Str("guild_id", guildID).Str("command", name).Msg("failed to delete command")
		} else {
			delete(hashes, name)
		}
	}
	saveCommandHashes(guildID, hashes)
}

// upsertChangedCommands creates or updates commands whose hash differs from
// the cached value.
func (b *Bot) upsertChangedCommands(appID, guildID string, defs []*discordgo.ApplicationCommand, cached map[string]string) {
	var changed []*discordgo.ApplicationCommand
	newHashes := make(map[string]string, len(defs))
	for _, d := range defs {
		h := hashCommand(d)
		newHashes[d.Name] = h
		if cached[d.Name] != h {
			changed = append(changed, d)
		}
	}
	if len(changed) == 0 {
		return
	}

	b.log.Info().Str("guild_id", guildID).Int("count", len(changed)).Msg("registering changed commands")
	for _, d := range changed {
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, d); err != nil {
			b.log.Error().Err(err).Str("guild_id", guildID).Str("command", d.Name).Msg("failed to register command")
		} else {
			b.log.Info().Str("guild_id", guildID).Str("command", d.Name).Msg("registered command")
		}
		time.Sleep(25 * time.Millisecond) // stay well under Discord's rate limit
	}

	merged := loadCommandHashes(guildID)
	for k, v := range newHashes {
		merged[k] = v
	}
	saveCommandHashes(guildID, merged)
}
