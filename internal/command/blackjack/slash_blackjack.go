package blackjack

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"woot/internal/command"
	"woot/internal/discord"
	"woot/internal/storage"
)

type BlackjackCommand struct {
	games *Manager
}

func New() *BlackjackCommand {
	return &BlackjackCommand{games: NewManager()}
}

func (c *BlackjackCommand) Name() string        { return "blackjack" }
func (c *BlackjackCommand) Description() string { return "Play blackjack against the dealer" }
func (c *BlackjackCommand) Aliases() []string   { return []string{"bj"} }
func (c *BlackjackCommand) Group() string       { return "games" }
func (c *BlackjackCommand) Category() string    { return "🎲 Games" }
func (c *BlackjackCommand) RequireAdmin() bool  { return false }

var betMin = float64(1)

func (c *BlackjackCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "play",
				Description: "Deal a new hand",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "bet",
						Description: "Amount to wager",
						Required:    true,
						MinValue:    &betMin,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "balance",
				Description: "Check your bankroll",
			},
		},
	}
}

func (c *BlackjackCommand) Run(ctx interface{}) error {
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
		return c.runPlay(slash, sub)
	case "balance":
		return c.runBalance(slash)
	default:
		return discord.RespondEphemeral(s, e, "Unknown subcommand: "+sub.Name)
	}
}

func (c *BlackjackCommand) runPlay(slash *command.SlashContext, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	s, e := slash.Session, slash.Event
	userID := e.Member.User.ID

	var bet float64
	for _, opt := range sub.Options {
		if opt.Name == "bet" {
			bet = float64(opt.IntValue())
		}
	}

	balance, err := slash.Storage.Balance(e.GuildID, userID)
	if err != nil {
		return err
	}
	if bet > balance {
		return discord.RespondEphemeral(s, e, fmt.Sprintf("🃏 Not enough chips: you have %.0f.", balance))
	}

	game, err := c.games.Start(e.GuildID, userID, bet)
	if err != nil {
		return discord.RespondEphemeral(s, e, "🃏 "+err.Error())
	}

	// stake goes in up front, payouts come back on settle
	if err := slash.Storage.SetBalance(e.GuildID, userID, balance-bet); err != nil {
		return err
	}

	if game.Done {
		return c.respondSettled(s, e, slash.Storage, game, false)
	}

	return s.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{c.gameEmbed(game, false)},
			Components: gameButtons(userID),
		},
	})
}

func (c *BlackjackCommand) runBalance(slash *command.SlashContext) error {
	s, e := slash.Session, slash.Event
	balance, err := slash.Storage.Balance(e.GuildID, e.Member.User.ID)
	if err != nil {
		return err
	}
	return discord.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
		Title:       "🃏 Bankroll",
		Description: fmt.Sprintf("You have **%.0f** chips.", balance),
		Color:       discord.EmbedColor,
	})
}

// Component handles the hit/stand buttons. Custom IDs: blackjack:<action>:<ownerID>.
func (c *BlackjackCommand) Component(ctx *command.ComponentContext) error {
	s, e := ctx.Session, ctx.Event
	if len(ctx.Args) < 2 {
		return nil
	}
	action, ownerID := ctx.Args[0], ctx.Args[1]

	userID := e.Member.User.ID
	if userID != ownerID {
		return discord.RespondEphemeral(s, e, "🃏 This is not your game.")
	}

	game, err := c.games.Get(e.GuildID, userID)
	if err != nil {
		return discord.RespondEphemeral(s, e, "🃏 "+err.Error())
	}

	switch action {
	case "hit":
		err = game.Hit()
	case "stand":
		err = game.Stand()
	default:
		return nil
	}
	if err != nil {
		return discord.RespondEphemeral(s, e, "🃏 "+err.Error())
	}

	if game.Done {
		return c.respondSettled(s, e, ctx.Storage, game, true)
	}
	return discord.RespondUpdate(s, e, c.gameEmbed(game, false), gameButtons(userID))
}

// respondSettled pays out and renders the final state.
func (c *BlackjackCommand) respondSettled(s *discordgo.Session, e *discordgo.InteractionCreate, store *storage.Storage, game *Game, update bool) error {
	userID := game.UserID
	payout := game.Payout()
	if payout > 0 {
		balance, err := store.Balance(e.GuildID, userID)
		if err == nil {
			_ = store.SetBalance(e.GuildID, userID, balance+payout)
		}
	}
	c.games.Finish(e.GuildID, userID)

	embed := c.gameEmbed(game, true)
	if update {
		return discord.RespondUpdate(s, e, embed, []discordgo.MessageComponent{})
	}
	return discord.RespondEmbed(s, e, embed)
}

func (c *BlackjackCommand) gameEmbed(game *Game, revealDealer bool) *discordgo.MessageEmbed {
	dealer := FormatHand(game.DealerHand)
	dealerTotal := fmt.Sprintf("%d", HandTotal(game.DealerHand))
	if !revealDealer {
		dealer = game.DealerHand[0].String() + " 🂠"
		dealerTotal = "?"
	}

	embed := &discordgo.MessageEmbed{
		Title: "🃏 Blackjack",
		Color: discord.EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   fmt.Sprintf("Your hand (%d)", HandTotal(game.PlayerHand)),
				Value:  FormatHand(game.PlayerHand),
				Inline: true,
			},
			{
				Name:   fmt.Sprintf("Dealer (%s)", dealerTotal),
				Value:  dealer,
				Inline: true,
			},
		},
	}

	if game.Done {
		var result string
		switch game.Result {
		case OutcomeBlackjack:
			result = fmt.Sprintf("Blackjack! You win **%.0f**.", game.Bet*blackjackPayout)
		case OutcomeWin:
			result = fmt.Sprintf("You win **%.0f**!", game.Bet)
		case OutcomePush:
			result = "Push. Your bet is returned."
		default:
			result = fmt.Sprintf("You lose **%.0f**.", game.Bet)
		}
		embed.Description = result
	} else {
		embed.Description = fmt.Sprintf("Bet: **%.0f**", game.Bet)
	}
	return embed
}

func gameButtons(ownerID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Hit",
					Style:    discordgo.PrimaryButton,
					CustomID: "blackjack:hit:" + ownerID,
				},
				discordgo.Button{
					Label:    "Stand",
					Style:    discordgo.SecondaryButton,
					CustomID: "blackjack:stand:" + ownerID,
				},
			},
		},
	}
}
