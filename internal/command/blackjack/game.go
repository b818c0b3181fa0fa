package blackjack

import (
	"errors"
	"sync"
)

const dealerStandsOn = 17

type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeWin       Outcome = "win"
	OutcomeBlackjack Outcome = "blackjack"
	OutcomeLoss      Outcome = "loss"
	OutcomePush      Outcome = "push"
)

// blackjackPayout is the bonus multiplier for a natural 21.
const blackjackPayout = 1.5

var (
	ErrGameInProgress = errors.New("you already have a game in progress")
	ErrNoGame         = errors.New("no active game, start one with /blackjack play")
	ErrGameOver       = errors.New("this game is already finished")
)

// Game is one player's hand against the dealer.
type Game struct {
	UserID     string
	Bet        float64
	Deck       []Card
	PlayerHand []Card
	DealerHand []Card
	Done       bool
	Result     Outcome
}

func newGame(userID string, bet float64) *Game {
	g := &Game{
		UserID: userID,
		Bet:    bet,
		Deck:   NewDeck(),
	}
	g.PlayerHand = append(g.PlayerHand, g.draw(), g.draw())
	g.DealerHand = append(g.DealerHand, g.draw(), g.draw())

	if IsBlackjack(g.PlayerHand) {
		g.Done = true
		if IsBlackjack(g.DealerHand) {
			g.Result = OutcomePush
		} else {
			g.Result = OutcomeBlackjack
		}
	}
	return g
}

func (g *Game) draw() Card {
	c := g.Deck[0]
	g.Deck = g.Deck[1:]
	return c
}

// Hit deals the player a card and settles the game on bust or 21.
func (g *Game) Hit() error {
	if g.Done {
		return ErrGameOver
	}
	g.PlayerHand = append(g.PlayerHand, g.draw())

	total := HandTotal(g.PlayerHand)
	if total > 21 {
		g.Done = true
		g.Result = OutcomeLoss
	} else if total == 21 {
		g.stand()
	}
	return nil
}

// Stand ends the player's turn; the dealer draws to 17 and the game settles.
func (g *Game) Stand() error {
	if g.Done {
		return ErrGameOver
	}
	g.stand()
	return nil
}

func (g *Game) stand() {
	for HandTotal(g.DealerHand) < dealerStandsOn {
		g.DealerHand = append(g.DealerHand, g.draw())
	}

	player := HandTotal(g.PlayerHand)
	dealer := HandTotal(g.DealerHand)

	g.Done = true
	switch {
	case dealer > 21 || player > dealer:
		g.Result = OutcomeWin
	case player < dealer:
		g.Result = OutcomeLoss
	default:
		g.Result = OutcomePush
	}
}

// Payout returns the net balance change for a settled game. The bet was
// already deducted when the game started.
func (g *Game) Payout() float64 {
	switch g.Result {
	case OutcomeWin:
		return g.Bet * 2
	case OutcomeBlackjack:
		return g.Bet * (1 + blackjackPayout)
	case OutcomePush:
		return g.Bet
	default:
		return 0
	}
}

// Manager tracks at most one active game per user per guild.
type Manager struct {
	mu    sync.Mutex
	games map[string]*Game // key = guildID:userID
}

func NewManager() *Manager {
	return &Manager{games: make(map[string]*Game)}
}

func key(guildID, userID string) string {
	return guildID + ":" + userID
}

// Start creates a game. Fails if the user already has one running.
func (m *Manager) Start(guildID, userID string, bet float64) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.games[key(guildID, userID)]; ok && !g.Done {
		return nil, ErrGameInProgress
	}
	g := newGame(userID, bet)
	m.games[key(guildID, userID)] = g
	return g, nil
}

// Get returns the user's active game.
func (m *Manager) Get(guildID, userID string) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[key(guildID, userID)]
	if !ok {
		return nil, ErrNoGame
	}
	return g, nil
}

// Finish removes a settled game.
func (m *Manager) Finish(guildID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, key(guildID, userID))
}
