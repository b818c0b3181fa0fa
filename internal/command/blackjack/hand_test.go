package blackjack

import "testing"

func card(rank string) Card {
	return Card{Rank: rank, Suit: "♠"}
}

func TestHandTotal(t *testing.T) {
	tests := []struct {
		name string
		hand []Card
		want int
	}{
		{"simple", []Card{card("2"), card("9")}, 11},
		{"face cards", []Card{card("K"), card("Q")}, 20},
		{"ace high", []Card{card("A"), card("7")}, 18},
		{"ace downgrades", []Card{card("A"), card("7"), card("9")}, 17},
		{"two aces", []Card{card("A"), card("A")}, 12},
		{"two aces with ten", []Card{card("A"), card("A"), card("9")}, 21},
		{"all aces bust avoided", []Card{card("A"), card("A"), card("A"), card("A")}, 14},
		{"blackjack", []Card{card("A"), card("K")}, 21},
	}

	for _, tt := range tests {
		if got := HandTotal(tt.hand); got != tt.want {
			t.Errorf("%s: HandTotal = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestIsBlackjack(t *testing.T) {
	if !IsBlackjack([]Card{card("A"), card("K")}) {
		t.Error("A+K should be blackjack")
	}
	if IsBlackjack([]Card{card("7"), card("7"), card("7")}) {
		t.Error("three-card 21 is not blackjack")
	}
	if IsBlackjack([]Card{card("K"), card("Q")}) {
		t.Error("20 is not blackjack")
	}
}

func TestNewDeckHas52UniqueCards(t *testing.T) {
	deck := NewDeck()
	if len(deck) != 52 {
		t.Fatalf("deck size = %d, want 52", len(deck))
	}
	seen := make(map[Card]bool, 52)
	for _, c := range deck {
		if seen[c] {
			t.Errorf("duplicate card %v", c)
		}
		seen[c] = true
	}
}

func TestGameHitBust(t *testing.T) {
	g := &Game{
		Bet:        100,
		Deck:       []Card{card("K")},
		PlayerHand: []Card{card("K"), card("5")},
		DealerHand: []Card{card("9"), card("8")},
	}

	if err := g.Hit(); err != nil {
		t.Fatalf("Hit returned error: %v", err)
	}
	if !g.Done || g.Result != OutcomeLoss {
		t.Errorf("bust: done=%v result=%q, want loss", g.Done, g.Result)
	}
	if g.Payout() != 0 {
		t.Errorf("bust payout = %v, want 0", g.Payout())
	}
	if err := g.Hit(); err != ErrGameOver {
		t.Errorf("Hit after settle = %v, want ErrGameOver", err)
	}
}

func TestGameStandDealerDrawsToSeventeen(t *testing.T) {
	g := &Game{
		Bet:        100,
		Deck:       []Card{card("K"), card("5")},
		PlayerHand: []Card{card("K"), card("9")},
		DealerHand: []Card{card("2"), card("4")},
	}

	if err := g.Stand(); err != nil {
		t.Fatalf("Stand returned error: %v", err)
	}
	if total := HandTotal(g.DealerHand); total < dealerStandsOn {
		t.Errorf("dealer stopped at %d, want >= %d", total, dealerStandsOn)
	}
	if g.Result != OutcomeLoss {
		// dealer: 2+4+K+5 = 21 beats player's 19
		t.Errorf("result = %q, want loss", g.Result)
	}
}

func TestGamePayouts(t *testing.T) {
	tests := []struct {
		result Outcome
		want   float64
	}{
		{OutcomeWin, 200},
		{OutcomeBlackjack, 250},
		{OutcomePush, 100},
		{OutcomeLoss, 0},
	}
	for _, tt := range tests {
		g := &Game{Bet: 100, Result: tt.result}
		if got := g.Payout(); got != tt.want {
			t.Errorf("payout for %q = %v, want %v", tt.result, got, tt.want)
		}
	}
}

func TestManagerOneGamePerUser(t *testing.T) {
	m := NewManager()

	g1, err := m.Start("g", "u", 50)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !g1.Done {
		if _, err := m.Start("g", "u", 50); err != ErrGameInProgress {
			t.Errorf("second Start = %v, want ErrGameInProgress", err)
		}
	}

	// different guild is a separate game
	if _, err := m.Start("other", "u", 50); err != nil {
		t.Errorf("Start in other guild = %v, want nil", err)
	}

	m.Finish("g", "u")
	if _, err := m.Get("g", "u"); err != ErrNoGame {
		t.Errorf("Get after Finish = %v, want ErrNoGame", err)
	}
}
