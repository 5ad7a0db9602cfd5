package blackjack

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Card suit constants (0-3). The order matches the network encoding:
// a card's suit byte on the wire is exactly this value.
const (
	Hearts   = 0 // ♥ (red)
	Diamonds = 1 // ♦ (red)
	Clubs    = 2 // ♣ (black)
	Spades   = 3 // ♠ (black)
)

// Card rank constants for face cards and ace
const (
	Ace   = 1  // A (11 or 1, best non-busting value)
	Jack  = 11 // J
	Queen = 12 // Q
	King  = 13 // K
)

// FaceDown is the display character for hidden cards
const FaceDown = "▓"

// Card represents a playing card with suit and rank.
// The zero Card (rank 0) is the "no card" sentinel used on the wire.
type Card struct {
	suit uint8 // 0-3: hearts, diamonds, clubs, spades
	rank uint8 // 1-13: ace through king (0 = no card)
}

// NewCard creates a new Card with validation.
//
// Parameters:
//   - suit: 0-3 (Hearts, Diamonds, Clubs, Spades)
//   - rank: 1-13 (Ace=1, 2-10=face value, Jack=11, Queen=12, King=13)
//
// Returns the Card or an error if suit or rank is invalid.
func NewCard(suit uint8, rank uint8) (Card, error) {
	if suit > 3 || rank == 0 || rank > 13 {
		return Card{}, fmt.Errorf("invalid card %d, %d", suit, rank)
	}

	return Card{
		suit: suit,
		rank: rank,
	}, nil
}

// Suit returns the suit value of the Card (0-3: hearts, diamonds, clubs, spades).
func (c Card) Suit() uint8 {
	return c.suit
}

// Rank returns the rank value of the Card (1-13: ace through king).
func (c Card) Rank() uint8 {
	return c.rank
}

// IsZero reports whether the Card is the "no card" sentinel.
func (c Card) IsZero() bool {
	return c.rank == 0
}

// Score returns the card's blackjack value: face cards count 10 and the
// ace counts 11 here. Hand.Value demotes aces to 1 as needed.
func (c Card) Score() int {
	switch {
	case c.rank == Ace:
		return 11
	case c.rank >= Jack:
		return 10
	default:
		return int(c.rank)
	}
}

// String returns a human-readable representation of the Card using suit symbols
// (♥, ♦, ♣, ♠) and rank abbreviations (A, J, Q, K, or number).
func (c Card) String() string {
	if c.rank == 0 {
		return FaceDown
	}

	var suit string
	switch c.suit {
	case Hearts:
		suit = pterm.LightRed("♥")
	case Diamonds:
		suit = pterm.LightRed("♦")
	case Clubs:
		suit = pterm.Black("♣")
	case Spades:
		suit = pterm.Black("♠")
	default:
		suit = "?"
	}

	var rankStr string
	switch c.rank {
	case Ace:
		rankStr = "A"
	case Jack:
		rankStr = "J"
	case Queen:
		rankStr = "Q"
	case King:
		rankStr = "K"
	default:
		rankStr = fmt.Sprintf("%d", c.rank)
	}
	return rankStr + suit
}
