package blackjack

import (
	"math/big"

	"go.dedis.ch/kyber/v4/util/random"
)

// DeckSize is the number of cards in a full deck.
const DeckSize = 52

// Deck is an ordered set of cards, drawn without replacement.
// A Deck belongs to exactly one round and is never shared.
type Deck struct {
	cards []Card
}

// NewShuffledDeck builds the full 52-card deck and applies a uniform
// Fisher-Yates shuffle driven by a cryptographic random stream.
func NewShuffledDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for suit := uint8(Hearts); suit <= Spades; suit++ {
		for rank := uint8(Ace); rank <= King; rank++ {
			cards = append(cards, Card{suit: suit, rank: rank})
		}
	}

	stream := random.New()
	for i := len(cards) - 1; i > 0; i-- {
		j := random.Int(big.NewInt(int64(i+1)), stream).Int64()
		cards[i], cards[j] = cards[j], cards[i]
	}
	return &Deck{cards: cards}
}

// Deal removes and returns the top card. The second return value is
// false if the deck is empty.
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, true
}

// Remaining returns the number of undrawn cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
