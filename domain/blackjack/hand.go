package blackjack

// Blackjack threshold constants.
const (
	blackjackMax   = 21
	dealerStandsAt = 17
)

// Hand is an ordered sequence of cards. Insertion order matters for
// display (the dealer's second card is the hidden one) but not for value.
type Hand struct {
	cards []Card
}

// NewHand creates a Hand holding a copy of the given cards.
func NewHand(cards ...Card) Hand {
	h := Hand{}
	h.cards = append(h.cards, cards...)
	return h
}

// Add appends a card to the hand.
func (h *Hand) Add(card Card) {
	h.cards = append(h.cards, card)
}

// Cards returns a copy of the hand's cards in insertion order.
func (h Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Len returns the number of cards in the hand.
func (h Hand) Len() int {
	return len(h.cards)
}

// Value computes the hand's blackjack total. Aces start at 11 and are
// demoted to 1 one at a time while the total exceeds 21. Only the number
// of demotions matters, so the result is a pure function of the cards.
func (h Hand) Value() int {
	total := 0
	aces := 0
	for _, c := range h.cards {
		total += c.Score()
		if c.Rank() == Ace {
			aces++
		}
	}
	for total > blackjackMax && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// Bust reports whether the hand's value exceeds 21.
func (h Hand) Bust() bool {
	return h.Value() > blackjackMax
}

// DealerShouldHit reports whether a dealer holding this hand must draw.
// The dealer hits until reaching 17 or more.
func (h Hand) DealerShouldHit() bool {
	return h.Value() < dealerStandsAt
}
