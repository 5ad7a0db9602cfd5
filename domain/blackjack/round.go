package blackjack

// Result is a round outcome from the player's perspective.
// The values are the ones sent on the wire.
type Result uint8

const (
	ResultNotOver Result = 0x0
	ResultTie     Result = 0x1
	ResultLoss    Result = 0x2
	ResultWin     Result = 0x3
)

func (r Result) String() string {
	switch r {
	case ResultNotOver:
		return "NOT OVER"
	case ResultTie:
		return "TIE"
	case ResultLoss:
		return "LOSS"
	case ResultWin:
		return "WIN"
	default:
		return "?"
	}
}

// State identifies where a round is in its lifecycle. Both ends of a
// connection reconstruct the same states purely from the message
// exchange, so transitions here must match the protocol exactly.
type State uint8

const (
	// Dealt: initial two cards each have been drawn, none acted on yet.
	Dealt State = iota
	// PlayerTurn: waiting for the player to hit or stand.
	PlayerTurn
	// DealerReveal: the player stood, the hidden dealer card is due.
	DealerReveal
	// DealerTurn: the dealer draws until reaching 17 or busting.
	DealerTurn
	// Resolved: terminal, the result has been determined.
	Resolved
)

func (s State) String() string {
	switch s {
	case Dealt:
		return "dealt"
	case PlayerTurn:
		return "player turn"
	case DealerReveal:
		return "dealer reveal"
	case DealerTurn:
		return "dealer turn"
	case Resolved:
		return "resolved"
	default:
		return "?"
	}
}

// Round is one playthrough: one deck, one player hand, one dealer hand
// and an explicit state. A Round is owned by a single session and is
// never shared.
type Round struct {
	state  State
	deck   *Deck
	player Hand
	dealer Hand
}

// NewRound builds a fresh shuffled deck and deals the opening cards,
// interleaved player, dealer, player, dealer.
func NewRound() *Round {
	return newRoundFromDeck(NewShuffledDeck())
}

func newRoundFromDeck(deck *Deck) *Round {
	r := &Round{state: Dealt, deck: deck}
	for i := 0; i < 2; i++ {
		if c, ok := r.deck.Deal(); ok {
			r.player.Add(c)
		}
		if c, ok := r.deck.Deal(); ok {
			r.dealer.Add(c)
		}
	}
	return r
}

// State returns the round's current state.
func (r *Round) State() State {
	return r.state
}

// PlayerHand returns a snapshot of the player's hand.
func (r *Round) PlayerHand() Hand {
	return NewHand(r.player.cards...)
}

// DealerHand returns a snapshot of the dealer's hand.
func (r *Round) DealerHand() Hand {
	return NewHand(r.dealer.cards...)
}

// OpeningCards returns the three cards transmitted at round start: the
// player's two cards and the dealer's visible first card. The dealer's
// second card stays hidden until DealerReveal. Transitions Dealt to
// PlayerTurn.
func (r *Round) OpeningCards() []Card {
	if r.state != Dealt {
		return nil
	}
	r.state = PlayerTurn
	opening := make([]Card, 0, 3)
	opening = append(opening, r.player.cards...)
	if len(r.dealer.cards) > 0 {
		opening = append(opening, r.dealer.cards[0])
	}
	return opening
}

// PlayerHit draws one card into the player's hand. The result is
// ResultLoss if the player busted, which resolves the round on the spot:
// the payload carrying this card is the terminal message of the round.
// ok is false when the deck is exhausted, in which case the round moves
// on to the dealer without a card.
func (r *Round) PlayerHit() (card Card, result Result, ok bool) {
	if r.state != PlayerTurn {
		return Card{}, ResultNotOver, false
	}
	card, ok = r.deck.Deal()
	if !ok {
		r.state = DealerReveal
		return Card{}, ResultNotOver, false
	}
	r.player.Add(card)
	if r.player.Bust() {
		r.state = Resolved
		return card, ResultLoss, true
	}
	return card, ResultNotOver, true
}

// Stand ends the player's turn and moves to DealerReveal.
func (r *Round) Stand() {
	if r.state == PlayerTurn {
		r.state = DealerReveal
	}
}

// HiddenDealerCard returns the dealer's face-down second card and moves
// to DealerTurn. ok is false if the dealer never got a second card,
// which cannot happen under a normal opening deal but must not crash.
func (r *Round) HiddenDealerCard() (Card, bool) {
	if r.state != DealerReveal {
		return Card{}, false
	}
	r.state = DealerTurn
	if len(r.dealer.cards) < 2 {
		return Card{}, false
	}
	return r.dealer.cards[1], true
}

// DealerShouldHit reports whether the dealer must draw another card.
func (r *Round) DealerShouldHit() bool {
	return r.state == DealerTurn && r.dealer.DealerShouldHit()
}

// DealerHit draws one card into the dealer's hand. The result is
// ResultWin if the dealer busted, resolving the round with this card's
// payload as the terminal message, mirroring the player-bust shortcut.
func (r *Round) DealerHit() (card Card, result Result, ok bool) {
	if r.state != DealerTurn {
		return Card{}, ResultNotOver, false
	}
	card, ok = r.deck.Deal()
	if !ok {
		return Card{}, ResultNotOver, false
	}
	r.dealer.Add(card)
	if r.dealer.Bust() {
		r.state = Resolved
		return card, ResultWin, true
	}
	return card, ResultNotOver, true
}

// FinalResult compares totals once the dealer stands and resolves the
// round: player bust loses, dealer bust wins (both normally resolved
// earlier by the bust shortcuts), higher total wins, equal ties.
func (r *Round) FinalResult() Result {
	if r.state != DealerTurn {
		return ResultNotOver
	}
	r.state = Resolved
	p := r.player.Value()
	d := r.dealer.Value()
	switch {
	case p > blackjackMax:
		return ResultLoss
	case d > blackjackMax:
		return ResultWin
	case p > d:
		return ResultWin
	case d > p:
		return ResultLoss
	default:
		return ResultTie
	}
}
