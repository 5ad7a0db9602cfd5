package network

import "github.com/dealer-net/blackjack/domain/blackjack"

// Renderer receives every state-changing event of a round. The core
// never formats text itself; cmd wires in a pterm implementation.
type Renderer interface {
	// RenderState is called after every dealt card with snapshots of
	// both hands. hideDealer is true while the dealer's second card must
	// stay masked.
	RenderState(roundIdx, totalRounds int, player, dealer blackjack.Hand, hideDealer bool)

	// RenderResult is called once per round with the final outcome.
	RenderResult(roundIdx, totalRounds int, result blackjack.Result)
}

// NopRenderer discards all events.
type NopRenderer struct{}

func (NopRenderer) RenderState(int, int, blackjack.Hand, blackjack.Hand, bool) {}

func (NopRenderer) RenderResult(int, int, blackjack.Result) {}
