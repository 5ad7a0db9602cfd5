package network

import (
	"context"
	"net"

	"github.com/dealer-net/blackjack/domain/blackjack"
	"github.com/dealer-net/blackjack/protocol"
)

// Prompter supplies the human player's per-turn decision. Decision
// returns protocol.DecisionHit or protocol.DecisionStand; any error
// aborts the session without sending anything.
type Prompter interface {
	Decision() (string, error)
}

// Stats accumulates round outcomes over one client session.
type Stats struct {
	Played int
	Wins   int
}

// WinRate returns the percentage of played rounds won, 0 when nothing
// was played.
func (s Stats) WinRate() float64 {
	if s.Played == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Played) * 100
}

// ClientSession is the client end of the protocol. It holds no game
// authority: it mirrors the server's state machine purely from the
// order and content of received payloads, so the routing here has to
// match the server's message contract exactly.
type ClientSession struct {
	Conn   net.Conn
	Name   string
	Rounds int
	Prompt Prompter
	Render Renderer
}

// Play registers with the server and plays all requested rounds.
// The returned Stats cover the rounds completed even when the session
// ends early on a disconnect or abort.
func (c *ClientSession) Play(ctx context.Context) (Stats, error) {
	var stats Stats
	req := protocol.EncodeRequest(protocol.Request{
		Rounds:     uint8(c.Rounds),
		ClientName: c.Name,
	})
	if err := protocol.Write(c.Conn, req); err != nil {
		return stats, err
	}

	for r := 1; r <= c.Rounds; r++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := c.playRound(ctx, r, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (c *ClientSession) playRound(ctx context.Context, roundIdx int, stats *Stats) error {
	var player, dealer blackjack.Hand

	// Opening: two player cards, then the dealer's visible card.
	for i := 0; i < 3; i++ {
		payload, err := c.readPayload(ctx)
		if err != nil {
			return err
		}
		card, ok := payload.Card()
		if !ok {
			continue
		}
		if i < 2 {
			player.Add(card)
		} else {
			dealer.Add(card)
		}
	}
	c.Render.RenderState(roundIdx, c.Rounds, player, dealer, true)

	for {
		decision, err := c.Prompt.Decision()
		if err != nil {
			return err
		}
		if err := protocol.Write(c.Conn, protocol.EncodeDecision(decision)); err != nil {
			return err
		}
		payload, err := c.readPayload(ctx)
		if err != nil {
			return err
		}

		if decision == protocol.DecisionHit {
			if card, ok := payload.Card(); ok {
				player.Add(card)
			}
			c.Render.RenderState(roundIdx, c.Rounds, player, dealer, true)
			if payload.Result != blackjack.ResultNotOver {
				c.finishRound(roundIdx, payload.Result, stats)
				return nil
			}
			continue
		}

		// Stand: the first payload is the dealer's revealed hidden card,
		// then the dealer draws until the result is decided.
		if card, ok := payload.Card(); ok {
			dealer.Add(card)
		}
		c.Render.RenderState(roundIdx, c.Rounds, player, dealer, false)
		for payload.Result == blackjack.ResultNotOver {
			if err := ctx.Err(); err != nil {
				return err
			}
			payload, err = c.readPayload(ctx)
			if err != nil {
				return err
			}
			if card, ok := payload.Card(); ok {
				dealer.Add(card)
				c.Render.RenderState(roundIdx, c.Rounds, player, dealer, false)
			}
		}
		c.finishRound(roundIdx, payload.Result, stats)
		return nil
	}
}

func (c *ClientSession) finishRound(roundIdx int, result blackjack.Result, stats *Stats) {
	stats.Played++
	if result == blackjack.ResultWin {
		stats.Wins++
	}
	c.Render.RenderResult(roundIdx, c.Rounds, result)
}

// readPayload reads server payloads until a well-formed one arrives,
// discarding protocol noise.
func (c *ClientSession) readPayload(ctx context.Context) (protocol.CardPayload, error) {
	for {
		raw, err := protocol.ReadExact(ctx, c.Conn, protocol.CardPayloadSize)
		if err != nil {
			return protocol.CardPayload{}, err
		}
		payload, err := protocol.DecodeCardPayload(raw)
		if err != nil {
			continue
		}
		return payload, nil
	}
}
