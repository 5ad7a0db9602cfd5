package network

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dealer-net/blackjack/domain/blackjack"
	"github.com/dealer-net/blackjack/protocol"
)

// Session owns one accepted TCP connection: it reads the client's single
// Request, then runs the round state machine the requested number of
// times over the same stream, one fresh Round per iteration. A Session
// shares no game state with its siblings.
type Session struct {
	conn        net.Conn
	id          uuid.UUID
	logger      *slog.Logger
	newRenderer func(playerName string) Renderer

	// Malformed decisions are normalized to a stand rather than
	// rejected, which can mask client bugs; the counter keeps the
	// behavior observable.
	malformed atomic.Uint64
}

// NewSession wraps an accepted connection. newRenderer builds the render
// hook once the client's name is known; pass nil to discard rendering.
func NewSession(conn net.Conn, logger *slog.Logger, newRenderer func(playerName string) Renderer) *Session {
	if newRenderer == nil {
		newRenderer = func(string) Renderer { return NopRenderer{} }
	}
	return &Session{
		conn:        conn,
		id:          uuid.New(),
		logger:      logger,
		newRenderer: newRenderer,
	}
}

// MalformedDecisions returns how many decision frames carried text other
// than "Hittt" or "Stand".
func (s *Session) MalformedDecisions() uint64 {
	return s.malformed.Load()
}

// Run plays the whole session and returns when it is over, for any
// reason. A connection that never produces a valid Request is abandoned
// silently; a mid-game disconnect is logged as such unless the shutdown
// context caused it. The connection is closed on every path.
func (s *Session) Run(ctx context.Context) {
	defer s.conn.Close()
	peer := s.conn.RemoteAddr().String()

	raw, err := protocol.ReadExact(ctx, s.conn, protocol.RequestSize)
	if err != nil {
		return
	}
	req, err := protocol.DecodeRequest(raw)
	if err != nil {
		return
	}
	rounds := int(req.Rounds)
	if rounds <= 0 {
		return
	}

	logger := s.logger.With("peer", peer, "session", s.id, "client", req.ClientName)
	logger.Info("client registered", "rounds", rounds)
	render := s.newRenderer(req.ClientName)

	for r := 1; r <= rounds; r++ {
		if ctx.Err() != nil {
			return
		}
		if err := s.playRound(ctx, render, r, rounds); err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				logger.Info("client disconnected")
			}
			return
		}
	}
	logger.Info("finished; closing")
}

func (s *Session) playRound(ctx context.Context, render Renderer, roundIdx, total int) error {
	round := blackjack.NewRound()

	// Opening deal: the dealer's second card is drawn but not sent.
	for _, card := range round.OpeningCards() {
		if err := s.sendPayload(blackjack.ResultNotOver, &card); err != nil {
			return err
		}
	}
	render.RenderState(roundIdx, total, round.PlayerHand(), round.DealerHand(), true)

	for round.State() == blackjack.PlayerTurn {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := protocol.ReadExact(ctx, s.conn, protocol.DecisionSize)
		if err != nil {
			return err
		}
		text, err := protocol.DecodeDecision(raw)
		if err != nil {
			// Noise on an established stream: drop the frame, keep reading.
			continue
		}
		if text != protocol.DecisionHit && text != protocol.DecisionStand {
			s.malformed.Add(1)
			s.logger.Warn("malformed decision, treating as stand",
				"session", s.id, "decision", text)
			text = protocol.DecisionStand
		}
		if text == protocol.DecisionStand {
			round.Stand()
			break
		}

		card, result, ok := round.PlayerHit()
		if !ok {
			break
		}
		if err := s.sendPayload(result, &card); err != nil {
			return err
		}
		render.RenderState(roundIdx, total, round.PlayerHand(), round.DealerHand(), true)
		if result == blackjack.ResultLoss {
			// Bust: the card payload doubled as the terminal message.
			render.RenderResult(roundIdx, total, result)
			return nil
		}
	}

	if hidden, ok := round.HiddenDealerCard(); ok {
		if err := s.sendPayload(blackjack.ResultNotOver, &hidden); err != nil {
			return err
		}
	}
	render.RenderState(roundIdx, total, round.PlayerHand(), round.DealerHand(), false)

	for round.DealerShouldHit() {
		if err := ctx.Err(); err != nil {
			return err
		}
		card, result, ok := round.DealerHit()
		if !ok {
			break
		}
		if err := s.sendPayload(result, &card); err != nil {
			return err
		}
		render.RenderState(roundIdx, total, round.PlayerHand(), round.DealerHand(), false)
		if result == blackjack.ResultWin {
			render.RenderResult(roundIdx, total, result)
			return nil
		}
	}

	result := round.FinalResult()
	if err := s.sendPayload(result, nil); err != nil {
		return err
	}
	render.RenderState(roundIdx, total, round.PlayerHand(), round.DealerHand(), false)
	render.RenderResult(roundIdx, total, result)
	return nil
}

func (s *Session) sendPayload(result blackjack.Result, card *blackjack.Card) error {
	return protocol.Write(s.conn, protocol.EncodeCardPayload(protocol.PayloadFor(result, card)))
}
