package network

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dealer-net/blackjack/domain/blackjack"
	"github.com/dealer-net/blackjack/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordRenderer captures render events for assertions.
type recordRenderer struct {
	mu sync.Mutex
	// last player-hand value seen per round, and every result
	playerValues map[int]int
	results      map[int]blackjack.Result
	stateCalls   int
}

func newRecordRenderer() *recordRenderer {
	return &recordRenderer{
		playerValues: make(map[int]int),
		results:      make(map[int]blackjack.Result),
	}
}

func (r *recordRenderer) RenderState(roundIdx, _ int, player, _ blackjack.Hand, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playerValues[roundIdx] = player.Value()
	r.stateCalls++
}

func (r *recordRenderer) RenderResult(roundIdx, _ int, result blackjack.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[roundIdx] = result
}

type scriptedPrompter struct {
	decision string
}

func (p scriptedPrompter) Decision() (string, error) {
	return p.decision, nil
}

// runPipedSession plays a full client/server exchange over an in-memory
// pipe and returns both recorders plus the client stats.
func runPipedSession(t *testing.T, rounds int, prompt Prompter) (server, client *recordRenderer, stats Stats, session *Session) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	server = newRecordRenderer()
	client = newRecordRenderer()

	session = NewSession(serverConn, testLogger(), func(string) Renderer { return server })
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Run(context.Background())
	}()

	cs := &ClientSession{
		Conn:   clientConn,
		Name:   "Team Joker",
		Rounds: rounds,
		Prompt: prompt,
		Render: client,
	}
	stats, err := cs.Play(context.Background())
	if err != nil {
		t.Fatalf("client session failed: %v", err)
	}
	clientConn.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server session did not finish")
	}
	return server, client, stats, session
}

func TestSessionStandEveryRound(t *testing.T) {
	const rounds = 3
	server, client, stats, session := runPipedSession(t, rounds, scriptedPrompter{protocol.DecisionStand})

	if stats.Played != rounds {
		t.Fatalf("played %d rounds, want %d", stats.Played, rounds)
	}
	if session.MalformedDecisions() != 0 {
		t.Fatalf("malformed counter = %d, want 0", session.MalformedDecisions())
	}
	for r := 1; r <= rounds; r++ {
		// Both ends must reconstruct the same round from the messages
		// alone: same player total, same outcome.
		if server.playerValues[r] != client.playerValues[r] {
			t.Fatalf("round %d: server sees player total %d, client %d",
				r, server.playerValues[r], client.playerValues[r])
		}
		sres, ok := server.results[r]
		if !ok {
			t.Fatalf("round %d: server produced no result", r)
		}
		if cres := client.results[r]; cres != sres {
			t.Fatalf("round %d: server result %v, client result %v", r, sres, cres)
		}
		switch sres {
		case blackjack.ResultWin, blackjack.ResultLoss, blackjack.ResultTie:
		default:
			t.Fatalf("round %d ended with %v", r, sres)
		}
	}
}

func TestSessionHitUntilBust(t *testing.T) {
	// A player who always hits must eventually bust, so every round is a
	// loss delivered on the bust card itself.
	const rounds = 2
	server, client, stats, _ := runPipedSession(t, rounds, scriptedPrompter{protocol.DecisionHit})

	if stats.Played != rounds || stats.Wins != 0 {
		t.Fatalf("stats = %+v, want %d played and no wins", stats, rounds)
	}
	for r := 1; r <= rounds; r++ {
		if server.results[r] != blackjack.ResultLoss || client.results[r] != blackjack.ResultLoss {
			t.Fatalf("round %d: results %v/%v, want LOSS", r, server.results[r], client.results[r])
		}
		if client.playerValues[r] <= 21 {
			t.Fatalf("round %d: player total %d did not bust", r, client.playerValues[r])
		}
	}
}

func TestSessionNormalizesMalformedDecision(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	session := NewSession(serverConn, testLogger(), nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Run(context.Background())
	}()

	ctx := context.Background()
	if err := protocol.Write(clientConn, protocol.EncodeRequest(protocol.Request{Rounds: 1, ClientName: "x"})); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := protocol.ReadExact(ctx, clientConn, protocol.CardPayloadSize); err != nil {
			t.Fatal(err)
		}
	}
	// Garbled text in a well-formed frame: the server plays it as a
	// stand and keeps score of the anomaly.
	if err := protocol.Write(clientConn, protocol.EncodeDecision("Wrong")); err != nil {
		t.Fatal(err)
	}
	sawResult := false
	for !sawResult {
		raw, err := protocol.ReadExact(ctx, clientConn, protocol.CardPayloadSize)
		if err != nil {
			t.Fatal(err)
		}
		payload, err := protocol.DecodeCardPayload(raw)
		if err != nil {
			t.Fatal(err)
		}
		sawResult = payload.Result != blackjack.ResultNotOver
	}
	clientConn.Close()
	<-done

	if got := session.MalformedDecisions(); got != 1 {
		t.Fatalf("malformed counter = %d, want 1", got)
	}
}

func TestSessionIgnoresDecisionNoise(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	session := NewSession(serverConn, testLogger(), nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Run(context.Background())
	}()

	ctx := context.Background()
	if err := protocol.Write(clientConn, protocol.EncodeRequest(protocol.Request{Rounds: 1, ClientName: "x"})); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := protocol.ReadExact(ctx, clientConn, protocol.CardPayloadSize); err != nil {
			t.Fatal(err)
		}
	}
	// A frame with a corrupt cookie is dropped, not normalized; the
	// following valid stand drives the round to completion.
	noise := protocol.EncodeDecision(protocol.DecisionHit)
	noise[0] ^= 0xFF
	if err := protocol.Write(clientConn, noise); err != nil {
		t.Fatal(err)
	}
	if err := protocol.Write(clientConn, protocol.EncodeDecision(protocol.DecisionStand)); err != nil {
		t.Fatal(err)
	}
	sawResult := false
	for !sawResult {
		raw, err := protocol.ReadExact(ctx, clientConn, protocol.CardPayloadSize)
		if err != nil {
			t.Fatal(err)
		}
		payload, err := protocol.DecodeCardPayload(raw)
		if err != nil {
			t.Fatal(err)
		}
		sawResult = payload.Result != blackjack.ResultNotOver
	}
	clientConn.Close()
	<-done

	if got := session.MalformedDecisions(); got != 0 {
		t.Fatalf("noise must not count as malformed, counter = %d", got)
	}
}

func TestSessionAbandonsInvalidRequest(t *testing.T) {
	cases := []struct {
		name  string
		frame []byte
	}{
		{"bad cookie", func() []byte {
			b := protocol.EncodeRequest(protocol.Request{Rounds: 1, ClientName: "x"})
			b[0] ^= 0xFF
			return b
		}()},
		{"zero rounds", protocol.EncodeRequest(protocol.Request{Rounds: 0, ClientName: "x"})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			serverConn, clientConn := net.Pipe()
			session := NewSession(serverConn, testLogger(), nil)
			done := make(chan struct{})
			go func() {
				defer close(done)
				session.Run(context.Background())
			}()

			if err := protocol.Write(clientConn, tc.frame); err != nil {
				t.Fatal(err)
			}
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("session did not abandon the connection")
			}
			// The server hung up without sending anything.
			clientConn.SetReadDeadline(time.Now().Add(time.Second))
			if _, err := clientConn.Read(make([]byte, 1)); err == nil {
				t.Fatal("expected closed connection")
			}
			clientConn.Close()
		})
	}
}

func TestSessionAbandonsEarlyClose(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	session := NewSession(serverConn, testLogger(), nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Run(context.Background())
	}()

	// Half a request, then gone.
	clientConn.Write(protocol.EncodeRequest(protocol.Request{Rounds: 1, ClientName: "x"})[:10])
	clientConn.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not abandon the connection")
	}
}
