package network

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/dealer-net/blackjack/discovery"
	"github.com/dealer-net/blackjack/protocol"
)

func startTestServer(t *testing.T, ctx context.Context) (*Server, chan struct{}) {
	t.Helper()
	srv := &Server{
		Name:   "test table",
		Port:   0,
		Logger: testLogger(),
		DiscoveryOptions: []discovery.Option{
			discovery.WithBroadcastAddr("127.0.0.1"),
			discovery.WithPort(protocol.UDPPortOffers + 100),
		},
	}
	if err := srv.Listen(); err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx)
	}()
	return srv, done
}

func dialMidRound(t *testing.T, port uint16) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Fatal(err)
	}
	if err := protocol.Write(conn, protocol.EncodeRequest(protocol.Request{Rounds: 5, ClientName: "stuck"})); err != nil {
		t.Fatal(err)
	}
	// Consume the opening deal, then go silent so the worker parks in
	// the decision read.
	for i := 0; i < 3; i++ {
		if _, err := protocol.ReadExact(context.Background(), conn, protocol.CardPayloadSize); err != nil {
			t.Fatal(err)
		}
	}
	return conn
}

func TestShutdownUnblocksSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv, done := startTestServer(t, ctx)
	port := srv.TCPPort()

	conns := make([]net.Conn, 0, 3)
	for i := 0; i < 3; i++ {
		conns = append(conns, dialMidRound(t, port))
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(3 * protocol.SocketTimeout):
		t.Fatal("server did not drain within one timeout interval")
	}

	// Every live socket was force-closed to unblock its worker. A
	// deadline timeout here would mean the socket is still open.
	for i, c := range conns {
		c.SetReadDeadline(time.Now().Add(time.Second))
		buf := make([]byte, protocol.CardPayloadSize)
		var err error
		for err == nil {
			_, err = c.Read(buf)
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			t.Fatalf("connection %d still open after shutdown", i)
		}
	}

	// The listening port was released.
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		t.Fatalf("port %d still held after shutdown: %v", port, err)
	}
	ln.Close()
}

func TestServerPlaysOverTCP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv, done := startTestServer(t, ctx)

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", srv.TCPPort()))
	if err != nil {
		t.Fatal(err)
	}
	cs := &ClientSession{
		Conn:   conn,
		Name:   "Team Joker",
		Rounds: 2,
		Prompt: scriptedPrompter{protocol.DecisionStand},
		Render: newRecordRenderer(),
	}
	stats, err := cs.Play(ctx)
	conn.Close()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Played != 2 {
		t.Fatalf("played %d rounds, want 2", stats.Played)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * protocol.SocketTimeout):
		t.Fatal("server did not stop")
	}
}

func TestRegistryCloseAllIdempotent(t *testing.T) {
	r := NewRegistry()
	a, b := net.Pipe()
	defer b.Close()
	if !r.Add(a) {
		t.Fatal("Add on open registry must succeed")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	r.CloseAll()
	r.CloseAll()
	if r.Len() != 0 {
		t.Fatalf("Len() = %d after CloseAll, want 0", r.Len())
	}
	if r.Add(b) {
		t.Fatal("Add after CloseAll must be refused")
	}
	// The tracked connection really was closed.
	if _, err := a.Read(make([]byte, 1)); err == nil {
		t.Fatal("connection should be closed")
	}
}
