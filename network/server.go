package network

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/dealer-net/blackjack/discovery"
	"github.com/dealer-net/blackjack/protocol"
)

// Server accepts game connections and serves each one on its own
// goroutine while a background Announcer advertises the listening port.
// Configure the public fields before calling Listen.
type Server struct {
	// Name is the display name carried in broadcast offers.
	Name string
	// Port is the TCP port to bind, 0 for an ephemeral one.
	Port uint16
	// Logger receives session lifecycle events. nil means slog.Default.
	Logger *slog.Logger
	// NewRenderer builds the per-session render hook once the client's
	// name is known. nil discards rendering.
	NewRenderer func(playerName string) Renderer
	// DiscoveryOptions tune the Announcer; tests redirect the broadcast.
	DiscoveryOptions []discovery.Option

	ln       *net.TCPListener
	registry *Registry
	wg       sync.WaitGroup
}

// Listen binds the TCP port. A bind failure is fatal for the operator:
// it is returned as-is with no retry.
func (s *Server) Listen() error {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	addr, err := net.ResolveTCPAddr("tcp4", fmt.Sprintf(":%d", s.Port))
	if err != nil {
		return err
	}
	ln, err := net.ListenTCP("tcp4", addr)
	if err != nil {
		return fmt.Errorf("bind tcp port %d: %w", s.Port, err)
	}
	s.ln = ln
	s.registry = NewRegistry()
	return nil
}

// TCPPort returns the bound port. Valid only after Listen.
func (s *Server) TCPPort() uint16 {
	return uint16(s.ln.Addr().(*net.TCPAddr).Port)
}

// Serve runs the announcer and the accept loop until the context is
// cancelled, then closes the listener and every live connection and
// waits for all session workers to drain. Cancellation is the normal
// termination path and is not reported as an error.
func (s *Server) Serve(ctx context.Context) error {
	// Any exit from the accept loop must also stop the announcer and the
	// session workers, not only an operator-driven cancellation.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	announcer := discovery.NewAnnouncer(s.Name, s.TCPPort(), s.DiscoveryOptions...)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := announcer.Run(ctx); err != nil {
			s.Logger.Error("offer announcer stopped", "err", err)
		}
	}()
	s.Logger.Info("accepting connections",
		"udp_offers_port", protocol.UDPPortOffers, "tcp_port", s.TCPPort())

	for ctx.Err() == nil {
		if err := s.ln.SetDeadline(time.Now().Add(protocol.SocketTimeout)); err != nil {
			break
		}
		conn, err := s.ln.Accept()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			// Listener closed underneath us during shutdown.
			break
		}
		if !s.registry.Add(conn) {
			conn.Close()
			continue
		}
		session := NewSession(conn, s.Logger, s.NewRenderer)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.registry.Remove(conn)
			session.Run(ctx)
		}()
	}

	cancel()
	s.ln.Close()
	s.registry.CloseAll()
	s.wg.Wait()
	return nil
}
