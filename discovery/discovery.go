// Package discovery implements the UDP side of the game: servers
// announce an Offer once per interval to the IPv4 broadcast address,
// clients bind the offers port and wait for the first valid one.
//
// Discovery is best effort. Send failures are swallowed and retried on
// the next tick, and datagrams that are not well-formed offers are
// dropped without comment.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dealer-net/blackjack/protocol"
)

// ServerOffer is one captured announcement: where to connect and the
// advertised display name. It lives only for the client's discovery step.
type ServerOffer struct {
	IP   net.IP
	Port uint16
	Name string
}

func (o ServerOffer) Addr() string {
	return net.JoinHostPort(o.IP.String(), fmt.Sprint(o.Port))
}

// Announcer periodically broadcasts one Offer for the lifetime of the
// server process.
type Announcer struct {
	payload  []byte
	target   string
	interval time.Duration
	logger   *slog.Logger
}

// NewAnnouncer builds an Announcer for a server listening on tcpPort.
func NewAnnouncer(serverName string, tcpPort uint16, opts ...Option) *Announcer {
	c := defaultConfig()
	for _, opt := range opts {
		c = opt(c)
	}
	return &Announcer{
		payload:  protocol.EncodeOffer(protocol.Offer{TCPPort: tcpPort, ServerName: serverName}),
		target:   net.JoinHostPort(c.broadcastAddr, fmt.Sprint(c.port)),
		interval: c.interval,
		logger:   c.logger,
	}
}

// Run broadcasts offers until the context is cancelled. The UDP socket
// is closed on every exit path. Only socket setup can fail; individual
// send errors are logged at debug level and retried next tick.
func (a *Announcer) Run(ctx context.Context) error {
	target, err := net.ResolveUDPAddr("udp4", a.target)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		if _, err := conn.WriteToUDP(a.payload, target); err != nil {
			a.logger.Debug("offer broadcast failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Listener waits on the offers port for a server announcement.
type Listener struct {
	port   uint16
	logger *slog.Logger
}

// NewListener builds a Listener on the well-known offers port.
func NewListener(opts ...Option) *Listener {
	c := defaultConfig()
	for _, opt := range opts {
		c = opt(c)
	}
	return &Listener{port: c.port, logger: c.logger}
}

// WaitForOffer blocks until a valid Offer datagram arrives and returns
// it together with the sender's IP. Datagrams with a bad cookie or type
// are protocol noise and skipped. Reads carry short deadlines so a
// cancelled context is observed within one interval.
func (l *Listener) WaitForOffer(ctx context.Context) (ServerOffer, error) {
	conn, err := listenOffersPort(ctx, l.port)
	if err != nil {
		return ServerOffer{}, err
	}
	defer conn.Close()

	buf := make([]byte, 1024)
	for {
		if err := ctx.Err(); err != nil {
			return ServerOffer{}, err
		}
		if err := conn.SetReadDeadline(time.Now().Add(protocol.SocketTimeout)); err != nil {
			return ServerOffer{}, err
		}
		n, sender, err := conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return ServerOffer{}, err
		}
		offer, err := protocol.DecodeOffer(buf[:n])
		if err != nil {
			l.logger.Debug("discarding datagram", "from", sender, "err", err)
			continue
		}
		return ServerOffer{IP: sender.IP, Port: offer.TCPPort, Name: offer.ServerName}, nil
	}
}

// listenOffersPort binds the well-known offers port with SO_REUSEADDR
// so a second client on the same host, or one restarted while the old
// socket lingers, can still listen for broadcasts.
func listenOffersPort(ctx context.Context, port uint16) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var soErr error
			if err := c.Control(func(fd uintptr) {
				soErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			}); err != nil {
				return err
			}
			return soErr
		},
	}
	conn, err := lc.ListenPacket(ctx, "udp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	return conn.(*net.UDPConn), nil
}
