package discovery

import (
	"log/slog"
	"time"

	"github.com/dealer-net/blackjack/protocol"
)

type config struct {
	port          uint16
	broadcastAddr string
	interval      time.Duration
	logger        *slog.Logger
}

func defaultConfig() config {
	return config{
		port:          protocol.UDPPortOffers,
		broadcastAddr: "255.255.255.255",
		interval:      protocol.OfferInterval,
		logger:        slog.Default(),
	}
}

// Option configures an Announcer or Listener.
type Option func(config) config

// WithPort overrides the well-known offers port.
func WithPort(port uint16) Option {
	return func(c config) config {
		c.port = port
		return c
	}
}

// WithBroadcastAddr overrides the announcement target address. Tests
// point this at localhost instead of the subnet broadcast.
func WithBroadcastAddr(addr string) Option {
	return func(c config) config {
		c.broadcastAddr = addr
		return c
	}
}

// WithInterval overrides the time between announcements.
func WithInterval(interval time.Duration) Option {
	return func(c config) config {
		c.interval = interval
		return c
	}
}

// WithLogger overrides the logger used for discarded traffic notices.
func WithLogger(logger *slog.Logger) Option {
	return func(c config) config {
		c.logger = logger
		return c
	}
}
