package network

import (
	"net"
	"sync"
)

// Registry tracks live client connections so a shutdown can close every
// socket and unblock workers stuck in reads. Critical sections are
// insert/remove only; no game state lives here.
type Registry struct {
	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[net.Conn]struct{})}
}

// Add registers a connection. It returns false after CloseAll, in which
// case the caller must close the connection itself instead of serving it.
func (r *Registry) Add(conn net.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.conns[conn] = struct{}{}
	return true
}

// Remove forgets a connection. Safe to call for connections already cut
// off by CloseAll.
func (r *Registry) Remove(conn net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, conn)
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// CloseAll closes every live connection and rejects future Adds.
// Idempotent; repeated calls are no-ops.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for conn := range r.conns {
		conn.Close()
	}
	clear(r.conns)
}
