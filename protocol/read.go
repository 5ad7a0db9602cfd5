package protocol

import (
	"context"
	"net"
	"time"
)

// ReadExact reads exactly n bytes from a stream. Each underlying read
// carries a SocketTimeout deadline so a cancelled context unblocks the
// caller within one interval instead of hanging on a silent peer.
//
// Any error other than a deadline, including a connection closed before
// n bytes arrived, is a hard failure: the peer is gone.
func ReadExact(ctx context.Context, conn net.Conn, n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := conn.SetReadDeadline(time.Now().Add(SocketTimeout)); err != nil {
			return nil, err
		}
		k, err := conn.Read(buf[read:])
		read += k
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return nil, err
		}
	}
	return buf, nil
}

// Write sends a full frame with a SocketTimeout write deadline.
func Write(conn net.Conn, frame []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(SocketTimeout)); err != nil {
		return err
	}
	_, err := conn.Write(frame)
	return err
}
