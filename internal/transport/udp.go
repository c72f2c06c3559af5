// Package transport carries command datagrams to fans over UDP.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/blauberg/internal/logging"
)

const (
	// DefaultTimeout bounds the wait for a response datagram.
	DefaultTimeout = 1 * time.Second

	// DefaultBufferSize is the receive buffer; fan responses are far smaller.
	DefaultBufferSize = 4096
)

// Transport sends one command and returns the response datagram. A missing
// response is an empty slice, not an error.
type Transport interface {
	Exchange(ctx context.Context, addr string, payload []byte) ([]byte, error)
}

// UDP opens a fresh socket for every exchange and closes it afterwards.
type UDP struct {
	Timeout    time.Duration
	BufferSize int
}

var _ Transport = (*UDP)(nil)

// NewUDP creates a UDP transport with the given response timeout.
func NewUDP(timeout time.Duration) *UDP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &UDP{Timeout: timeout, BufferSize: DefaultBufferSize}
}

// Exchange connects to addr, sends payload and waits for one datagram. When
// the timeout (or an earlier ctx deadline) expires it returns an empty
// response and a nil error.
func (u *UDP) Exchange(ctx context.Context, addr string, payload []byte) ([]byte, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(u.deadline(ctx)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	logging.LogExchange(addr, "sent", payload)
	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("send to %s: %w", addr, err)
	}

	buf := make([]byte, u.bufferSize())
	n, err := conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			logging.Warn("response timeout",
				zap.String("remote_addr", addr),
				zap.Duration("timeout", u.Timeout),
			)
			return []byte{}, nil
		}
		return nil, fmt.Errorf("receive from %s: %w", addr, err)
	}

	logging.LogExchange(addr, "received", buf[:n])
	return buf[:n], nil
}

// Broadcast sends payload to addr from an unconnected socket and passes
// every datagram received before the timeout to handle. Reaching the
// timeout ends the scan normally.
func (u *UDP) Broadcast(ctx context.Context, addr string, payload []byte, handle func(from *net.UDPAddr, data []byte)) error {
	dst, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", addr, err)
	}

	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(u.deadline(ctx)); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	logging.LogExchange(addr, "broadcast", payload)
	if _, err := conn.WriteTo(payload, dst); err != nil {
		return fmt.Errorf("send to %s: %w", addr, err)
	}

	buf := make([]byte, u.bufferSize())
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if isTimeout(err) {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}

		udpFrom, ok := from.(*net.UDPAddr)
		if !ok {
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		logging.LogExchange(udpFrom.String(), "received", data)
		handle(udpFrom, data)
	}
}

func (u *UDP) deadline(ctx context.Context) time.Time {
	timeout := u.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	return deadline
}

func (u *UDP) bufferSize() int {
	if u.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return u.BufferSize
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
