// Package clamd is a thin client for the ClamAV daemon's Unix socket
// protocol. It covers the three operations the tap needs: PING, VERSION,
// and INSTREAM body scanning. Every call opens its own short-lived
// connection; clamd closes the socket after each session anyway, so
// there is nothing to pool.
package clamd

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultSocketPath is where Debian/Ubuntu clamav-daemon installs listen.
const DefaultSocketPath = "/var/run/clamav/clamd.ctl"

// pongReply is the fixed acknowledgment clamd returns for PING.
const pongReply = "PONG"

// instream chunks are length-prefixed; clamd rejects oversized chunks,
// so bodies are split well below any sane StreamMaxLength.
const chunkSize = 8192

// Client talks to a clamd daemon over a Unix socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the daemon at socketPath. A zero timeout
// means 30 seconds per call.
func NewClient(socketPath string, timeout time.Duration) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{socketPath: socketPath, timeout: timeout}
}

// SocketPath returns the configured daemon socket path.
func (c *Client) SocketPath() string { return c.socketPath }

// Ping checks daemon liveness. Success means clamd answered with the
// literal PONG token; any other reply is reported as an error.
func (c *Client) Ping(ctx context.Context) (string, error) {
	reply, err := c.command(ctx, "PING")
	if err != nil {
		return "", err
	}
	if reply != pongReply {
		return reply, fmt.Errorf("clamd: unexpected ping reply %q", reply)
	}
	return reply, nil
}

// Version returns the daemon's human-readable version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	return c.command(ctx, "VERSION")
}

// ScanStream submits raw bytes via INSTREAM and returns the daemon's raw
// reply line. Classification of the reply is the parser's job, not the
// client's.
func (c *Client) ScanStream(ctx context.Context, body []byte) (string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return "", fmt.Errorf("clamd: sending INSTREAM command: %w", err)
	}

	var size [4]byte
	for len(body) > 0 {
		n := len(body)
		if n > chunkSize {
			n = chunkSize
		}
		binary.BigEndian.PutUint32(size[:], uint32(n))
		if _, err := conn.Write(size[:]); err != nil {
			return "", fmt.Errorf("clamd: sending chunk header: %w", err)
		}
		if _, err := conn.Write(body[:n]); err != nil {
			return "", fmt.Errorf("clamd: sending chunk: %w", err)
		}
		body = body[n:]
	}

	// Zero-length chunk terminates the stream.
	binary.BigEndian.PutUint32(size[:], 0)
	if _, err := conn.Write(size[:]); err != nil {
		return "", fmt.Errorf("clamd: terminating stream: %w", err)
	}

	return readReply(conn)
}

// command runs a single null-delimited command and returns the reply.
func (c *Client) command(ctx context.Context, cmd string) (string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("z" + cmd + "\x00")); err != nil {
		return "", fmt.Errorf("clamd: sending %s: %w", cmd, err)
	}
	return readReply(conn)
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("clamd: connecting to %s: %w", c.socketPath, err)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, fmt.Errorf("clamd: setting deadline: %w", err)
	}
	return conn, nil
}

// readReply reads one null-terminated reply and strips the delimiter.
func readReply(conn net.Conn) (string, error) {
	reply, err := bufio.NewReader(conn).ReadString('\x00')
	if err != nil && reply == "" {
		return "", fmt.Errorf("clamd: reading reply: %w", err)
	}
	return strings.TrimRight(reply, "\x00\n"), nil
}
