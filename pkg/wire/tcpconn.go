package wire

import (
	"bufio"
	"net"
)

// protocolName is a fixed label carried over from the system this
// implements and is not a language marker (§6). It is exposed through
// ProtocolName only; Dial and NewTCPConn do not send it during connection
// setup.
const protocolName = "rust-websocket"

// TCPConn is the concrete Conn used by both client and server: a buffered
// net.Conn speaking the length-prefixed frame format.
type TCPConn struct {
	nc net.Conn
	r  *bufio.Reader
	w  *bufio.Writer
}

// NewTCPConn wraps an established net.Conn.
func NewTCPConn(nc net.Conn) *TCPConn {
	return &TCPConn{nc: nc, r: bufio.NewReader(nc), w: bufio.NewWriter(nc)}
}

// Dial connects to addr and wraps the resulting connection.
func Dial(addr string) (*TCPConn, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewTCPConn(nc), nil
}

// ReadFrame reads one frame, blocking until a full frame or a read error.
func (c *TCPConn) ReadFrame() ([]byte, error) {
	return ReadFrame(c.r)
}

// WriteFrame writes and flushes one frame.
func (c *TCPConn) WriteFrame(payload []byte) error {
	if err := WriteFrame(c.w, payload); err != nil {
		return err
	}
	return c.w.Flush()
}

// Close closes the underlying connection.
func (c *TCPConn) Close() error {
	return c.nc.Close()
}

// ProtocolName returns the fixed protocol label.
func ProtocolName() string {
	return protocolName
}
