// Package chat holds the client-side state machine of a chat room: the
// roster and message log, the reducer that folds inbound envelopes into them,
// the framing of outbound envelopes and the read-only view handed to renderers.
package chat

import (
	"context"
	"errors"
)

var (
	// ErrSendFailed wraps every failure to hand an outbound frame to the transport.
	ErrSendFailed = errors.New("send failed")
	// ErrNotConnected is returned by transports used before dialing or after closing.
	ErrNotConnected = errors.New("not connected")
)

// MaxFrameSize is the largest inbound message, in bytes, a Conn delivers.
// Larger messages fail the Read.
const MaxFrameSize = 1 << 20

// Conn abstracts the duplex text-frame connection to the room server.
// Implementations live under internal/transport.
type Conn interface {
	// Read blocks until the next text frame arrives.
	// Returns io.EOF when the connection is closed.
	Read(ctx context.Context) ([]byte, error)

	// Write sends a single text frame.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}
