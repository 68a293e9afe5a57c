// Package ws provides the nhooyr.io/websocket transport for the room client.
package ws

import (
	"context"
	"fmt"

	"github.com/omochice/roomchat/internal/chat"
	"nhooyr.io/websocket"
)

// Conn adapts nhooyr.io/websocket to chat.Conn interface.
type Conn struct {
	conn       *websocket.Conn
	remoteAddr string
}

// Dial opens a websocket to url.
func Dial(ctx context.Context, url string) (*Conn, error) {
	conn, resp, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	addr := url
	if resp != nil && resp.Request != nil {
		addr = resp.Request.URL.Host
	}
	return NewConn(conn, addr), nil
}

// NewConn wraps a websocket.Conn reached at addr and caps its inbound
// messages at chat.MaxFrameSize.
func NewConn(conn *websocket.Conn, addr string) *Conn {
	conn.SetReadLimit(chat.MaxFrameSize)
	return &Conn{conn: conn, remoteAddr: addr}
}

// Read implements chat.Conn.
// Reads the next data message from the WebSocket connection.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

// Write implements chat.Conn.
// Writes a text message to the WebSocket connection.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}
