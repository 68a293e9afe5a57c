// Package netws provides a github.com/gobwas/ws transport for the room client,
// speaking websocket directly over a net.Conn.
package netws

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/omochice/roomchat/internal/chat"
)

// Conn wraps net.Conn for WebSocket connections using gobwas/ws
type Conn struct {
	conn   net.Conn
	reader io.Reader
	limit  int64
	mu     sync.Mutex
}

// Dial opens a websocket to url.
func Dial(ctx context.Context, url string) (*Conn, error) {
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return newConn(conn, br), nil
}

// newConn keeps br when the handshake left frames buffered in it.
func newConn(conn net.Conn, br *bufio.Reader) *Conn {
	c := &Conn{conn: conn, reader: conn, limit: chat.MaxFrameSize}
	if br != nil {
		c.reader = br
	}
	return c
}

// Read implements chat.Conn.
// Control frames are answered while waiting for the next data frame.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	_ = c.conn.SetReadDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	data, err := c.readText()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return data, nil
}

// readText returns the next text message, skipping binary ones. Frames and
// whole messages longer than the limit are rejected before being buffered.
func (c *Conn) readText() ([]byte, error) {
	rw := &readWriter{r: c.reader, w: c}
	control := wsutil.ControlFrameHandler(rw, ws.StateClientSide)
	rd := &wsutil.Reader{
		Source:         rw,
		State:          ws.StateClientSide,
		CheckUTF8:      true,
		MaxFrameSize:   c.limit,
		OnIntermediate: control,
	}
	for {
		hdr, err := rd.NextFrame()
		if err != nil {
			return nil, err
		}
		if hdr.OpCode.IsControl() {
			if err := control(hdr, rd); err != nil {
				return nil, err
			}
			continue
		}
		if hdr.OpCode != ws.OpText {
			if err := rd.Discard(); err != nil {
				return nil, err
			}
			continue
		}

		data, err := io.ReadAll(io.LimitReader(rd, c.limit+1))
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > c.limit {
			return nil, fmt.Errorf("message exceeds %d bytes", c.limit)
		}
		return data, nil
	}
}

// Write implements chat.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return wsutil.WriteClientText(c.conn, data)
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	c.mu.Lock()
	_ = wsutil.WriteClientMessage(c.conn, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
	c.mu.Unlock()
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// write serializes control frame replies with Write.
func (c *Conn) write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Write(p)
}

type readWriter struct {
	r io.Reader
	w *Conn
}

func (rw *readWriter) Read(p []byte) (int, error) {
	return rw.r.Read(p)
}

func (rw *readWriter) Write(p []byte) (int, error) {
	return rw.w.write(p)
}
