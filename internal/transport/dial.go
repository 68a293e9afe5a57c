// Package transport selects the websocket implementation backing chat.Conn.
package transport

import (
	"context"
	"fmt"

	"github.com/omochice/roomchat/internal/chat"
	"github.com/omochice/roomchat/internal/transport/netws"
	"github.com/omochice/roomchat/internal/transport/ws"
)

// Kind names a websocket implementation.
type Kind string

const (
	// KindNhooyr dials with nhooyr.io/websocket.
	KindNhooyr Kind = "nhooyr"
	// KindGobwas dials with github.com/gobwas/ws.
	KindGobwas Kind = "gobwas"
)

// Dial connects to the room server at url using the implementation kind.
func Dial(ctx context.Context, kind Kind, url string) (chat.Conn, error) {
	var (
		conn chat.Conn
		err  error
	)
	switch kind {
	case KindNhooyr, "":
		conn, err = ws.Dial(ctx, url)
	case KindGobwas:
		conn, err = netws.Dial(ctx, url)
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}
