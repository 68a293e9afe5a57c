package netws_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/omochice/roomchat/internal/chat"
	"github.com/omochice/roomchat/internal/transport/netws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ chat.Conn = (*netws.Conn)(nil)

type frame struct {
	op   ws.OpCode
	data []byte
}

// newServer upgrades every request, sends greeting (if any) and reports
// each frame the client sends until the client goes away.
func newServer(t *testing.T, greeting string, received chan<- frame) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			t.Errorf("failed to upgrade: %v", err)
			return
		}
		defer conn.Close()

		if greeting != "" {
			if err := wsutil.WriteServerText(conn, []byte(greeting)); err != nil {
				t.Errorf("failed to write: %v", err)
				return
			}
		}
		for {
			data, op, err := wsutil.ReadClientData(conn)
			if err != nil {
				return
			}
			if received != nil {
				received <- frame{op: op, data: data}
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// newFrameServer upgrades every request, hands the connection to send and
// then drains client frames. Write errors are ignored since the client may
// drop the connection mid-frame.
func newFrameServer(t *testing.T, send func(conn io.Writer)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		defer conn.Close()

		send(conn)
		for {
			if _, _, err := wsutil.ReadClientData(conn); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestConn_Read(t *testing.T) {
	server := newServer(t, `{"messageType":"users","dataArray":["alice"]}`, nil)

	conn, err := netws.Dial(context.Background(), wsURL(server))
	require.NoError(t, err)
	defer conn.Close()

	data, err := conn.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"messageType":"users","dataArray":["alice"]}`, string(data))
}

func TestConn_Read_SizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"message at the limit", chat.MaxFrameSize, false},
		{"message over the limit", chat.MaxFrameSize + 1, true},
		{"message far over the limit", 4 * chat.MaxFrameSize, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte(strings.Repeat("a", tt.size))
			server := newFrameServer(t, func(conn io.Writer) {
				_ = wsutil.WriteServerText(conn, payload)
			})

			conn, err := netws.Dial(context.Background(), wsURL(server))
			require.NoError(t, err)
			defer conn.Close()

			data, err := conn.Read(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, data)
				return
			}
			require.NoError(t, err)
			assert.Len(t, data, tt.size)
		})
	}
}

func TestConn_Read_FragmentedOverLimit(t *testing.T) {
	half := []byte(strings.Repeat("a", chat.MaxFrameSize/2+1))
	server := newFrameServer(t, func(conn io.Writer) {
		_ = ws.WriteFrame(conn, ws.NewFrame(ws.OpText, false, half))
		_ = ws.WriteFrame(conn, ws.NewFrame(ws.OpContinuation, true, half))
	})

	conn, err := netws.Dial(context.Background(), wsURL(server))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Read(context.Background())
	assert.ErrorContains(t, err, "exceeds")
}

func TestConn_Read_SkipsBinary(t *testing.T) {
	server := newFrameServer(t, func(conn io.Writer) {
		_ = wsutil.WriteServerBinary(conn, []byte{0x01, 0x02})
		_ = wsutil.WriteServerText(conn, []byte("hello"))
	})

	conn, err := netws.Dial(context.Background(), wsURL(server))
	require.NoError(t, err)
	defer conn.Close()

	data, err := conn.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestConn_Write(t *testing.T) {
	received := make(chan frame, 1)
	server := newServer(t, "", received)

	conn, err := netws.Dial(context.Background(), wsURL(server))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Write(context.Background(), []byte(`{"messageType":"message","data":"hi"}`)))

	select {
	case got := <-received:
		assert.Equal(t, ws.OpText, got.op)
		assert.Equal(t, `{"messageType":"message","data":"hi"}`, string(got.data))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for frame")
	}
}

func TestConn_Read_CanceledContext(t *testing.T) {
	server := newServer(t, "", nil)

	conn, err := netws.Dial(context.Background(), wsURL(server))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = conn.Read(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConn_RemoteAddr(t *testing.T) {
	server := newServer(t, "", nil)

	conn, err := netws.Dial(context.Background(), wsURL(server))
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, strings.TrimPrefix(server.URL, "http://"), conn.RemoteAddr())
}

func TestConn_Close(t *testing.T) {
	server := newServer(t, "", nil)

	conn, err := netws.Dial(context.Background(), wsURL(server))
	require.NoError(t, err)

	assert.NoError(t, conn.Close())
	_, err = conn.Read(context.Background())
	assert.Error(t, err)
}

func TestDial_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := netws.Dial(ctx, "ws://127.0.0.1:1/ws")
	assert.Error(t, err)
}
