// Package client drives one chat room session over a chat.Conn: it announces
// the local user, feeds inbound frames to the reducer and queues outbound
// messages without blocking the caller.
package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/omochice/roomchat/internal/chat"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultOutboxSize is the number of outbound frames queued before sends fail.
const DefaultOutboxSize = 16

// ChangeHandler is called from the read loop after each state change.
type ChangeHandler func(change chat.Change, view *chat.View)

// ErrorHandler is called for every decode or send failure.
type ErrorHandler func(err error)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAvatar sets the avatar generator used for roster entries.
func WithAvatar(avatar chat.AvatarFunc) Option {
	return func(c *Client) {
		c.avatar = avatar
	}
}

// WithOutboxSize sets the capacity of the outbound queue.
func WithOutboxSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.outboxSize = n
		}
	}
}

// WithChangeHandler registers h to be told about state changes.
func WithChangeHandler(h ChangeHandler) Option {
	return func(c *Client) {
		c.onChange = h
	}
}

// WithErrorHandler registers h to observe dropped frames and failed sends.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *Client) {
		c.onError = h
	}
}

// Client represents a chat room client bound to one connection and one user.
type Client struct {
	conn       chat.Conn
	username   string
	logger     *zap.Logger
	avatar     chat.AvatarFunc
	outboxSize int
	onChange   ChangeHandler
	onError    ErrorHandler

	reducer   *chat.Reducer
	outbox    chan []byte
	done      chan struct{}
	doneOnce  sync.Once
	activated atomic.Bool
	view      atomic.Pointer[chat.View]
}

// New creates a Client for username speaking over conn.
func New(conn chat.Conn, username string, opts ...Option) *Client {
	c := &Client{
		conn:       conn,
		username:   username,
		logger:     zap.NewNop(),
		avatar:     chat.DefaultAvatar,
		outboxSize: DefaultOutboxSize,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("user", username), zap.String("remote", conn.RemoteAddr()))
	c.reducer = chat.NewReducer(chat.NewState(), c.avatar, c.logger)
	c.outbox = make(chan []byte, c.outboxSize)
	c.view.Store(chat.Snapshot(username, c.reducer.State()))
	return c
}

// Username returns the local username.
func (c *Client) Username() string {
	return c.username
}

// View returns the latest snapshot of the room. Safe to call from any goroutine.
func (c *Client) View() *chat.View {
	return c.view.Load()
}

// Activate queues the register envelope for the local user.
// Only the first call sends; later calls return nil.
func (c *Client) Activate() error {
	if !c.activated.CompareAndSwap(false, true) {
		return nil
	}
	frame, err := chat.RegisterFrame(c.username)
	if err != nil {
		return c.sendFailed(err)
	}
	if err := c.enqueue(frame); err != nil {
		return c.sendFailed(err)
	}
	c.logger.Debug("register queued")
	return nil
}

// Submit queues text typed by the user as a chat message.
// Blank input is ignored. Delivery is not confirmed.
func (c *Client) Submit(text string) error {
	frame, ok, err := chat.ComposeFrame(text)
	if err != nil {
		return c.sendFailed(err)
	}
	if !ok {
		return nil
	}
	if err := c.enqueue(frame); err != nil {
		return c.sendFailed(err)
	}
	return nil
}

// Run reads and writes frames until ctx is canceled or the connection fails.
// It returns nil when ctx is canceled. Run must be called at most once; once
// it returns, Activate and Submit fail with chat.ErrSendFailed.
func (c *Client) Run(ctx context.Context) error {
	defer c.stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.readLoop(ctx, gctx)
	})
	g.Go(func() error {
		return c.writeLoop(gctx)
	})
	return g.Wait()
}

// Close stops the client and closes the connection.
func (c *Client) Close() error {
	c.stop()
	return c.conn.Close()
}

func (c *Client) stop() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) enqueue(frame []byte) error {
	select {
	case <-c.done:
		return chat.ErrNotConnected
	default:
	}

	select {
	case c.outbox <- frame:
		return nil
	default:
		return fmt.Errorf("outbox full (%d frames)", c.outboxSize)
	}
}

func (c *Client) readLoop(parent, ctx context.Context) error {
	for {
		frame, err := c.conn.Read(ctx)
		if err != nil {
			if parent.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to read frame: %w", err)
		}

		change, err := c.reducer.HandleFrame(frame)
		if err != nil {
			c.observe(err)
			continue
		}
		if change == chat.ChangeNone {
			continue
		}

		view := chat.Snapshot(c.username, c.reducer.State())
		c.view.Store(view)
		if c.onChange != nil {
			c.onChange(change, view)
		}
	}
}

func (c *Client) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-c.outbox:
			if err := c.conn.Write(ctx, frame); err != nil {
				_ = c.sendFailed(err)
			}
		}
	}
}

func (c *Client) sendFailed(err error) error {
	err = fmt.Errorf("%w: %w", chat.ErrSendFailed, err)
	c.logger.Warn("outbound frame not sent", zap.Error(err))
	c.observe(err)
	return err
}

func (c *Client) observe(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}
