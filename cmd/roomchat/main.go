package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/omochice/roomchat/internal/chat"
	"github.com/omochice/roomchat/internal/client"
	"github.com/omochice/roomchat/internal/config"
	"github.com/omochice/roomchat/internal/logging"
	"github.com/omochice/roomchat/internal/transport"
	"github.com/omochice/roomchat/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg   config.Config
	plain bool
)

func newRootCmd() *cobra.Command {
	var overrides config.Config

	cmd := &cobra.Command{
		Use:   "roomchat",
		Short: "Join a realtime chat room over a websocket",
		Long: `roomchat connects to a chat room server, announces the user and shows
who is online and what has been said.

Settings come from the environment (ROOMCHAT_SERVER, ROOMCHAT_USERNAME,
ROOMCHAT_TRANSPORT, ROOMCHAT_AVATAR_STYLE, ROOMCHAT_OUTBOX_SIZE, LOG_LEVEL,
LOG_FILE), optionally from a .env file, and flags override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(cmd, overrides)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: runRoom,
	}

	flags := cmd.Flags()
	flags.StringVar(&overrides.ServerURL, "server", "", "WebSocket server address (default ws://localhost:8080/ws)")
	flags.StringVarP(&overrides.Username, "username", "u", "", "Username for chat")
	flags.StringVar(&overrides.Transport, "transport", "", "WebSocket implementation: nhooyr, gobwas (default nhooyr)")
	flags.StringVar(&overrides.AvatarStyle, "avatar-style", "", "dicebear avatar collection (default adventurer-neutral)")
	flags.IntVar(&overrides.OutboxSize, "outbox", 0, "Outbound frames queued before sends fail (default 16)")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	flags.StringVar(&overrides.LogFile, "log-file", "", "Write logs to this file instead of stderr")
	flags.BoolVar(&plain, "plain", false, "Line mode instead of the full-screen UI")
	return cmd
}

// loadConfig reads the environment and applies the flags set on cmd.
func loadConfig(cmd *cobra.Command, overrides config.Config) (config.Config, error) {
	c, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		c.ServerURL = overrides.ServerURL
	}
	if flags.Changed("username") {
		c.Username = overrides.Username
	}
	if flags.Changed("transport") {
		c.Transport = overrides.Transport
	}
	if flags.Changed("avatar-style") {
		c.AvatarStyle = overrides.AvatarStyle
	}
	if flags.Changed("outbox") {
		c.OutboxSize = overrides.OutboxSize
	}
	if flags.Changed("log-level") {
		c.LogLevel = overrides.LogLevel
	}
	if flags.Changed("log-file") {
		c.LogFile = overrides.LogFile
	}
	return c, c.Validate()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func runRoom(cmd *cobra.Command, args []string) error {
	logFile := cfg.LogFile
	if logFile == "" && !plain {
		logFile = "roomchat.log"
	}
	logger, err := logging.New(cfg.LogLevel, logFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := transport.Dial(ctx, transport.Kind(cfg.Transport), cfg.ServerURL)
	if err != nil {
		return err
	}
	logger.Info("Connected", zap.String("server", cfg.ServerURL), zap.String("user", cfg.Username))

	opts := []client.Option{
		client.WithLogger(logger),
		client.WithAvatar(chat.DiceBear(cfg.AvatarStyle)),
		client.WithOutboxSize(cfg.OutboxSize),
	}
	if plain {
		return runPlain(ctx, conn, logger, opts)
	}
	return runTUI(ctx, conn, logger, opts)
}

func runTUI(ctx context.Context, conn chat.Conn, logger *zap.Logger, opts []client.Option) error {
	feed := tui.NewFeed()
	c := client.New(conn, cfg.Username, append(opts, client.WithChangeHandler(feed.Publish))...)
	defer c.Close()

	// A failed register is logged by the client; the room stays usable.
	_ = c.Activate()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.New(c, feed, c.View()), tea.WithAltScreen(), tea.WithContext(ctx))
	runErr := make(chan error, 1)
	go func() {
		err := c.Run(ctx)
		if err != nil {
			logger.Error("Connection lost", zap.Error(err))
		}
		runErr <- err
		feed.Close()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	cancel()
	return <-runErr
}

func runPlain(ctx context.Context, conn chat.Conn, logger *zap.Logger, opts []client.Option) error {
	printer := func(change chat.Change, view *chat.View) {
		switch change {
		case chat.ChangeRoster:
			names := make([]string, 0, len(view.Roster()))
			for _, u := range view.Roster() {
				names = append(names, u.Name)
			}
			fmt.Printf("*** online: %s ***\n", strings.Join(names, ", "))
		case chat.ChangeLog:
			messages := view.Messages()
			m := messages[len(messages)-1]
			if chat.IsImagePayload(m) {
				fmt.Printf("[%s]: <image %s>\n", m.Sender, m.Body)
				return
			}
			fmt.Printf("[%s]: %s\n", m.Sender, m.Body)
		}
	}
	c := client.New(conn, cfg.Username, append(opts, client.WithChangeHandler(printer))...)
	defer c.Close()

	_ = c.Activate()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	runErr := make(chan error, 1)
	go func() {
		runErr <- c.Run(ctx)
		cancel()
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Warn("Error reading input", zap.Error(err))
		}
	}()

	fmt.Println("Type your messages (or 'quit' to exit):")
	for {
		select {
		case <-ctx.Done():
			return <-runErr
		case text, ok := <-lines:
			if !ok {
				cancel()
				return <-runErr
			}
			if t := strings.TrimSpace(text); t == "quit" || t == "exit" {
				cancel()
				return <-runErr
			}
			_ = c.Submit(text)
		}
	}
}
