// Package tui renders a chat room in the terminal with bubbletea.
package tui

import (
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/omochice/roomchat/internal/chat"
)

const (
	sidebarWidth = 28
	headerHeight = 2
	inputHeight  = 3
)

// Submitter queues text typed by the user.
type Submitter interface {
	Submit(text string) error
}

// Feed carries room snapshots from the client read loop to the UI.
// Only the latest snapshot is kept when the UI falls behind.
type Feed struct {
	ch   chan *chat.View
	once sync.Once
}

// NewFeed returns an empty Feed.
func NewFeed() *Feed {
	return &Feed{ch: make(chan *chat.View, 1)}
}

// Publish matches client.ChangeHandler. It never blocks.
func (f *Feed) Publish(_ chat.Change, view *chat.View) {
	for {
		select {
		case f.ch <- view:
			return
		default:
			select {
			case <-f.ch:
			default:
			}
		}
	}
}

// Close ends the feed; a pending wait returns without a snapshot.
// Publish must not be called after Close.
func (f *Feed) Close() {
	f.once.Do(func() {
		close(f.ch)
	})
}

type viewMsg struct {
	view *chat.View
}

// Model is the bubbletea model of one room.
type Model struct {
	submitter Submitter
	feed      *Feed
	view      *chat.View
	input     textinput.Model
	messages  viewport.Model
	width     int
	height    int
}

// New creates a Model showing initial and submitting through s.
func New(s Submitter, feed *Feed, initial *chat.View) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = initial.Self() + ": "
	ti.PromptStyle = promptStyle
	ti.CharLimit = 512
	ti.Focus()

	return Model{
		submitter: s,
		feed:      feed,
		view:      initial,
		input:     ti,
		messages:  viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForView)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refresh()
	case viewMsg:
		m.view = msg.view
		m.refresh()
		return m, m.waitForView
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			// Failures are logged by the client; the input is cleared either way.
			_ = m.submitter.Submit(m.input.Value())
			m.input.Reset()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.messages, cmd = m.messages.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	room := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Width(m.mainWidth()).Render("Chat Room"),
		m.messages.View(),
		inputStyle.Width(m.mainWidth()).Render(m.input.View()),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		renderRoster(m.view, sidebarWidth, m.height),
		room,
	)
}

func (m Model) waitForView() tea.Msg {
	view, ok := <-m.feed.ch
	if !ok {
		return nil
	}
	return viewMsg{view: view}
}

func (m Model) mainWidth() int {
	return max(m.width-sidebarWidth, 0)
}

func (m *Model) resize() {
	m.messages.Width = m.mainWidth()
	m.messages.Height = max(m.height-headerHeight-inputHeight, 0)
	m.input.Width = max(m.mainWidth()-len(m.input.Prompt)-4, 1)
}

func (m *Model) refresh() {
	m.messages.SetContent(renderMessages(m.view, m.mainWidth()))
	m.messages.GotoBottom()
}
