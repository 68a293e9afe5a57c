package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/omochice/roomchat/internal/chat"
)

var (
	sidebarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#DBEAFE")).
			Padding(0, 1)
	sidebarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#1E40AF")).
				MarginBottom(1)
	userNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#374151"))
	avatarStyle = lipgloss.NewStyle().
			Faint(true)
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1D4ED8")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#BFDBFE"))
	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color("#DBEAFE"))
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2563EB"))
	selfBubble = lipgloss.NewStyle().
			Background(lipgloss.Color("#BFDBFE")).
			Padding(0, 1)
	otherBubble = lipgloss.NewStyle().
			Background(lipgloss.Color("#F3F4F6")).
			Padding(0, 1)
	senderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1E40AF"))
	imageStyle = lipgloss.NewStyle().
			Underline(true).
			Foreground(lipgloss.Color("#2563EB"))
)

const (
	avatarMark   = "◉ "
	noAvatarMark = "  "
	imageMark    = "[gif] "
)

func renderRoster(v *chat.View, width, height int) string {
	var b strings.Builder
	b.WriteString(sidebarTitleStyle.Render("Active Users"))
	for _, u := range v.Roster() {
		b.WriteString("\n")
		b.WriteString(userNameStyle.Render(avatarMark + u.Name))
		b.WriteString("\n")
		b.WriteString(avatarStyle.Render("  " + u.AvatarURL))
	}
	style := sidebarStyle.Width(width)
	if height > 0 {
		style = style.Height(height)
	}
	return style.Render(b.String())
}

func renderMessages(v *chat.View, width int) string {
	messages := v.Messages()
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, renderMessage(v, m, width))
	}
	return strings.Join(lines, "\n")
}

// renderMessage lays out one bubble: own messages on the right, others on
// the left behind the sender's avatar mark when the sender is still online.
func renderMessage(v *chat.View, m chat.ChatMessage, width int) string {
	body := m.Body
	if chat.IsImagePayload(m) {
		body = imageStyle.Render(imageMark + m.Body)
	}
	content := lipgloss.JoinVertical(lipgloss.Left, senderStyle.Render(m.Sender), body)

	if v.IsSelf(m) {
		bubble := bubbleStyle(selfBubble, width).Render(content)
		if width <= 0 {
			return bubble
		}
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	}

	mark := noAvatarMark
	if _, ok := v.AvatarFor(m.Sender); ok {
		mark = avatarMark
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, mark, bubbleStyle(otherBubble, width).Render(content))
}

// bubbleStyle caps a bubble at 60% of the message pane once its width is known.
func bubbleStyle(base lipgloss.Style, width int) lipgloss.Style {
	if limit := width * 6 / 10; limit > 0 {
		return base.MaxWidth(limit)
	}
	return base
}
