package chat

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// View is an immutable snapshot of a room as seen by the local user.
// Renderers read it; nothing writes to it after Snapshot returns.
type View struct {
	self     string
	roster   []UserProfile
	messages []ChatMessage
}

// Snapshot copies the state into a View for the local user self.
func Snapshot(self string, s *State) *View {
	return &View{
		self:     self,
		roster:   slices.Clone(s.roster),
		messages: slices.Clone(s.log),
	}
}

// Self returns the local username.
func (v *View) Self() string {
	return v.self
}

// Roster returns a copy of the roster in server order.
func (v *View) Roster() []UserProfile {
	return slices.Clone(v.roster)
}

// Messages returns a copy of the log in receipt order.
func (v *View) Messages() []ChatMessage {
	return slices.Clone(v.messages)
}

// IsSelf reports whether m was sent by the local user. Comparison is exact.
func (v *View) IsSelf(m ChatMessage) bool {
	return m.Sender == v.self
}

// AvatarFor returns the avatar of sender if sender is in the roster.
func (v *View) AvatarFor(sender string) (string, bool) {
	u, ok := lo.Find(v.roster, func(u UserProfile) bool {
		return u.Name == sender
	})
	if !ok {
		return "", false
	}
	return u.AvatarURL, true
}

// IsImagePayload reports whether the body of m references a gif.
func IsImagePayload(m ChatMessage) bool {
	return strings.HasSuffix(m.Body, ".gif")
}
