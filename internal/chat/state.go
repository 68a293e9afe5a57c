package chat

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// UserProfile is an entry of the roster.
type UserProfile struct {
	Name      string
	AvatarURL string
}

// ChatMessage is an entry of the message log.
// ID is assigned on receipt and only serves as a render key.
type ChatMessage struct {
	ID     uuid.UUID
	Sender string
	Body   string
}

// AvatarFunc maps a username to an avatar URL. It must be deterministic.
type AvatarFunc func(username string) string

// DefaultAvatarStyle is the dicebear collection used when none is configured.
const DefaultAvatarStyle = "adventurer-neutral"

// DiceBear returns an AvatarFunc pointing at the dicebear collection style.
func DiceBear(style string) AvatarFunc {
	if style == "" {
		style = DefaultAvatarStyle
	}
	return func(username string) string {
		return fmt.Sprintf("https://avatars.dicebear.com/api/%s/%s.svg", style, url.PathEscape(username))
	}
}

// DefaultAvatar is DiceBear(DefaultAvatarStyle).
var DefaultAvatar = DiceBear(DefaultAvatarStyle)

// State is the roster and message log of one room.
// It is not safe for concurrent use: a single Reducer writes it.
type State struct {
	roster []UserProfile
	log    []ChatMessage
}

// NewState returns an empty State.
func NewState() *State {
	return &State{}
}

// Roster returns the current roster. The slice must not be modified.
func (s *State) Roster() []UserProfile {
	return s.roster
}

// Log returns the message log in receipt order. The slice must not be modified.
func (s *State) Log() []ChatMessage {
	return s.log
}
