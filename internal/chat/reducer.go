package chat

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/omochice/roomchat/pkg/protocol"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Change reports which part of the State an envelope modified.
type Change int

const (
	ChangeNone Change = iota
	ChangeRoster
	ChangeLog
)

// String returns the string representation of Change
func (c Change) String() string {
	switch c {
	case ChangeNone:
		return "NONE"
	case ChangeRoster:
		return "ROSTER"
	case ChangeLog:
		return "LOG"
	default:
		return "UNKNOWN"
	}
}

// Reducer folds inbound envelopes into a State, one at a time.
// It must not be invoked concurrently with itself.
type Reducer struct {
	state  *State
	avatar AvatarFunc
	logger *zap.Logger
}

// NewReducer creates a Reducer writing into state.
// A nil avatar falls back to DefaultAvatar and a nil logger discards output.
func NewReducer(state *State, avatar AvatarFunc, logger *zap.Logger) *Reducer {
	if avatar == nil {
		avatar = DefaultAvatar
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reducer{state: state, avatar: avatar, logger: logger}
}

// State returns the state the reducer writes into.
func (r *Reducer) State() *State {
	return r.state
}

// HandleFrame decodes a raw frame and applies it.
// A frame that fails to decode leaves the state untouched.
func (r *Reducer) HandleFrame(frame []byte) (Change, error) {
	var env protocol.Envelope
	if err := env.Decode(frame); err != nil {
		r.logger.Warn("dropping inbound frame", zap.Error(err), zap.Int("bytes", len(frame)))
		return ChangeNone, err
	}
	return r.Apply(env)
}

// Apply folds a decoded envelope into the state.
func (r *Reducer) Apply(env protocol.Envelope) (Change, error) {
	switch env.Kind {
	case protocol.KindUsers:
		r.state.roster = lo.Map(env.PayloadList, func(name string, _ int) UserProfile {
			return UserProfile{Name: name, AvatarURL: r.avatar(name)}
		})
		r.logger.Debug("roster replaced", zap.Int("users", len(r.state.roster)))
		return ChangeRoster, nil
	case protocol.KindMessage:
		p, err := env.ChatPayload()
		if err != nil {
			r.logger.Warn("dropping chat message", zap.Error(err))
			return ChangeNone, err
		}
		r.state.log = append(r.state.log, ChatMessage{
			ID:     uuid.New(),
			Sender: p.From,
			Body:   p.Message,
		})
		r.logger.Debug("message appended", zap.String("from", p.From), zap.Int("log", len(r.state.log)))
		return ChangeLog, nil
	case protocol.KindRegister:
		return ChangeNone, nil
	default:
		return ChangeNone, fmt.Errorf("%w: kind %d", protocol.ErrMalformedEnvelope, env.Kind)
	}
}
