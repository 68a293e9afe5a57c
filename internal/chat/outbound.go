package chat

import (
	"strings"

	"github.com/omochice/roomchat/pkg/protocol"
)

// RegisterFrame encodes the register envelope announcing username.
func RegisterFrame(username string) ([]byte, error) {
	env := protocol.NewRegister(username)
	return env.Encode()
}

// ComposeFrame encodes text typed by the user as a message envelope.
// Blank input yields ok == false and no frame.
func ComposeFrame(text string) (frame []byte, ok bool, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, false, nil
	}
	env := protocol.NewMessage(text)
	frame, err = env.Encode()
	if err != nil {
		return nil, false, err
	}
	return frame, true, nil
}
