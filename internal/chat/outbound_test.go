package chat_test

import (
	"testing"

	"github.com/omochice/roomchat/internal/chat"
	"github.com/omochice/roomchat/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFrame(t *testing.T) {
	frame, err := chat.RegisterFrame("alice")
	require.NoError(t, err)
	assert.JSONEq(t, `{"messageType":"register","dataArray":null,"data":"alice"}`, string(frame))
}

func TestComposeFrame(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantOK  bool
		payload string
	}{
		{"plain text", "hello", true, "hello"},
		{"surrounding whitespace is kept", "  hi there ", true, "  hi there "},
		{"gif reference", "party.gif", true, "party.gif"},
		{"empty", "", false, ""},
		{"spaces only", "   ", false, ""},
		{"mixed whitespace", "\t\n \r", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, ok, err := chat.ComposeFrame(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, frame)
				return
			}

			var env protocol.Envelope
			require.NoError(t, env.Decode(frame))
			assert.Equal(t, protocol.KindMessage, env.Kind)
			require.NotNil(t, env.Payload)
			assert.Equal(t, tt.payload, *env.Payload)
			assert.Nil(t, env.PayloadList)
		})
	}
}

func TestComposeFrame_InvalidUTF8(t *testing.T) {
	frame, ok, err := chat.ComposeFrame("caf\xe9")
	assert.ErrorIs(t, err, protocol.ErrUnencodableEnvelope)
	assert.False(t, ok)
	assert.Nil(t, frame)
}
