package protocol

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ChatPayload is the object nested as JSON text inside a message envelope.
type ChatPayload struct {
	From    string
	Message string
}

type wireChatPayload struct {
	From    string  `json:"from" validate:"required"`
	Message *string `json:"message" validate:"required"`
}

// DecodeChatPayload decodes the data field of a message envelope.
func DecodeChatPayload(data string) (ChatPayload, error) {
	var w wireChatPayload
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return ChatPayload{}, fmt.Errorf("%w: %v", ErrMalformedChatPayload, err)
	}
	if err := validate.Struct(w); err != nil {
		return ChatPayload{}, fmt.Errorf("%w: %v", ErrMalformedChatPayload, err)
	}
	return ChatPayload{From: w.From, Message: *w.Message}, nil
}

// EncodeChatPayload encodes p into the text carried by a message envelope.
func EncodeChatPayload(p ChatPayload) (string, error) {
	if !utf8.ValidString(p.From) || !utf8.ValidString(p.Message) {
		return "", fmt.Errorf("%w: chat payload is not valid UTF-8", ErrUnencodableEnvelope)
	}
	data, err := json.Marshal(wireChatPayload{From: p.From, Message: &p.Message})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat payload: %w", err)
	}
	return string(data), nil
}
