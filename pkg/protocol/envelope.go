// Package protocol implements the JSON envelope spoken between the room
// client and the room server, in both directions.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrMalformedEnvelope is returned when a frame is not valid JSON or does
	// not carry a recognized messageType.
	ErrMalformedEnvelope = errors.New("malformed envelope")
	// ErrMalformedChatPayload is returned when the nested {from, message}
	// object of a message envelope cannot be decoded.
	ErrMalformedChatPayload = errors.New("malformed chat payload")
	// ErrUnencodableEnvelope is returned by Encode for an envelope that would
	// not survive the trip to a peer unchanged.
	ErrUnencodableEnvelope = errors.New("unencodable envelope")
)

// Kind represents the type of an envelope.
type Kind int

const (
	KindUsers Kind = iota
	KindRegister
	KindMessage
)

// String returns the wire tag of the Kind.
func (k Kind) String() string {
	switch k {
	case KindUsers:
		return "users"
	case KindRegister:
		return "register"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}

// ParseKind converts a wire tag into a Kind.
func ParseKind(tag string) (Kind, bool) {
	switch tag {
	case "users":
		return KindUsers, true
	case "register":
		return KindRegister, true
	case "message":
		return KindMessage, true
	default:
		return 0, false
	}
}

// Envelope is the unit of every frame on the wire.
// PayloadList is only meaningful for KindUsers, Payload for KindRegister and
// KindMessage. A nil value is encoded as null.
type Envelope struct {
	Kind        Kind
	PayloadList []string
	Payload     *string
}

// wireEnvelope is the JSON shape of an Envelope.
type wireEnvelope struct {
	MessageType string   `json:"messageType"`
	DataArray   []string `json:"dataArray"`
	Data        *string  `json:"data"`
}

// NewUsers builds a users envelope carrying the given names.
func NewUsers(names []string) Envelope {
	return Envelope{Kind: KindUsers, PayloadList: names}
}

// NewRegister builds a register envelope for username.
func NewRegister(username string) Envelope {
	return Envelope{Kind: KindRegister, Payload: &username}
}

// NewMessage builds a message envelope whose payload is data.
func NewMessage(data string) Envelope {
	return Envelope{Kind: KindMessage, Payload: &data}
}

// Encode encodes the envelope into a JSON text frame.
// Strings that are not valid UTF-8 are rejected rather than rewritten.
func (e *Envelope) Encode() ([]byte, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e.toWire())
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return data, nil
}

// Decode decodes a JSON text frame into the envelope.
func (e *Envelope) Decode(data []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	kind, ok := ParseKind(w.MessageType)
	if !ok {
		return fmt.Errorf("%w: unrecognized messageType %q", ErrMalformedEnvelope, w.MessageType)
	}
	e.Kind = kind
	e.PayloadList = w.DataArray
	e.Payload = w.Data
	return nil
}

// ChatPayload unpacks the nested chat object carried by a message envelope.
func (e Envelope) ChatPayload() (ChatPayload, error) {
	if e.Payload == nil {
		return ChatPayload{}, fmt.Errorf("%w: data is absent", ErrMalformedChatPayload)
	}
	return DecodeChatPayload(*e.Payload)
}

func (e *Envelope) check() error {
	if _, ok := ParseKind(e.Kind.String()); !ok {
		return fmt.Errorf("%w: kind %d has no wire tag", ErrUnencodableEnvelope, int(e.Kind))
	}
	for i, s := range e.PayloadList {
		if !utf8.ValidString(s) {
			return fmt.Errorf("%w: dataArray[%d] is not valid UTF-8", ErrUnencodableEnvelope, i)
		}
	}
	if e.Payload != nil && !utf8.ValidString(*e.Payload) {
		return fmt.Errorf("%w: data is not valid UTF-8", ErrUnencodableEnvelope)
	}
	return nil
}

func (e *Envelope) toWire() wireEnvelope {
	return wireEnvelope{
		MessageType: e.Kind.String(),
		DataArray:   e.PayloadList,
		Data:        e.Payload,
	}
}
