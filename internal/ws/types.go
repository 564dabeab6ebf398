package ws

import (
	"encoding/json"
)

// MessageType names the kind of message on the engine socket.
type MessageType string

const (
	// Client to server.
	MessageTypeSearch MessageType = "search"
	MessageTypeStop   MessageType = "stop"

	// Server to client.
	MessageTypeAccepted MessageType = "accepted"
	MessageTypeProgress MessageType = "progress"
	MessageTypeResult   MessageType = "result"
	MessageTypeError    MessageType = "error"
)

// Message is the envelope of every socket message.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type StopPayload struct {
	SearchID string `json:"searchId"`
}

type AcceptedPayload struct {
	SearchID string `json:"searchId"`
}

type ErrorPayload struct {
	SearchID string `json:"searchId,omitempty"`
	Error    string `json:"error"`
}

// NewMessage wraps payload in an envelope.
func NewMessage(t MessageType, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}
