package ws

import (
	"encoding/json"
	"fmt"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

// ClientMessageType enumerates websocket message types sent by clients.
// The enumeration is closed; unknown types are rejected at parse time.
type ClientMessageType string

const (
	// ClientMessageAnswer submits an answer to the current question.
	ClientMessageAnswer ClientMessageType = "answer"
)

// ClientMessage is a websocket message sent by a client to the server.
type ClientMessage struct {
	Type    ClientMessageType `json:"type"`
	Payload json.RawMessage   `json:"payload,omitempty"`
}

// AnswerPayload carries an answer submission.
type AnswerPayload struct {
	Text string `json:"text"`
}

// ParseClientMessage parses and validates an inbound message.
func ParseClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("malformed client message: %w", err)
	}

	switch msg.Type {
	case ClientMessageAnswer:
		return msg, nil
	default:
		return ClientMessage{}, fmt.Errorf("%w: %q", domain.ErrUnknownMessageType, msg.Type)
	}
}

// AnswerText extracts the answer text from an answer message payload.
func (m ClientMessage) AnswerText() (string, error) {
	if m.Type != ClientMessageAnswer {
		return "", fmt.Errorf("message type %q carries no answer", m.Type)
	}

	var payload AnswerPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return "", fmt.Errorf("malformed answer payload: %w", err)
	}
	if payload.Text == "" {
		return "", fmt.Errorf("answer text cannot be empty")
	}
	return payload.Text, nil
}

// ServerMessageType enumerates websocket message types sent by the server.
type ServerMessageType string

const (
	ServerMessageSync  ServerMessageType = "sync"
	ServerMessageError ServerMessageType = "error"
)

// ErrorPayload carries information on an error delivered over the socket.
type ErrorPayload struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ServerMessage is a websocket message sent by the server to a client. Every
// message carries the latest public session snapshot, error or not.
type ServerMessage struct {
	Type    ServerMessageType      `json:"type"`
	Session domain.SessionSnapshot `json:"session"`
	Error   *ErrorPayload          `json:"error,omitempty"`
}

// EncodeServerMessage builds the wire form of a server message. A non-nil
// error payload forces the type to "error".
func EncodeServerMessage(snapshot domain.SessionSnapshot, msgType ServerMessageType, errPayload *ErrorPayload) ([]byte, error) {
	if errPayload != nil {
		msgType = ServerMessageError
	}
	return json.Marshal(ServerMessage{
		Type:    msgType,
		Session: snapshot,
		Error:   errPayload,
	})
}
