// Package message defines the frames exchanged between the server and game
// clients.
package message

import (
	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/game/event"
)

type (
	// Type identifies the kind of a message.
	Type string

	// Status marks how far an event message has progressed through the
	// server.
	Status string

	// Payload is the type-specific body of a message.
	Payload interface {
		messageType() Type
	}

	// Message is one frame exchanged over a game connection.
	Message struct {
		Type    Type
		Payload Payload
	}

	// AuthRequest is the first frame a client sends, naming who is connecting
	// to which game.
	AuthRequest struct {
		Username string  `json:"username"`
		GameID   game.ID `json:"game_id"`
	}

	// AuthResponse tells the client whether the connection was accepted.
	AuthResponse struct {
		OK bool `json:"ok"`
	}

	// NewConnection announces a player joining the game.
	NewConnection struct {
		Username string `json:"username"`
	}

	// EndConnection announces a player leaving the game.
	EndConnection struct {
		Username string `json:"username"`
	}

	// EventPayload wraps a game event with its processing status.  Reason is
	// only set on rejections.
	EventPayload struct {
		Event  event.Event `json:"event"`
		Status Status      `json:"status"`
		Reason string      `json:"reason,omitempty"`
	}
)

const (
	// AuthRequestType identifies AuthRequest messages.
	AuthRequestType Type = "AUTH_REQUEST"
	// AuthResponseType identifies AuthResponse messages.
	AuthResponseType Type = "AUTH_RESPONSE"
	// NewConnectionType identifies NewConnection messages.
	NewConnectionType Type = "NEW_CONNECTION"
	// EndConnectionType identifies EndConnection messages.
	EndConnectionType Type = "END_CONNECTION"
	// EventType identifies EventPayload messages.
	EventType Type = "EVENT"

	// Requested events have been proposed by a client and not yet validated.
	Requested Status = "REQUESTED"
	// Approved events have been applied and persisted by the server.
	Approved Status = "APPROVED"
	// Rejected events failed validation and were not applied.
	Rejected Status = "REJECTED"
)

func (AuthRequest) messageType() Type   { return AuthRequestType }
func (AuthResponse) messageType() Type  { return AuthResponseType }
func (NewConnection) messageType() Type { return NewConnectionType }
func (EndConnection) messageType() Type { return EndConnectionType }
func (EventPayload) messageType() Type  { return EventType }

// New creates a message for the payload, deriving the type from the payload
// type.
func New(payload Payload) Message {
	return Message{
		Type:    payload.messageType(),
		Payload: payload,
	}
}
