package message

import (
	"encoding/json"
	"fmt"
)

// jsonMessage is the wire form of a message.  Payload is deferred so decoding
// can dispatch on the type.
type jsonMessage struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalJSON implements the json.Marshaler interface.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.Payload == nil {
		return nil, fmt.Errorf("marshalling message: no payload")
	}
	if m.Type != m.Payload.messageType() {
		return nil, fmt.Errorf("marshalling message: type %v does not match payload type %v", m.Type, m.Payload.messageType())
	}
	payload, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling message payload: %w", err)
	}
	return json.Marshal(jsonMessage{
		Type:    m.Type,
		Payload: payload,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface, dispatching the
// payload type on the message type.
func (m *Message) UnmarshalJSON(b []byte) error {
	var jm jsonMessage
	if err := json.Unmarshal(b, &jm); err != nil {
		return fmt.Errorf("unmarshalling message: %w", err)
	}
	payload, err := unmarshalPayload(jm.Type, jm.Payload)
	if err != nil {
		return fmt.Errorf("unmarshalling message: %w", err)
	}
	*m = Message{
		Type:    jm.Type,
		Payload: payload,
	}
	return nil
}

func unmarshalPayload(t Type, b []byte) (Payload, error) {
	switch t {
	case AuthRequestType:
		var p AuthRequest
		return p, json.Unmarshal(b, &p)
	case AuthResponseType:
		var p AuthResponse
		return p, json.Unmarshal(b, &p)
	case NewConnectionType:
		var p NewConnection
		return p, json.Unmarshal(b, &p)
	case EndConnectionType:
		var p EndConnection
		return p, json.Unmarshal(b, &p)
	case EventType:
		var p EventPayload
		return p, json.Unmarshal(b, &p)
	default:
		return nil, fmt.Errorf("unknown type %q", t)
	}
}
