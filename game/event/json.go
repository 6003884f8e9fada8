package event

import (
	"encoding/json"
	"fmt"

	"github.com/kmelnikov/scrabbled/game"
)

// jsonEvent is the wire form of an event.  Params is deferred so decoding can
// dispatch on the name.
type jsonEvent struct {
	Name      Name            `json:"name"`
	Timestamp int64           `json:"timestamp"`
	Sequence  int             `json:"sequence"`
	GameID    game.ID         `json:"game_id"`
	Params    json.RawMessage `json:"params"`
}

// MarshalJSON implements the json.Marshaler interface.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Params == nil {
		return nil, fmt.Errorf("marshalling event: no params")
	}
	if e.Name != e.Params.name() {
		return nil, fmt.Errorf("marshalling event: name %v does not match params type %v", e.Name, e.Params.name())
	}
	params, err := json.Marshal(e.Params)
	if err != nil {
		return nil, fmt.Errorf("marshalling event params: %w", err)
	}
	return json.Marshal(jsonEvent{
		Name:      e.Name,
		Timestamp: e.Timestamp,
		Sequence:  e.Sequence,
		GameID:    e.GameID,
		Params:    params,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface, dispatching the
// params type on the event name.
func (e *Event) UnmarshalJSON(b []byte) error {
	var je jsonEvent
	if err := json.Unmarshal(b, &je); err != nil {
		return fmt.Errorf("unmarshalling event: %w", err)
	}
	params, err := unmarshalParams(je.Name, je.Params)
	if err != nil {
		return fmt.Errorf("unmarshalling event: %w", err)
	}
	*e = Event{
		Name:      je.Name,
		Timestamp: je.Timestamp,
		Sequence:  je.Sequence,
		GameID:    je.GameID,
		Params:    params,
	}
	return nil
}

func unmarshalParams(n Name, b []byte) (Params, error) {
	switch n {
	case GameInit:
		var p GameInitParams
		return p, json.Unmarshal(b, &p)
	case GameStart:
		var p GameStartParams
		return p, json.Unmarshal(b, &p)
	case PlayerAddLetters:
		var p PlayerAddLettersParams
		return p, json.Unmarshal(b, &p)
	case PlayerMove:
		var p PlayerMoveParams
		return p, json.Unmarshal(b, &p)
	default:
		return nil, fmt.Errorf("unknown name %q", n)
	}
}
