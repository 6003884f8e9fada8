package board

import (
	"encoding/json"
	"fmt"
)

// directionNames maps directions to their wire names.
var directionNames = map[Direction]string{
	Right: "RIGHT",
	Down:  "DOWN",
}

// String returns the wire name of the direction.
func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// MarshalJSON implements the encoding/json.Marshaler interface.
// Directions serialise to their symbolic names.
func (d Direction) MarshalJSON() ([]byte, error) {
	name, ok := directionNames[d]
	if !ok {
		return nil, fmt.Errorf("unknown direction %v", int(d))
	}
	return json.Marshal(name)
}

// UnmarshalJSON implements the encoding/json.Unmarshaler interface.
func (d *Direction) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return fmt.Errorf("unmarshalling direction: %w", err)
	}
	for d2, n := range directionNames {
		if n == name {
			*d = d2
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", name)
}
