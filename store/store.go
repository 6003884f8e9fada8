// Package store persists the event lists of games.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/game/event"
)

type (
	// Config contains fields shared by the event store backends.
	Config struct {
		// QueryPeriod is the amount of time each backend operation can take
		// before it times out.
		QueryPeriod time.Duration
	}

	// Events reads and writes the full event list of games.  Write replaces
	// the whole persisted list; the lists are short enough that this is
	// acceptable.
	Events interface {
		Write(ctx context.Context, id game.ID, events []event.Event) error
		Read(ctx context.Context, id game.ID) ([]event.Event, error)
	}
)

// ErrGameNotFound is returned by Read when no events are persisted for the
// game.
var ErrGameNotFound = errors.New("game not found")
