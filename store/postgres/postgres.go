// Package postgres persists event lists in a PostgreSQL database.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // register the postgres driver

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/game/event"
	"github.com/kmelnikov/scrabbled/store"
)

// EventStore persists the event list of each game as rows in the game_events
// table, one row per event, keyed by game id and sequence.
type EventStore struct {
	db *sql.DB
	store.Config
}

const setupQuery = `CREATE TABLE IF NOT EXISTS game_events (
	game_id  BIGINT NOT NULL,
	sequence INT    NOT NULL,
	payload  JSONB  NOT NULL,
	PRIMARY KEY (game_id, sequence)
)`

// NewEventStore creates an event store connected to the database at the URL.
func NewEventStore(ctx context.Context, cfg store.Config, databaseURL string) (*EventStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres database: %w", err)
	}
	ctx, cancelFunc := context.WithTimeout(ctx, cfg.QueryPeriod)
	defer cancelFunc()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connecting to postgres database: %w", err)
	}
	es := EventStore{
		db:     db,
		Config: cfg,
	}
	return &es, nil
}

// Setup creates the game_events table if it does not exist.
func (es *EventStore) Setup(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, es.QueryPeriod)
	defer cancelFunc()
	if _, err := es.db.ExecContext(ctx, setupQuery); err != nil {
		return fmt.Errorf("creating game_events table: %w", err)
	}
	return nil
}

// Write replaces the persisted event list of the game in a transaction.
func (es *EventStore) Write(ctx context.Context, id game.ID, events []event.Event) error {
	ctx, cancelFunc := context.WithTimeout(ctx, es.QueryPeriod)
	defer cancelFunc()
	tx, err := es.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	err = func() error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM game_events WHERE game_id = $1", int(id)); err != nil {
			return fmt.Errorf("clearing events of game %v: %w", id, err)
		}
		for i, e := range events {
			payload, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("marshalling event %v of game %v: %w", i, id, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO game_events (game_id, sequence, payload) VALUES ($1, $2, $3)",
				int(id), e.Sequence, payload); err != nil {
				return fmt.Errorf("inserting event %v of game %v: %w", i, id, err)
			}
		}
		return nil
	}()
	if err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return fmt.Errorf("rolling back transaction due to %v: %w", err, err2)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Read returns the persisted event list of the game in sequence order.  A
// game with no rows is not found.
func (es *EventStore) Read(ctx context.Context, id game.ID) ([]event.Event, error) {
	ctx, cancelFunc := context.WithTimeout(ctx, es.QueryPeriod)
	defer cancelFunc()
	rows, err := es.db.QueryContext(ctx,
		"SELECT payload FROM game_events WHERE game_id = $1 ORDER BY sequence", int(id))
	if err != nil {
		return nil, fmt.Errorf("querying events of game %v: %w", id, err)
	}
	defer rows.Close()
	var events []event.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning event of game %v: %w", id, err)
		}
		var e event.Event
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("unmarshalling event of game %v: %w", id, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading events of game %v: %w", id, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("reading events of game %v: %w", id, store.ErrGameNotFound)
	}
	return events, nil
}
