// Package file persists event lists as JSON files, one file per game.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru"

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/game/event"
	"github.com/kmelnikov/scrabbled/store"
)

type (
	// Config contains the fields needed to create an event store.
	Config struct {
		// Dir is the directory the event files are kept in.
		Dir string
		// CacheSize is the number of parsed event lists kept in memory.
		CacheSize int
	}

	// EventStore persists the event list of each game at
	// <dir>/<gameID>_events.json.  Reads of recently used games are served
	// from an in-memory cache.
	EventStore struct {
		dir   string
		cache *lru.Cache
	}
)

const defaultCacheSize = 64

// NewEventStore creates an event store, creating the directory if needed.
func (cfg Config) NewEventStore() (*EventStore, error) {
	if len(cfg.Dir) == 0 {
		return nil, fmt.Errorf("creating event store: directory required")
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating event store directory: %w", err)
	}
	cacheSize := cfg.CacheSize
	if cacheSize < 1 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating event store cache: %w", err)
	}
	es := EventStore{
		dir:   cfg.Dir,
		cache: cache,
	}
	return &es, nil
}

func (es *EventStore) filename(id game.ID) string {
	return filepath.Join(es.dir, fmt.Sprintf("%d_events.json", id))
}

// Write replaces the persisted event list of the game.  The file is written
// to a temporary name and renamed so readers never observe a partial list.
func (es *EventStore) Write(ctx context.Context, id game.ID, events []event.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	b, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshalling events of game %v: %w", id, err)
	}
	filename := es.filename(id)
	tmp, err := os.CreateTemp(es.dir, filepath.Base(filename)+".tmp")
	if err != nil {
		return fmt.Errorf("creating temp event file for game %v: %w", id, err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing events of game %v: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp event file for game %v: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing event file for game %v: %w", id, err)
	}
	es.cache.Add(id, events)
	return nil
}

// Read returns the persisted event list of the game.  A missing file means
// the game is not found.
func (es *EventStore) Read(ctx context.Context, id game.ID) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	if cached, ok := es.cache.Get(id); ok {
		return cached.([]event.Event), nil
	}
	b, err := os.ReadFile(es.filename(id))
	switch {
	case os.IsNotExist(err):
		return nil, fmt.Errorf("reading events of game %v: %w", id, store.ErrGameNotFound)
	case err != nil:
		return nil, fmt.Errorf("reading events of game %v: %w", id, err)
	}
	var events []event.Event
	if err := json.Unmarshal(b, &events); err != nil {
		return nil, fmt.Errorf("unmarshalling events of game %v: %w", id, err)
	}
	es.cache.Add(id, events)
	return events, nil
}
