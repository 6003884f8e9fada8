// Package mongo persists event lists in a mongodb collection.
package mongo

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/game/event"
	"github.com/kmelnikov/scrabbled/store"
)

const (
	databaseName   = "scrabbled-db"
	collectionName = "games"
	gameIDField    = "_id"
	eventsField    = "events"
)

// EventStore persists the event list of each game as one document in the
// games collection.  Events are stored as their canonical JSON strings so the
// wire serialization stays the single source of truth.
type EventStore struct {
	games *mongo.Collection
	store.Config
}

// gameDocument is the bson form of a persisted game.
type gameDocument struct {
	GameID int      `bson:"_id"`
	Events []string `bson:"events"`
}

// NewEventStore creates an event store connected to the database at the URL.
func NewEventStore(ctx context.Context, cfg store.Config, databaseURL string) (*EventStore, error) {
	clientOptions := options.Client()
	clientOptions.ApplyURI(databaseURL)
	ctx, cancelFunc := context.WithTimeout(ctx, cfg.QueryPeriod)
	defer cancelFunc()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	es := EventStore{
		games:  client.Database(databaseName).Collection(collectionName),
		Config: cfg,
	}
	return &es, nil
}

// Write replaces the persisted event list of the game, creating the document
// if needed.
func (es *EventStore) Write(ctx context.Context, id game.ID, events []event.Event) error {
	encoded := make([]string, len(events))
	for i, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshalling event %v of game %v: %w", i, id, err)
		}
		encoded[i] = string(b)
	}
	document := gameDocument{
		GameID: int(id),
		Events: encoded,
	}
	filter := d(e(gameIDField, int(id)))
	replaceOptions := options.Replace()
	replaceOptions.SetUpsert(true)
	ctx, cancelFunc := context.WithTimeout(ctx, es.QueryPeriod)
	defer cancelFunc()
	if _, err := es.games.ReplaceOne(ctx, filter, document, replaceOptions); err != nil {
		return fmt.Errorf("writing events of game %v: %w", id, err)
	}
	return nil
}

// Read returns the persisted event list of the game.  A missing document
// means the game is not found.
func (es *EventStore) Read(ctx context.Context, id game.ID) ([]event.Event, error) {
	filter := d(e(gameIDField, int(id)))
	ctx, cancelFunc := context.WithTimeout(ctx, es.QueryPeriod)
	defer cancelFunc()
	result := es.games.FindOne(ctx, filter)
	var document gameDocument
	if err := result.Decode(&document); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("reading events of game %v: %w", id, store.ErrGameNotFound)
		}
		return nil, fmt.Errorf("reading events of game %v: %w", id, err)
	}
	events := make([]event.Event, len(document.Events))
	for i, encoded := range document.Events {
		if err := json.Unmarshal([]byte(encoded), &events[i]); err != nil {
			return nil, fmt.Errorf("unmarshalling event %v of game %v: %w", i, id, err)
		}
	}
	return events, nil
}

// d is a helper function to create bson.D elements.
func d(e ...bson.E) bson.D {
	return bson.D(e)
}

// e is a helper function to create bson.E elements.
func e(key string, value interface{}) bson.E {
	return bson.E{Key: key, Value: value}
}
