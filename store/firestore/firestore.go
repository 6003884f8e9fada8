// Package firestore persists event lists in a google cloud firestore
// database.
package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/game/event"
	"github.com/kmelnikov/scrabbled/store"
)

const eventsField = "events"

// EventStore persists the event list of each game as one document, keyed by
// the game id.  Events are stored as their canonical JSON strings.
type EventStore struct {
	client *firestore.Client
	store.Config
}

// NewEventStore creates an event store for the google cloud project.
func NewEventStore(ctx context.Context, cfg store.Config, projectID string) (*EventStore, error) {
	client, err := firestore.NewClient(ctx, projectID) // do not timeout context - the client is used by the store
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	es := EventStore{
		client: client,
		Config: cfg,
	}
	return &es, nil
}

func (es *EventStore) gamesCollection() *firestore.CollectionRef {
	return es.client.Collection("services").Doc("scrabbled").Collection("games")
}

// withTimeoutContext configures the context to timeout when running the function.
func (es *EventStore) withTimeoutContext(ctx context.Context, f func(ctx context.Context) error) error {
	ctx, cancelFunc := context.WithTimeout(ctx, es.QueryPeriod)
	defer cancelFunc()
	return f(ctx)
}

// Write replaces the persisted event list of the game.
func (es *EventStore) Write(ctx context.Context, id game.ID, events []event.Event) error {
	encoded := make([]string, len(events))
	for i, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshalling event %v of game %v: %w", i, id, err)
		}
		encoded[i] = string(b)
	}
	if err := es.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := es.gamesCollection().Doc(strconv.Itoa(int(id)))
		m := map[string]interface{}{
			eventsField: encoded,
		}
		_, err := docRef.Set(ctx, m)
		return err
	}); err != nil {
		return fmt.Errorf("writing events of game %v: %w", id, err)
	}
	return nil
}

// Read returns the persisted event list of the game.  A missing document
// means the game is not found.
func (es *EventStore) Read(ctx context.Context, id game.ID) ([]event.Event, error) {
	var encoded struct {
		Events []string `firestore:"events"`
	}
	if err := es.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := es.gamesCollection().Doc(strconv.Itoa(int(id)))
		snapshot, err := docRef.Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return store.ErrGameNotFound
			}
			return err
		}
		return snapshot.DataTo(&encoded)
	}); err != nil {
		return nil, fmt.Errorf("reading events of game %v: %w", id, err)
	}
	events := make([]event.Event, len(encoded.Events))
	for i, s := range encoded.Events {
		if err := json.Unmarshal([]byte(s), &events[i]); err != nil {
			return nil, fmt.Errorf("unmarshalling event %v of game %v: %w", i, id, err)
		}
	}
	return events, nil
}
