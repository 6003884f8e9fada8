package postgres

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/game/board"
	"github.com/kmelnikov/scrabbled/game/event"
	"github.com/kmelnikov/scrabbled/store"
)

// newEventStore starts a throwaway postgres container for the test.
func newEventStore(t *testing.T) *EventStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test")
	}
	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("scrabbled"),
		tcpostgres.WithUsername("scrabbled"),
		tcpostgres.WithPassword("scrabbled"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("unwanted error starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	})
	databaseURL, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("unwanted error getting connection string: %v", err)
	}
	cfg := store.Config{
		QueryPeriod: 10 * time.Second,
	}
	es, err := NewEventStore(ctx, cfg, databaseURL)
	if err != nil {
		t.Fatalf("unwanted error creating event store: %v", err)
	}
	if err := es.Setup(ctx); err != nil {
		t.Fatalf("unwanted error setting up event store: %v", err)
	}
	return es
}

func TestEventStore(t *testing.T) {
	es := newEventStore(t)
	ctx := context.Background()
	if _, err := es.Read(ctx, 42); !errors.Is(err, store.ErrGameNotFound) {
		t.Errorf("wanted game not found error before any write, got %v", err)
	}
	events := []event.Event{
		event.New(42, 1, 1000, event.GameInitParams{
			Players:       []string{"alice", "bob"},
			Letters:       game.Letters("ab"),
			BoardSettings: board.Settings{Width: 20, Height: 20},
		}),
	}
	if err := es.Write(ctx, 42, events); err != nil {
		t.Fatalf("unwanted error writing events: %v", err)
	}
	events = append(events,
		event.New(42, 2, 1001, event.PlayerAddLettersParams{Player: "alice", Letters: game.Letters("a")}),
	)
	if err := es.Write(ctx, 42, events); err != nil {
		t.Fatalf("unwanted error rewriting events: %v", err)
	}
	got, err := es.Read(ctx, 42)
	switch {
	case err != nil:
		t.Fatalf("unwanted error reading events: %v", err)
	case !reflect.DeepEqual(events, got):
		t.Errorf("wanted events %+v after rewrite, got %+v", events, got)
	}
	if _, err := es.Read(ctx, 43); !errors.Is(err, store.ErrGameNotFound) {
		t.Errorf("wanted game not found error for other game, got %v", err)
	}
}
