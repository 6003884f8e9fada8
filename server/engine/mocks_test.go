package engine

import (
	"context"
	"sync"

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/game/event"
	"github.com/kmelnikov/scrabbled/server/message"
	"github.com/kmelnikov/scrabbled/server/registry"
	"github.com/kmelnikov/scrabbled/store"
)

type mockEventStore struct {
	mu       sync.Mutex
	games    map[game.ID][]event.Event
	writeErr error
}

func newMockEventStore() *mockEventStore {
	return &mockEventStore{
		games: make(map[game.ID][]event.Event),
	}
}

func (s *mockEventStore) Write(ctx context.Context, id game.ID, events []event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	stored := make([]event.Event, len(events))
	copy(stored, events)
	s.games[id] = stored
	return nil
}

func (s *mockEventStore) Read(ctx context.Context, id game.ID) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, ok := s.games[id]
	if !ok {
		return nil, store.ErrGameNotFound
	}
	read := make([]event.Event, len(events))
	copy(read, events)
	return read, nil
}

func (s *mockEventStore) storedEvents(id game.ID) []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games[id]
}

type publishedMessage struct {
	m      message.Message
	gameID game.ID
	except *registry.Key
}

type sentMessage struct {
	key registry.Key
	m   message.Message
}

type mockPublisher struct {
	published chan publishedMessage
	sent      chan sentMessage
	sendErr   error
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{
		published: make(chan publishedMessage, 64),
		sent:      make(chan sentMessage, 64),
	}
}

func (p *mockPublisher) PublishToGame(m message.Message, id game.ID, except *registry.Key) {
	p.published <- publishedMessage{m: m, gameID: id, except: except}
}

func (p *mockPublisher) SendTo(k registry.Key, m message.Message) error {
	p.sent <- sentMessage{key: k, m: m}
	return p.sendErr
}

type mockDisconnector struct {
	keys chan registry.Key
}

func newMockDisconnector() *mockDisconnector {
	return &mockDisconnector{
		keys: make(chan registry.Key, 8),
	}
}

func (d *mockDisconnector) Disconnect(k registry.Key) {
	d.keys <- k
}
