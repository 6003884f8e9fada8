// Package registry tracks the live connection of each player and fans
// messages out to the members of a game.
package registry

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/server/message"
	"github.com/kmelnikov/scrabbled/server/socket"
)

type (
	// Key identifies a connection.  No two live connections share a key.
	Key struct {
		Username string
		GameID   game.ID
	}

	// Handler reacts to the lifecycle of connections and to the messages they
	// send.
	Handler interface {
		// PlayerConnected is called after the key is registered.  The
		// returned messages are written to the new connection before any live
		// broadcast reaches it.  An error rejects the connection.
		PlayerConnected(ctx context.Context, k Key) ([]message.Message, error)
		// PlayerDisconnected is called after the key is unregistered.
		PlayerDisconnected(ctx context.Context, k Key)
		// HandleMessage is called for every message read from the connection.
		HandleMessage(ctx context.Context, k Key, m message.Message)
	}

	// Config contains the fields needed to create a registry.
	Config struct {
		// Debug causes the registry to log the messages it reads and writes.
		Debug bool
		// Log is used to log errors and other information.
		Log *log.Logger
		// PingPeriod is how often ping messages are sent.  Should be less
		// than the connection read wait.
		PingPeriod time.Duration
		// SendBuffer is the number of queued outgoing messages a connection
		// can fall behind before it is dropped.
		SendBuffer int
	}

	// Registry maps keys to live connections.  Handle runs the authentication
	// handshake and the read loop of one connection.
	Registry struct {
		Config
		handler Handler
		mu      sync.Mutex
		members map[Key]*member
		byGame  map[game.ID]map[Key]*member
	}

	// member is the registry's view of one live connection.
	member struct {
		key    Key
		conn   socket.Conn
		send   chan message.Message
		cancel context.CancelFunc
	}
)

const defaultSendBuffer = 64

// NewRegistry creates a registry that reports connection lifecycles and
// messages to the handler.
func (cfg Config) NewRegistry(handler Handler) (*Registry, error) {
	switch {
	case cfg.Log == nil:
		return nil, fmt.Errorf("creating registry: log required")
	case handler == nil:
		return nil, fmt.Errorf("creating registry: handler required")
	case cfg.PingPeriod <= 0:
		return nil, fmt.Errorf("creating registry: positive ping period required")
	}
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = defaultSendBuffer
	}
	r := Registry{
		Config:  cfg,
		handler: handler,
		members: make(map[Key]*member),
		byGame:  make(map[game.ID]map[Key]*member),
	}
	return &r, nil
}

// Handle authenticates the connection and reads its messages until it closes
// or the context is cancelled.  BLOCKING
func (r *Registry) Handle(ctx context.Context, conn socket.Conn) {
	defer conn.Close()
	var m message.Message
	if err := conn.ReadMessage(&m); err != nil {
		r.Log.Printf("reading auth request from %v: %v", conn.RemoteAddr(), err)
		conn.WriteClose("auth request required")
		return
	}
	auth, ok := m.Payload.(message.AuthRequest)
	if m.Type != message.AuthRequestType || !ok {
		r.Log.Printf("wanted auth request from %v, got %v", conn.RemoteAddr(), m.Type)
		conn.WriteClose("auth request required")
		return
	}
	k := Key{
		Username: auth.Username,
		GameID:   auth.GameID,
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	mb := &member{
		key:    k,
		conn:   conn,
		send:   make(chan message.Message, r.SendBuffer),
		cancel: cancel,
	}
	if !r.register(mb) {
		r.Log.Printf("duplicate connection for %+v from %v", k, conn.RemoteAddr())
		conn.WriteMessage(message.New(message.AuthResponse{}))
		conn.WriteClose("connection already exists")
		return
	}
	history, err := r.handler.PlayerConnected(ctx, k)
	if err != nil {
		r.Log.Printf("rejecting connection for %+v: %v", k, err)
		r.unregister(mb, false)
		conn.WriteMessage(message.New(message.AuthResponse{}))
		conn.WriteClose(err.Error())
		return
	}
	// the handshake and history are written before the writer starts so the
	// client sees them before any live broadcast
	if err := conn.WriteMessage(message.New(message.AuthResponse{OK: true})); err != nil {
		r.Log.Printf("writing auth response to %+v: %v", k, err)
		r.unregister(mb, false)
		return
	}
	for _, hm := range history {
		if err := conn.WriteMessage(hm); err != nil {
			r.Log.Printf("writing history to %+v: %v", k, err)
			r.unregister(mb, false)
			return
		}
	}
	go r.writeMessages(ctx, mb)
	r.PublishToGame(message.New(message.NewConnection{Username: k.Username}), k.GameID, &k)
	for _, peer := range r.gameMembers(k.GameID, &k) {
		r.enqueue(mb, message.New(message.NewConnection{Username: peer.Username}))
	}
	defer r.unregister(mb, true)
	for { // BLOCKING
		var m message.Message
		if err := conn.ReadMessage(&m); err != nil {
			if ctx.Err() == nil && !conn.IsNormalClose(err) {
				r.Log.Printf("reading messages for %+v stopped: %v", k, err)
			}
			return
		}
		if r.Debug {
			r.Log.Printf("read %v message from %+v", m.Type, k)
		}
		r.handler.HandleMessage(ctx, k, m)
	}
}

// register adds the member to both maps unless its key is already live.
func (r *Registry) register(mb *member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[mb.key]; ok {
		return false
	}
	r.members[mb.key] = mb
	gameMembers, ok := r.byGame[mb.key.GameID]
	if !ok {
		gameMembers = make(map[Key]*member)
		r.byGame[mb.key.GameID] = gameMembers
	}
	gameMembers[mb.key] = mb
	return true
}

// unregister removes the member from both maps.  If announce is set, the
// departure is published to the game and reported to the handler.
func (r *Registry) unregister(mb *member, announce bool) {
	r.mu.Lock()
	if r.members[mb.key] != mb {
		r.mu.Unlock()
		return
	}
	delete(r.members, mb.key)
	gameMembers := r.byGame[mb.key.GameID]
	delete(gameMembers, mb.key)
	if len(gameMembers) == 0 {
		delete(r.byGame, mb.key.GameID)
	}
	r.mu.Unlock()
	mb.cancel()
	if !announce {
		return
	}
	r.PublishToGame(message.New(message.EndConnection{Username: mb.key.Username}), mb.key.GameID, &mb.key)
	r.handler.PlayerDisconnected(context.Background(), mb.key)
}

// gameMembers returns the keys of the live members of the game, excluding
// except if set.
func (r *Registry) gameMembers(id game.ID, except *Key) []Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []Key
	for k := range r.byGame[id] {
		if except != nil && k == *except {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// snapshot returns the live members of the game, excluding except if set.
func (r *Registry) snapshot(id game.ID, except *Key) []*member {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mbs []*member
	for k, mb := range r.byGame[id] {
		if except != nil && k == *except {
			continue
		}
		mbs = append(mbs, mb)
	}
	return mbs
}

// enqueue queues the message for the member's writer.  Members that cannot
// keep up are disconnected.
func (r *Registry) enqueue(mb *member, m message.Message) {
	select {
	case mb.send <- m:
	default:
		r.Log.Printf("connection %+v cannot keep up, disconnecting", mb.key)
		mb.cancel()
	}
}

// PublishToGame queues the message for every live member of the game except
// the excluded key.
func (r *Registry) PublishToGame(m message.Message, id game.ID, except *Key) {
	for _, mb := range r.snapshot(id, except) {
		r.enqueue(mb, m)
	}
}

// SendTo queues the message for the member with the key.
func (r *Registry) SendTo(k Key, m message.Message) error {
	r.mu.Lock()
	mb, ok := r.members[k]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("no connection for %+v", k)
	}
	r.enqueue(mb, m)
	return nil
}

// Disconnect closes the connection with the key, if it is live.
func (r *Registry) Disconnect(k Key) {
	r.mu.Lock()
	mb, ok := r.members[k]
	r.mu.Unlock()
	if ok {
		mb.cancel()
	}
}

// writeMessages writes queued messages and periodic pings to the connection
// until the member's context is cancelled.  BLOCKING
func (r *Registry) writeMessages(ctx context.Context, mb *member) {
	pingTicker := time.NewTicker(r.PingPeriod)
	defer pingTicker.Stop()
	defer mb.conn.Close()
	for {
		select {
		case <-ctx.Done():
			mb.conn.WriteClose("server shutting down")
			return
		case m := <-mb.send:
			if r.Debug {
				r.Log.Printf("writing %v message to %+v", m.Type, mb.key)
			}
			if err := mb.conn.WriteMessage(m); err != nil {
				r.Log.Printf("writing message to %+v: %v", mb.key, err)
				mb.cancel()
				return
			}
		case <-pingTicker.C:
			if err := mb.conn.WritePing(); err != nil {
				mb.cancel()
				return
			}
		}
	}
}
