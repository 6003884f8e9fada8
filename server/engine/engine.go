// Package engine owns the event list and state of every game and processes
// all requests for them on a single loop.
package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/game/bag"
	"github.com/kmelnikov/scrabbled/game/board"
	"github.com/kmelnikov/scrabbled/game/event"
	"github.com/kmelnikov/scrabbled/game/state"
	"github.com/kmelnikov/scrabbled/server/message"
	"github.com/kmelnikov/scrabbled/server/registry"
	"github.com/kmelnikov/scrabbled/server/runner"
	"github.com/kmelnikov/scrabbled/store"
)

type (
	// Config contains the fields needed to create an engine.
	Config struct {
		// Debug causes the engine to log every request it processes.
		Debug bool
		// Log is used to log errors and other information.
		Log *log.Logger
		// BoardWidth and BoardHeight size the boards of new games.
		BoardWidth  int
		BoardHeight int
		// Lang selects the letter distribution of new games.
		Lang string
		// TimeFunc is the time source for event timestamps.
		TimeFunc func() int64
		// ShuffleFunc randomizes the letter bags of new games.
		ShuffleFunc bag.ShuffleFunc
		// GameIDFunc proposes ids for new games.
		GameIDFunc func() game.ID
	}

	// Publisher delivers messages to the live connections of games.
	Publisher interface {
		PublishToGame(m message.Message, id game.ID, except *registry.Key)
		SendTo(k registry.Key, m message.Message) error
	}

	// Engine applies client events through the reducer, persists approved
	// events, and broadcasts them.  All game state is owned by the Run loop.
	Engine struct {
		Config
		runner runner.Runner
		store  store.Events
		pub    Publisher
		games  map[game.ID]*gameRecord
		done   chan struct{}

		joins      chan joinRequest
		leaves     chan registry.Key
		messages   chan clientMessage
		newGames   chan newGameRequest
		loadGames  chan loadGameRequest
		startGames chan startGameRequest
	}

	// gameRecord is the engine's view of one game.
	gameRecord struct {
		id        game.ID
		events    []event.Event
		state     *state.State
		connected []string
	}

	joinRequest struct {
		key    registry.Key
		result chan<- joinResult
	}

	joinResult struct {
		history []message.Message
		err     error
	}

	clientMessage struct {
		key registry.Key
		m   message.Message
	}

	newGameRequest struct {
		result chan<- game.ID
	}

	loadGameRequest struct {
		id     game.ID
		result chan<- error
	}

	startGameRequest struct {
		id       game.ID
		initWord string
		result   chan<- error
	}
)

const (
	defaultBoardWidth  = 20
	defaultBoardHeight = 20
	defaultLang        = "en"
	maxGeneratedGameID = 1000
)

// bonusSeeds are mirrored into all four board quadrants of new games.
var bonusSeeds = []board.Bonus{
	{X: 5, Y: 5, Multiplier: 3},
	{X: 7, Y: 7, Multiplier: 2},
}

// NewEngine creates an engine that persists games in the store.
func (cfg Config) NewEngine(s store.Events) (*Engine, error) {
	if err := cfg.validate(s); err != nil {
		return nil, fmt.Errorf("creating engine: validation: %w", err)
	}
	if cfg.BoardWidth < 1 {
		cfg.BoardWidth = defaultBoardWidth
	}
	if cfg.BoardHeight < 1 {
		cfg.BoardHeight = defaultBoardHeight
	}
	if len(cfg.Lang) == 0 {
		cfg.Lang = defaultLang
	}
	if cfg.GameIDFunc == nil {
		cfg.GameIDFunc = func() game.ID {
			return game.ID(1 + rand.Intn(maxGeneratedGameID))
		}
	}
	if _, err := bag.Distribution(cfg.Lang); err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	e := Engine{
		Config:     cfg,
		store:      s,
		games:      make(map[game.ID]*gameRecord),
		done:       make(chan struct{}),
		joins:      make(chan joinRequest),
		leaves:     make(chan registry.Key),
		messages:   make(chan clientMessage),
		newGames:   make(chan newGameRequest),
		loadGames:  make(chan loadGameRequest),
		startGames: make(chan startGameRequest),
	}
	return &e, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(s store.Events) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case s == nil:
		return fmt.Errorf("event store required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.ShuffleFunc == nil:
		return fmt.Errorf("shuffle func required")
	}
	return nil
}

// Run processes requests until the context is cancelled, publishing through
// the publisher.  BLOCKING
func (e *Engine) Run(ctx context.Context, pub Publisher) {
	if pub == nil {
		e.Log.Print("running engine: publisher required")
		return
	}
	if err := e.runner.Begin(); err != nil {
		e.Log.Printf("running engine: %v", err)
		return
	}
	e.pub = pub
	defer e.runner.Finish()
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-e.joins:
			history, err := e.handleJoin(req.key)
			req.result <- joinResult{history: history, err: err}
		case k := <-e.leaves:
			e.handleLeave(k)
		case cm := <-e.messages:
			e.handleMessage(ctx, cm.key, cm.m)
		case req := <-e.newGames:
			req.result <- e.handleNewGame()
		case req := <-e.loadGames:
			req.result <- e.handleLoadGame(ctx, req.id)
		case req := <-e.startGames:
			req.result <- e.handleStartGame(ctx, req.id, req.initWord)
		}
	}
}

// PlayerConnected registers the player with their game and returns the
// persisted history as approved event messages.
func (e *Engine) PlayerConnected(ctx context.Context, k registry.Key) ([]message.Message, error) {
	result := make(chan joinResult, 1)
	select {
	case e.joins <- joinRequest{key: k, result: result}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.done:
		return nil, fmt.Errorf("engine stopped")
	}
	select {
	case r := <-result:
		return r.history, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.done:
		return nil, fmt.Errorf("engine stopped")
	}
}

// PlayerDisconnected removes the player from their game.
func (e *Engine) PlayerDisconnected(ctx context.Context, k registry.Key) {
	select {
	case e.leaves <- k:
	case <-ctx.Done():
	case <-e.done:
	}
}

// HandleMessage processes a message read from the player's connection.
func (e *Engine) HandleMessage(ctx context.Context, k registry.Key, m message.Message) {
	select {
	case e.messages <- clientMessage{key: k, m: m}:
	case <-ctx.Done():
	case <-e.done:
	}
}

// NewGame initialises a game with a fresh id and an empty event list.
func (e *Engine) NewGame(ctx context.Context) (game.ID, error) {
	result := make(chan game.ID, 1)
	select {
	case e.newGames <- newGameRequest{result: result}:
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-e.done:
		return 0, fmt.Errorf("engine stopped")
	}
	select {
	case id := <-result:
		return id, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-e.done:
		return 0, fmt.Errorf("engine stopped")
	}
}

// LoadGame initialises a game by replaying its persisted events.
func (e *Engine) LoadGame(ctx context.Context, id game.ID) error {
	result := make(chan error, 1)
	select {
	case e.loadGames <- loadGameRequest{id: id, result: result}:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return fmt.Errorf("engine stopped")
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return fmt.Errorf("engine stopped")
	}
}

// StartGame deals the connected players into the game and starts it.
func (e *Engine) StartGame(ctx context.Context, id game.ID, initWord string) error {
	result := make(chan error, 1)
	select {
	case e.startGames <- startGameRequest{id: id, initWord: initWord, result: result}:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return fmt.Errorf("engine stopped")
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return fmt.Errorf("engine stopped")
	}
}

func (e *Engine) handleJoin(k registry.Key) ([]message.Message, error) {
	rec, ok := e.games[k.GameID]
	if !ok {
		return nil, fmt.Errorf("game %v was not initialised", k.GameID)
	}
	history := make([]message.Message, len(rec.events))
	for i, ev := range rec.events {
		history[i] = message.New(message.EventPayload{
			Event:  ev,
			Status: message.Approved,
		})
	}
	rec.addConnected(k.Username)
	if e.Debug {
		e.Log.Printf("player %v connected to game %v", k.Username, k.GameID)
	}
	return history, nil
}

func (e *Engine) handleLeave(k registry.Key) {
	rec, ok := e.games[k.GameID]
	if !ok {
		return
	}
	rec.removeConnected(k.Username)
	if e.Debug {
		e.Log.Printf("player %v disconnected from game %v", k.Username, k.GameID)
	}
}

// handleMessage applies a requested event for the sender's game.  Approved
// events are persisted and broadcast; rejected events are reported back to
// the sender only.
func (e *Engine) handleMessage(ctx context.Context, k registry.Key, m message.Message) {
	p, ok := m.Payload.(message.EventPayload)
	if !ok || p.Status != message.Requested {
		if e.Debug {
			e.Log.Printf("ignoring %v message from %+v", m.Type, k)
		}
		return
	}
	rec, ok := e.games[k.GameID]
	if !ok {
		e.reject(k, p.Event, fmt.Sprintf("game %v was not initialised", k.GameID))
		return
	}
	if err := e.applyEvent(ctx, rec, p.Event); err != nil {
		e.Log.Printf("rejecting event %v of game %v: %v", p.Event.Sequence, rec.id, err)
		e.reject(k, p.Event, err.Error())
		return
	}
	if params, ok := p.Event.Params.(event.PlayerMoveParams); ok {
		e.refill(ctx, rec, params.Player)
	}
}

// reject reports a failed event back to its sender.
func (e *Engine) reject(k registry.Key, ev event.Event, reason string) {
	m := message.New(message.EventPayload{
		Event:  ev,
		Status: message.Rejected,
		Reason: reason,
	})
	if err := e.pub.SendTo(k, m); err != nil {
		e.Log.Printf("reporting rejected event to %+v: %v", k, err)
	}
}

// applyEvent validates the event through the reducer and, on success,
// persists the grown event list and broadcasts the event as approved.
func (e *Engine) applyEvent(ctx context.Context, rec *gameRecord, ev event.Event) error {
	if err := rec.state.Apply(ev); err != nil {
		return err
	}
	rec.events = append(rec.events, ev)
	if err := e.store.Write(ctx, rec.id, rec.events); err != nil {
		e.Log.Printf("persisting events of game %v: %v", rec.id, err)
	}
	e.pub.PublishToGame(message.New(message.EventPayload{
		Event:  ev,
		Status: message.Approved,
	}), rec.id, nil)
	return nil
}

// refill deals the player back up to a full hand from the head of the pool.
func (e *Engine) refill(ctx context.Context, rec *gameRecord, username string) {
	p, err := rec.state.Player(username)
	if err != nil {
		e.Log.Printf("refilling hand in game %v: %v", rec.id, err)
		return
	}
	need := game.PlayerMaxLetters - len(p.Letters)
	if need <= 0 {
		return
	}
	pool := rec.state.Letters()
	if need > len(pool) {
		need = len(pool)
	}
	if need == 0 {
		return
	}
	ev := event.New(rec.id, rec.state.Sequence()+1, e.TimeFunc(), event.PlayerAddLettersParams{
		Player:  username,
		Letters: pool[:need],
	})
	if err := e.applyEvent(ctx, rec, ev); err != nil {
		e.Log.Printf("refilling hand in game %v: %v", rec.id, err)
	}
}

func (e *Engine) handleNewGame() game.ID {
	id := e.GameIDFunc()
	for _, ok := e.games[id]; ok; _, ok = e.games[id] {
		id++
	}
	e.games[id] = &gameRecord{
		id:    id,
		state: state.New(id),
	}
	e.Log.Printf("initialised new game %v", id)
	return id
}

func (e *Engine) handleLoadGame(ctx context.Context, id game.ID) error {
	events, err := e.store.Read(ctx, id)
	if err != nil {
		return fmt.Errorf("loading game %v: %w", id, err)
	}
	st, err := state.NewFromEvents(id, events)
	if err != nil {
		return fmt.Errorf("loading game %v: %w", id, err)
	}
	rec := &gameRecord{
		id:     id,
		events: events,
		state:  st,
	}
	if old, ok := e.games[id]; ok {
		rec.connected = old.connected
	}
	e.games[id] = rec
	e.Log.Printf("loaded game %v with %v events", id, len(events))
	return nil
}

// handleStartGame deals the currently connected players into the game: a
// GameInit with the shuffled bag and mirrored bonuses, a full hand for each
// player, and a GameStart naming the first player.
func (e *Engine) handleStartGame(ctx context.Context, id game.ID, initWord string) error {
	rec, ok := e.games[id]
	if !ok {
		return fmt.Errorf("starting game %v: game was not initialised", id)
	}
	if len(rec.events) > 0 {
		return fmt.Errorf("starting game %v: game already started", id)
	}
	if len(rec.connected) == 0 {
		return fmt.Errorf("starting game %v: no players connected", id)
	}
	distribution, err := bag.Distribution(e.Lang)
	if err != nil {
		return fmt.Errorf("starting game %v: %w", id, err)
	}
	bagCfg := bag.Config{
		LettersCount: e.BoardWidth * e.BoardHeight,
		Distribution: distribution,
		ShuffleFunc:  e.ShuffleFunc,
	}
	letterBag, err := bagCfg.New()
	if err != nil {
		return fmt.Errorf("starting game %v: %w", id, err)
	}
	players := make([]string, len(rec.connected))
	copy(players, rec.connected)
	initEvent := event.New(id, 1, e.TimeFunc(), event.GameInitParams{
		Players: players,
		Letters: letterBag.Letters(),
		Lang:    e.Lang,
		BoardSettings: board.Settings{
			Width:  e.BoardWidth,
			Height: e.BoardHeight,
			InitWord: &board.Word{
				Word:      initWord,
				X:         (e.BoardWidth + 1 - len(initWord)) / 2,
				Y:         e.BoardHeight / 2,
				Direction: board.Right,
			},
			Bonuses: mirrorBonuses(bonusSeeds, e.BoardWidth, e.BoardHeight),
		},
	})
	if err := e.applyEvent(ctx, rec, initEvent); err != nil {
		return fmt.Errorf("starting game %v: %w", id, err)
	}
	for _, username := range players {
		if len(rec.state.Letters()) < game.PlayerMaxLetters {
			return fmt.Errorf("starting game %v: not enough letters to deal %v", id, username)
		}
		ev := event.New(id, rec.state.Sequence()+1, e.TimeFunc(), event.PlayerAddLettersParams{
			Player:  username,
			Letters: rec.state.Letters()[:game.PlayerMaxLetters],
		})
		if err := e.applyEvent(ctx, rec, ev); err != nil {
			return fmt.Errorf("starting game %v: dealing %v: %w", id, username, err)
		}
	}
	startEvent := event.New(id, rec.state.Sequence()+1, e.TimeFunc(), event.GameStartParams{
		PlayerToStart: &players[0],
	})
	if err := e.applyEvent(ctx, rec, startEvent); err != nil {
		return fmt.Errorf("starting game %v: %w", id, err)
	}
	e.Log.Printf("started game %v with players %v", id, players)
	return nil
}

// mirrorBonuses reflects each seed bonus into all four quadrants.
func mirrorBonuses(seeds []board.Bonus, width, height int) []board.Bonus {
	bonuses := make([]board.Bonus, 0, 4*len(seeds))
	for _, seed := range seeds {
		bonuses = append(bonuses,
			board.Bonus{X: seed.X, Y: seed.Y, Multiplier: seed.Multiplier},
			board.Bonus{X: seed.X, Y: height - seed.Y, Multiplier: seed.Multiplier},
			board.Bonus{X: width - seed.X, Y: height - seed.Y, Multiplier: seed.Multiplier},
			board.Bonus{X: width - seed.X, Y: seed.Y, Multiplier: seed.Multiplier},
		)
	}
	return bonuses
}

// addConnected records the player, keeping join order for the deal.
func (rec *gameRecord) addConnected(username string) {
	for _, u := range rec.connected {
		if u == username {
			return
		}
	}
	rec.connected = append(rec.connected, username)
}

func (rec *gameRecord) removeConnected(username string) {
	for i, u := range rec.connected {
		if u == username {
			rec.connected = append(rec.connected[:i], rec.connected[i+1:]...)
			return
		}
	}
}
