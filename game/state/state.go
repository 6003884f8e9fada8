// Package state folds the events of a game into its authoritative state.
package state

import (
	"fmt"

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/game/board"
	"github.com/kmelnikov/scrabbled/game/event"
	"github.com/kmelnikov/scrabbled/game/player"
)

// State is the result of folding an ordered event sequence for one game.
// Events mutate it only through Apply; a failed Apply leaves it unchanged.
type State struct {
	gameID        game.ID
	sequence      int
	playersOrder  []*player.Player
	playersByName map[string]*player.Player
	turnIdx       int
	turnSet       bool
	pool          []game.Letter
	board         *board.Board
}

// New creates the empty state of a game before any events are applied.
func New(gameID game.ID) *State {
	return &State{
		gameID:        gameID,
		playersByName: make(map[string]*player.Player),
	}
}

// NewFromEvents creates a state by applying the events in order.
func NewFromEvents(gameID game.ID, events []event.Event) (*State, error) {
	s := New(gameID)
	for _, e := range events {
		if err := s.Apply(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// GameID returns the id of the game the state is for.
func (s State) GameID() game.ID {
	return s.gameID
}

// Sequence returns the sequence number of the last applied event.
func (s State) Sequence() int {
	return s.sequence
}

// Letters returns a copy of the remaining letter pool, in deal order.
func (s State) Letters() []game.Letter {
	letters := make([]game.Letter, len(s.pool))
	copy(letters, s.pool)
	return letters
}

// Players returns the usernames of the players in turn order.
func (s State) Players() []string {
	players := make([]string, len(s.playersOrder))
	for i, p := range s.playersOrder {
		players[i] = p.Username
	}
	return players
}

// Player returns a copy of the named player's state.
func (s State) Player(username string) (player.Player, error) {
	p, ok := s.playersByName[username]
	if !ok {
		return player.Player{}, fmt.Errorf("no player %v in game %v", username, s.gameID)
	}
	letters := make([]game.Letter, len(p.Letters))
	copy(letters, p.Letters)
	return player.Player{
		Username: p.Username,
		Score:    p.Score,
		Letters:  letters,
	}, nil
}

// PlayerToMove returns the username of the player whose turn it is.  The
// second return value is false before the game is started.
func (s State) PlayerToMove() (string, bool) {
	if !s.turnSet {
		return "", false
	}
	return s.playersOrder[s.turnIdx].Username, true
}

// Board returns the board, or nil before the game is initialised.
func (s State) Board() *board.Board {
	return s.board
}

// Apply validates and applies the event.  The event must belong to this game
// and carry the next contiguous sequence number.  If the event cannot be
// applied, an error is returned and the state is not changed.
func (s *State) Apply(e event.Event) error {
	if e.GameID != s.gameID {
		return fmt.Errorf("applying event: wanted game id %v, got %v", s.gameID, e.GameID)
	}
	if e.Sequence != s.sequence+1 {
		return fmt.Errorf("applying event: wanted sequence %v, got %v", s.sequence+1, e.Sequence)
	}
	var err error
	switch params := e.Params.(type) {
	case event.GameInitParams:
		err = s.applyGameInit(params)
	case event.GameStartParams:
		err = s.applyGameStart(params)
	case event.PlayerAddLettersParams:
		err = s.applyPlayerAddLetters(params)
	case event.PlayerMoveParams:
		err = s.applyPlayerMove(params)
	default:
		err = fmt.Errorf("unknown event %v", e.Name)
	}
	if err != nil {
		return fmt.Errorf("applying event %v of game %v: %w", e.Sequence, s.gameID, err)
	}
	s.sequence = e.Sequence
	return nil
}

func (s *State) applyGameInit(params event.GameInitParams) error {
	if s.board != nil {
		return fmt.Errorf("game already initialised")
	}
	seen := make(map[string]struct{}, len(params.Players))
	for _, username := range params.Players {
		if _, ok := seen[username]; ok {
			return fmt.Errorf("duplicate player %v", username)
		}
		seen[username] = struct{}{}
	}
	b, err := board.New(params.BoardSettings)
	if err != nil {
		return err
	}
	s.board = b
	s.pool = make([]game.Letter, len(params.Letters))
	copy(s.pool, params.Letters)
	for _, username := range params.Players {
		p := player.New(username)
		s.playersOrder = append(s.playersOrder, p)
		s.playersByName[username] = p
	}
	return nil
}

func (s *State) applyGameStart(params event.GameStartParams) error {
	if s.board == nil {
		return fmt.Errorf("game not initialised")
	}
	if len(s.playersOrder) == 0 {
		return fmt.Errorf("game has no players")
	}
	if params.PlayerToStart == nil {
		s.turnIdx = 0
		s.turnSet = true
		return nil
	}
	for i, p := range s.playersOrder {
		if p.Username == *params.PlayerToStart {
			s.turnIdx = i
			s.turnSet = true
			return nil
		}
	}
	return fmt.Errorf("unknown player to start: %v", *params.PlayerToStart)
}

func (s *State) applyPlayerAddLetters(params event.PlayerAddLettersParams) error {
	if s.board == nil {
		return fmt.Errorf("game not initialised")
	}
	p, ok := s.playersByName[params.Player]
	if !ok {
		return fmt.Errorf("no player %v", params.Player)
	}
	if len(p.Letters)+len(params.Letters) != game.PlayerMaxLetters {
		return fmt.Errorf("%v letters held and %v dealt, hand must end up with %v",
			len(p.Letters), len(params.Letters), game.PlayerMaxLetters)
	}
	pool := make([]game.Letter, len(s.pool))
	copy(pool, s.pool)
	for _, l := range params.Letters {
		if pool, ok = game.RemoveLetter(pool, l); !ok {
			return fmt.Errorf("no %v left in pool", l)
		}
	}
	if err := p.Fill(params.Letters); err != nil {
		return err
	}
	s.pool = pool
	return nil
}

func (s *State) applyPlayerMove(params event.PlayerMoveParams) error {
	if s.board == nil {
		return fmt.Errorf("game not initialised")
	}
	if !s.turnSet {
		return fmt.Errorf("game not started")
	}
	p, ok := s.playersByName[params.Player]
	if !ok {
		return fmt.Errorf("no player %v", params.Player)
	}
	if s.playersOrder[s.turnIdx] != p {
		return fmt.Errorf("it is not %v's turn", params.Player)
	}
	played := s.board.LettersToPlace(params.Words)
	// fail the hand check before the board is modified
	spent := append(played, params.ExchangeLetters...)
	hand := make([]game.Letter, len(p.Letters))
	copy(hand, p.Letters)
	for _, l := range spent {
		if hand, ok = game.RemoveLetter(hand, l); !ok {
			return fmt.Errorf("no %v in %v's hand", l, params.Player)
		}
	}
	score, err := s.board.InsertWords(params.Words)
	if err != nil {
		return err
	}
	if len(played) == game.PlayerMaxLetters {
		score += game.AllLettersBonus
	}
	if err := p.AddScore(score); err != nil {
		return err
	}
	p.Letters = hand
	s.turnIdx = (s.turnIdx + 1) % len(s.playersOrder)
	return nil
}
