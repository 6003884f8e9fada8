// Package event defines the typed events a game is recorded as and their
// wire serialization.
package event

import (
	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/game/board"
)

type (
	// Name identifies the type of an event.
	Name string

	// Params is the event-specific payload of an event.  The concrete type is
	// determined by the event name.
	Params interface {
		name() Name
	}

	// Event is an immutable record of one state transition of a game.
	Event struct {
		Name      Name
		Sequence  int
		GameID    game.ID
		Timestamp int64
		Params    Params
	}

	// GameInitParams creates the game: its players, the full shuffled letter
	// pool, and the board geometry.
	GameInitParams struct {
		Players       []string       `json:"players"`
		Letters       []game.Letter  `json:"letters"`
		Lang          string         `json:"lang,omitempty"`
		BoardSettings board.Settings `json:"board_settings"`
	}

	// GameStartParams starts the game, optionally naming the player to move
	// first.
	GameStartParams struct {
		PlayerToStart *string `json:"player_to_start"`
	}

	// PlayerAddLettersParams deals letters from the pool to a player.
	PlayerAddLettersParams struct {
		Player  string        `json:"player"`
		Letters []game.Letter `json:"letters"`
	}

	// PlayerMoveParams places words on the board for a player, optionally
	// discarding letters from the hand.
	PlayerMoveParams struct {
		Player          string        `json:"player"`
		Words           board.Words   `json:"words"`
		ExchangeLetters []game.Letter `json:"exchange_letters,omitempty"`
	}
)

const (
	// GameInit is the name of the event that creates a game.
	GameInit Name = "GAME_INIT"
	// GameStart is the name of the event that starts a game.
	GameStart Name = "GAME_START"
	// PlayerAddLetters is the name of the event that deals letters.
	PlayerAddLetters Name = "PLAYER_ADD_LETTERS"
	// PlayerMove is the name of the event that places words.
	PlayerMove Name = "PLAYER_MOVE"
)

func (GameInitParams) name() Name         { return GameInit }
func (GameStartParams) name() Name        { return GameStart }
func (PlayerAddLettersParams) name() Name { return PlayerAddLetters }
func (PlayerMoveParams) name() Name       { return PlayerMove }

// New creates an event for the params, deriving the name from the params
// type.
func New(gameID game.ID, sequence int, timestamp int64, params Params) Event {
	return Event{
		Name:      params.name(),
		Sequence:  sequence,
		GameID:    gameID,
		Timestamp: timestamp,
		Params:    params,
	}
}
