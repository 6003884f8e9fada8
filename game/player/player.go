// Package player tracks the hand and score of one player in a game.
package player

import (
	"fmt"

	"github.com/kmelnikov/scrabbled/game"
)

// Player is a participant of a game.
type Player struct {
	Username string
	Score    int
	Letters  []game.Letter
}

// New creates a player with an empty hand and a zero score.
func New(username string) *Player {
	return &Player{
		Username: username,
	}
}

// Fill adds the letters to the player's hand.  The resulting hand must hold
// exactly the maximum hand size; the hand is not changed on error.
func (p *Player) Fill(letters []game.Letter) error {
	if len(p.Letters)+len(letters) != game.PlayerMaxLetters {
		return fmt.Errorf("filling hand: %v letters held and %v added, hand must end up with %v",
			len(p.Letters), len(letters), game.PlayerMaxLetters)
	}
	p.Letters = append(p.Letters, letters...)
	return nil
}

// Play removes the letters from the player's hand.  If any letter is not
// held, no letters are removed.
func (p *Player) Play(letters []game.Letter) error {
	hand := make([]game.Letter, len(p.Letters))
	copy(hand, p.Letters)
	for _, l := range letters {
		var ok bool
		if hand, ok = game.RemoveLetter(hand, l); !ok {
			return fmt.Errorf("playing letters: no %v in hand", l)
		}
	}
	p.Letters = hand
	return nil
}

// AddScore changes the player's score by delta.  The score cannot become
// negative.
func (p *Player) AddScore(delta int) error {
	if p.Score+delta < 0 {
		return fmt.Errorf("adding score: %v%+v is negative", p.Score, delta)
	}
	p.Score += delta
	return nil
}
