// Package game contains identifiers and values shared by the board, the
// reducer, the event log, and the server.
package game

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

type (
	// ID is the id of a game.
	ID int

	// Letter is a single character on a tile.  Letters travel between the
	// bag, player hands, and the board; on the wire each letter is a
	// one-character JSON string.
	Letter rune
)

const (
	// PlayerMaxLetters is the exact number of letters every player holds
	// between moves.
	PlayerMaxLetters = 7
	// AllLettersBonus is added to the move score when a player places all
	// of their letters in a single move.
	AllLettersBonus = 50
)

// String returns the letter as a string.
func (l Letter) String() string {
	return string(rune(l))
}

// MarshalJSON implements the encoding/json.Marshaler interface.
func (l Letter) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(rune(l)))
}

// UnmarshalJSON implements the encoding/json.Unmarshaler interface.
// Only one-character strings are valid letters.
func (l *Letter) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("unmarshalling letter: %w", err)
	}
	if utf8.RuneCountInString(s) != 1 {
		return fmt.Errorf("letter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	*l = Letter(r)
	return nil
}

// Letters converts a word into its letters.
func Letters(word string) []Letter {
	letters := make([]Letter, 0, len(word))
	for _, r := range word {
		letters = append(letters, Letter(r))
	}
	return letters
}

// CountLetters builds a multiset of the letters, mapping each letter to the
// number of times it occurs.
func CountLetters(letters []Letter) map[Letter]int {
	counts := make(map[Letter]int, len(letters))
	for _, l := range letters {
		counts[l]++
	}
	return counts
}

// RemoveLetter removes one instance of the letter from the slice, returning
// the shortened slice and whether the letter was present.  The source slice
// is not modified.
func RemoveLetter(letters []Letter, l Letter) ([]Letter, bool) {
	for i, l2 := range letters {
		if l2 == l {
			removed := make([]Letter, 0, len(letters)-1)
			removed = append(removed, letters[:i]...)
			removed = append(removed, letters[i+1:]...)
			return removed, true
		}
	}
	return letters, false
}
