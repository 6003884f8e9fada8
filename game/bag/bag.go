// Package bag creates the pool of letters a game is played with.
package bag

import (
	"fmt"
	"math"
	"sort"

	"github.com/kmelnikov/scrabbled/game"
)

type (
	// ShuffleFunc is used to randomize the order of letters in the bag.
	ShuffleFunc func(letters []game.Letter)

	// Config contains the fields needed to create a letter bag.
	Config struct {
		// LettersCount is the total number of letters the bag holds.
		LettersCount int
		// Distribution maps each letter to its relative weight.
		Distribution map[game.Letter]int
		// ShuffleFunc randomizes the bag after it is filled.
		ShuffleFunc ShuffleFunc
	}

	// Bag is a finite pool of letters drawn from a weighted distribution.
	Bag struct {
		letters []game.Letter
	}
)

func (cfg Config) validate() error {
	switch {
	case cfg.LettersCount < 1:
		return fmt.Errorf("positive letter count required")
	case len(cfg.Distribution) == 0:
		return fmt.Errorf("letter distribution required")
	case len(cfg.Distribution) > cfg.LettersCount:
		return fmt.Errorf("letter count must be at least the distribution size (%v)", len(cfg.Distribution))
	case cfg.ShuffleFunc == nil:
		return fmt.Errorf("shuffle func required")
	}
	for l, weight := range cfg.Distribution {
		if weight < 1 {
			return fmt.Errorf("weight for letter %v must be positive", l)
		}
	}
	return nil
}

// New creates a shuffled bag of exactly LettersCount letters.  Every letter of
// the distribution occurs at least once; the rest of the bag approximates the
// distribution weights.
func (cfg Config) New() (*Bag, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating letter bag: validation: %w", err)
	}
	b := Bag{
		letters: cfg.fill(),
	}
	cfg.ShuffleFunc(b.letters)
	return &b, nil
}

// fill lays out the letters before shuffling.  Each distribution letter is
// included once, then weight-proportional counts of each are added, then any
// rounding deficit is topped up from the heaviest letters.
func (cfg Config) fill() []game.Letter {
	sorted := make([]game.Letter, 0, len(cfg.Distribution))
	totalWeight := 0
	for l, weight := range cfg.Distribution {
		sorted = append(sorted, l)
		totalWeight += weight
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	letters := make([]game.Letter, 0, cfg.LettersCount)
	letters = append(letters, sorted...)
	remaining := cfg.LettersCount - len(letters)
	for _, l := range sorted {
		n := int(math.RoundToEven(float64(remaining*cfg.Distribution[l]) / float64(totalWeight)))
		for i := 0; i < n; i++ {
			letters = append(letters, l)
		}
	}
	if len(letters) > cfg.LettersCount {
		return letters[:cfg.LettersCount]
	}
	byWeight := make([]game.Letter, len(sorted))
	copy(byWeight, sorted)
	sort.SliceStable(byWeight, func(i, j int) bool {
		return cfg.Distribution[byWeight[i]] > cfg.Distribution[byWeight[j]]
	})
	for i := 0; len(letters) < cfg.LettersCount; i++ {
		letters = append(letters, byWeight[i%len(byWeight)])
	}
	return letters
}

// Len returns the number of letters left in the bag.
func (b Bag) Len() int {
	return len(b.letters)
}

// Letters returns a copy of the letters in the bag, in bag order.
func (b Bag) Letters() []game.Letter {
	letters := make([]game.Letter, len(b.letters))
	copy(letters, b.letters)
	return letters
}

// Remove takes the first occurrence of the letter out of the bag.
func (b *Bag) Remove(l game.Letter) error {
	letters, ok := game.RemoveLetter(b.letters, l)
	if !ok {
		return fmt.Errorf("removing letter: no %v in bag", l)
	}
	b.letters = letters
	return nil
}
