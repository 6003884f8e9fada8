// Package board stores the words placed in a game and validates the
// geometry, letter consistency, and scoring of new placements.
package board

import (
	"fmt"
	"sort"

	"github.com/kmelnikov/scrabbled/game"
)

type (
	// Direction is the axis a word is written along.
	Direction int

	// Position is a cell on the board.
	Position struct {
		X int
		Y int
	}

	// Bonus is a board cell that multiplies the score of words covering it.
	Bonus struct {
		X          int `json:"location_x"`
		Y          int `json:"location_y"`
		Multiplier int `json:"multiplier"`
	}

	// Settings describes the geometry of a board before any moves are made.
	Settings struct {
		Width    int     `json:"width"`
		Height   int     `json:"height"`
		InitWord *Word   `json:"init_word"`
		Bonuses  []Bonus `json:"bonuses"`
	}

	// Word is a directed word anchored at a start position.
	Word struct {
		Word      string    `json:"word"`
		X         int       `json:"start_x"`
		Y         int       `json:"start_y"`
		Direction Direction `json:"direction"`
	}

	// Words is an ordered collection of words whose overlapping positions
	// are guaranteed to carry the same letter.
	Words struct {
		Words []Word `json:"words"`
	}

	// Board accumulates the words of a game and scores new placements.
	Board struct {
		settings    Settings
		words       Words
		multipliers map[Position]int
	}

	// IntersectionError reports a placement that violates the word
	// intersection rules: conflicting letters at a shared position, a word
	// that adds no new letters, or a word that does not connect to the
	// rest of the board.
	IntersectionError struct {
		Reason string
	}
)

const (
	// Right words extend along increasing x.
	Right Direction = iota
	// Down words extend along increasing y.
	Down
)

const (
	// MinWidth is the smallest allowed board width.
	MinWidth = 10
	// MinHeight is the smallest allowed board height.
	MinHeight = 10
)

// Error implements the error interface.
func (e IntersectionError) Error() string {
	return "word intersection: " + e.Reason
}

// Letters returns the letters of the word, in order.
func (w Word) Letters() []game.Letter {
	return game.Letters(w.Word)
}

// Len returns the number of letters in the word.
func (w Word) Len() int {
	return len(w.Letters())
}

// Path returns the positions the word covers, in letter order.
func (w Word) Path() []Position {
	path := make([]Position, w.Len())
	for i := range path {
		switch w.Direction {
		case Right:
			path[i] = Position{X: w.X + i, Y: w.Y}
		default:
			path[i] = Position{X: w.X, Y: w.Y + i}
		}
	}
	return path
}

// LetterAt returns the letter the word places at the position, if the
// position is on the word's path.
func (w Word) LetterAt(x, y int) (game.Letter, bool) {
	var offset int
	switch w.Direction {
	case Right:
		if y != w.Y {
			return 0, false
		}
		offset = x - w.X
	default:
		if x != w.X {
			return 0, false
		}
		offset = y - w.Y
	}
	letters := w.Letters()
	if offset < 0 || offset >= len(letters) {
		return 0, false
	}
	return letters[offset], true
}

// Intersection returns the positions shared by both words, ordered by x,
// then y.  An IntersectionError is returned if the words disagree about the
// letter at any shared position.
func (w Word) Intersection(other Word) ([]Position, error) {
	var shared []Position
	for _, p := range w.Path() {
		l2, ok := other.LetterAt(p.X, p.Y)
		if !ok {
			continue
		}
		l1, _ := w.LetterAt(p.X, p.Y)
		if l1 != l2 {
			return nil, IntersectionError{
				Reason: fmt.Sprintf("conflicting letters %v and %v at (%v,%v)", l1, l2, p.X, p.Y),
			}
		}
		shared = append(shared, p)
	}
	sort.Slice(shared, func(i, j int) bool {
		if shared[i].X != shared[j].X {
			return shared[i].X < shared[j].X
		}
		return shared[i].Y < shared[j].Y
	})
	return shared, nil
}

// Intersects determines if the words share at least one position with
// agreeing letters.
func (w Word) Intersects(other Word) bool {
	shared, err := w.Intersection(other)
	return err == nil && len(shared) > 0
}

// NewWords collects the words, validating pairwise letter consistency.
func NewWords(words ...Word) (*Words, error) {
	ws := new(Words)
	for _, w := range words {
		if err := ws.Add(w); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// Add appends a word after re-validating letter consistency against every
// existing word in the collection.
func (ws *Words) Add(w Word) error {
	if len(w.Word) == 0 {
		return fmt.Errorf("adding word: word must not be empty")
	}
	for _, w2 := range ws.Words {
		if _, err := w2.Intersection(w); err != nil {
			return err
		}
	}
	ws.Words = append(ws.Words, w)
	return nil
}

// Validate checks the pairwise letter consistency of the collection.  Words
// decoded from the wire are not checked on construction, so the board
// validates them before use.
func (ws Words) Validate() error {
	for i, w := range ws.Words {
		if len(w.Word) == 0 {
			return fmt.Errorf("word %v must not be empty", i)
		}
		for _, w2 := range ws.Words[:i] {
			if _, err := w2.Intersection(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// LetterAt returns the letter at the position from the first word covering
// it.  All member words agree about shared positions by invariant.
func (ws Words) LetterAt(x, y int) (game.Letter, bool) {
	for _, w := range ws.Words {
		if l, ok := w.LetterAt(x, y); ok {
			return l, true
		}
	}
	return 0, false
}

// Positions returns the union of the paths of all member words.
func (ws Words) Positions() map[Position]struct{} {
	positions := make(map[Position]struct{})
	for _, w := range ws.Words {
		for _, p := range w.Path() {
			positions[p] = struct{}{}
		}
	}
	return positions
}

// Validate checks the board dimensions, the bonus positions, and the initial
// word path.
func (s Settings) Validate() error {
	switch {
	case s.Width < MinWidth:
		return fmt.Errorf("board width must be at least %v", MinWidth)
	case s.Height < MinHeight:
		return fmt.Errorf("board height must be at least %v", MinHeight)
	}
	for _, b := range s.Bonuses {
		switch {
		case b.X < 0, b.X >= s.Width:
			return fmt.Errorf("bonus x position must be in 0..%v", s.Width-1)
		case b.Y < 0, b.Y >= s.Height:
			return fmt.Errorf("bonus y position must be in 0..%v", s.Height-1)
		case b.Multiplier < 1:
			return fmt.Errorf("bonus multiplier must be at least 1")
		}
	}
	if s.InitWord != nil {
		for _, p := range s.InitWord.Path() {
			if !s.contains(p) {
				return fmt.Errorf("initial word position (%v,%v) is out of the board", p.X, p.Y)
			}
		}
	}
	return nil
}

// contains determines if the position is on the board.
func (s Settings) contains(p Position) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// New creates a board from the settings, placing the initial word if one is
// configured.
func New(settings Settings) (*Board, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("creating board: validation: %w", err)
	}
	multipliers := make(map[Position]int, len(settings.Bonuses))
	for _, bonus := range settings.Bonuses {
		multipliers[Position{X: bonus.X, Y: bonus.Y}] = bonus.Multiplier
	}
	b := Board{
		settings:    settings,
		multipliers: multipliers,
	}
	if settings.InitWord != nil {
		if err := b.words.Add(*settings.InitWord); err != nil {
			return nil, fmt.Errorf("creating board: placing initial word: %w", err)
		}
	}
	return &b, nil
}

// Settings returns the settings the board was created with.
func (b Board) Settings() Settings {
	return b.settings
}

// Words returns a copy of the words placed on the board, in placement order.
func (b Board) Words() []Word {
	words := make([]Word, len(b.words.Words))
	copy(words, b.words.Words)
	return words
}

// LetterAt returns the letter at the position, if any word covers it.
func (b Board) LetterAt(x, y int) (game.Letter, bool) {
	return b.words.LetterAt(x, y)
}

// Letters returns the multiset of letters currently placed on the board,
// one letter per occupied position.
func (b Board) Letters() []game.Letter {
	positions := b.words.Positions()
	letters := make([]game.Letter, 0, len(positions))
	for p := range positions {
		l, _ := b.words.LetterAt(p.X, p.Y)
		letters = append(letters, l)
	}
	return letters
}

// LettersToPlace returns the multiset of letters the words would add to the
// board: the letters at positions of the union of their paths that no
// existing word covers.  This is what the moving player must spend.
func (b Board) LettersToPlace(words Words) []game.Letter {
	positions := make([]Position, 0, len(words.Positions()))
	for p := range words.Positions() {
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].X != positions[j].X {
			return positions[i].X < positions[j].X
		}
		return positions[i].Y < positions[j].Y
	})
	var letters []game.Letter
	for _, p := range positions {
		if _, ok := b.words.LetterAt(p.X, p.Y); ok {
			continue
		}
		if l, ok := words.LetterAt(p.X, p.Y); ok {
			letters = append(letters, l)
		}
	}
	return letters
}

// InsertWord places a single word, returning its score.
func (b *Board) InsertWord(w Word) (int, error) {
	return b.InsertWords(Words{Words: []Word{w}})
}

// InsertWords atomically places the words, returning the total score.  The
// whole placement is validated before the board is modified: the words must
// agree with each other and with the board at every shared position, stay in
// bounds, each add at least one letter not already covered by the board or by
// an earlier word of the same call, and together form a single
// group connected to the existing board (or to each other when the board is
// empty).
func (b *Board) InsertWords(words Words) (int, error) {
	if len(words.Words) == 0 {
		return 0, fmt.Errorf("inserting words: at least one word required")
	}
	if err := words.Validate(); err != nil {
		return 0, err
	}
	occupied := b.words.Positions()
	placed := make(map[Position]struct{})
	for _, w := range words.Words {
		newLetters := 0
		for _, p := range w.Path() {
			if !b.settings.contains(p) {
				return 0, fmt.Errorf("word %q position (%v,%v) is out of the board", w.Word, p.X, p.Y)
			}
			existing, onBoard := b.words.LetterAt(p.X, p.Y)
			l, _ := w.LetterAt(p.X, p.Y)
			_, bySibling := placed[p]
			switch {
			case onBoard && existing != l:
				return 0, IntersectionError{
					Reason: fmt.Sprintf("word %q conflicts with letter %v at (%v,%v)", w.Word, existing, p.X, p.Y),
				}
			case !onBoard && !bySibling:
				newLetters++
			}
		}
		// every position is already covered by the board or by an earlier
		// word of the same move
		if newLetters == 0 {
			return 0, IntersectionError{
				Reason: fmt.Sprintf("word %q adds no new letters", w.Word),
			}
		}
		for _, p := range w.Path() {
			placed[p] = struct{}{}
		}
	}
	if err := b.validateConnected(words, occupied); err != nil {
		return 0, err
	}
	score := 0
	for _, w := range words.Words {
		score += b.scoreWord(w)
	}
	b.words.Words = append(b.words.Words, words.Words...)
	return score, nil
}

// validateConnected checks that every candidate word can be reached, via
// shared positions, from the existing board, or from the first candidate
// when the board is empty.
func (b Board) validateConnected(words Words, occupied map[Position]struct{}) error {
	reached := make([]bool, len(words.Words))
	var frontier []int
	switch {
	case len(occupied) > 0:
		for i, w := range words.Words {
			for _, p := range w.Path() {
				if _, ok := occupied[p]; ok {
					reached[i] = true
					frontier = append(frontier, i)
					break
				}
			}
		}
		if len(frontier) == 0 {
			return IntersectionError{
				Reason: "words must intersect at least one existing word",
			}
		}
	default:
		reached[0] = true
		frontier = append(frontier, 0)
	}
	for len(frontier) > 0 {
		i := frontier[0]
		frontier = frontier[1:]
		for j, w := range words.Words {
			if !reached[j] && words.Words[i].Intersects(w) {
				reached[j] = true
				frontier = append(frontier, j)
			}
		}
	}
	for i, ok := range reached {
		if !ok {
			return IntersectionError{
				Reason: fmt.Sprintf("word %q does not connect to the other words", words.Words[i].Word),
			}
		}
	}
	return nil
}

// scoreWord computes the score of one newly placed word: the word length
// times the sum of the bonus multipliers its path covers, or times one if no
// bonus is covered.  Bonuses are not consumed after use.
func (b Board) scoreWord(w Word) int {
	multiplier := 0
	for _, p := range w.Path() {
		if m, ok := b.multipliers[p]; ok && m > 1 {
			multiplier += m
		}
	}
	if multiplier < 1 {
		multiplier = 1
	}
	return w.Len() * multiplier
}
