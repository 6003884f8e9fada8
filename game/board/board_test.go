package board

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kmelnikov/scrabbled/game"
)

func TestWordPath(t *testing.T) {
	wordPathTests := []struct {
		Word
		want []Position
	}{
		{
			Word: Word{Word: "cat", X: 9, Y: 10, Direction: Right},
			want: []Position{{9, 10}, {10, 10}, {11, 10}},
		},
		{
			Word: Word{Word: "cat", X: 9, Y: 10, Direction: Down},
			want: []Position{{9, 10}, {9, 11}, {9, 12}},
		},
		{
			Word: Word{Word: "a", X: 0, Y: 0, Direction: Right},
			want: []Position{{0, 0}},
		},
	}
	for i, test := range wordPathTests {
		got := test.Word.Path()
		if !reflect.DeepEqual(test.want, got) {
			t.Errorf("Test %v: wanted path %v, got %v", i, test.want, got)
		}
	}
}

func TestWordLetterAt(t *testing.T) {
	wordLetterAtTests := []struct {
		Word
		x, y int
		want game.Letter
		ok   bool
	}{
		{Word: Word{Word: "word", X: 0, Y: 0, Direction: Right}, x: 0, y: 0, want: 'w', ok: true},
		{Word: Word{Word: "word", X: 0, Y: 0, Direction: Right}, x: 3, y: 0, want: 'd', ok: true},
		{Word: Word{Word: "word", X: 0, Y: 0, Direction: Right}, x: 4, y: 0},
		{Word: Word{Word: "word", X: 0, Y: 0, Direction: Right}, x: 1, y: 1},
		{Word: Word{Word: "wiki", X: 0, Y: 0, Direction: Down}, x: 0, y: 3, want: 'i', ok: true},
		{Word: Word{Word: "wiki", X: 0, Y: 0, Direction: Down}, x: 1, y: 1},
	}
	for i, test := range wordLetterAtTests {
		got, ok := test.Word.LetterAt(test.x, test.y)
		switch {
		case ok != test.ok:
			t.Errorf("Test %v: wanted ok = %v, got %v", i, test.ok, ok)
		case ok && got != test.want:
			t.Errorf("Test %v: wanted letter %q, got %q", i, test.want, got)
		}
	}
}

func TestWordIntersection(t *testing.T) {
	wordIntersectionTests := []struct {
		a, b       Word
		intersects bool
		wantErr    bool
	}{
		{ // identical words share every position
			a:          Word{Word: "word", X: 0, Y: 0, Direction: Right},
			b:          Word{Word: "word", X: 0, Y: 0, Direction: Right},
			intersects: true,
		},
		{ // adjacent, no shared position
			a: Word{Word: "word", X: 0, Y: 0, Direction: Right},
			b: Word{Word: "word", X: 4, Y: 0, Direction: Right},
		},
		{ // crossing at the shared first letter
			a:          Word{Word: "word", X: 0, Y: 0, Direction: Right},
			b:          Word{Word: "word", X: 0, Y: 0, Direction: Down},
			intersects: true,
		},
		{ // crossing with conflicting letters
			a:       Word{Word: "word", X: 0, Y: 0, Direction: Right},
			b:       Word{Word: "star", X: 0, Y: 0, Direction: Down},
			wantErr: true,
		},
		{ // parallel rows never touch
			a: Word{Word: "word", X: 0, Y: 0, Direction: Right},
			b: Word{Word: "star", X: 0, Y: 1, Direction: Right},
		},
	}
	for i, test := range wordIntersectionTests {
		gotAB, errAB := test.a.Intersection(test.b)
		gotBA, errBA := test.b.Intersection(test.a)
		switch {
		case test.wantErr:
			var wie IntersectionError
			if errAB == nil || errBA == nil {
				t.Errorf("Test %v: wanted intersection errors both ways", i)
			} else if !errors.As(errAB, &wie) {
				t.Errorf("Test %v: wanted IntersectionError, got %v", i, errAB)
			}
		case errAB != nil, errBA != nil:
			t.Errorf("Test %v: unwanted errors: %v, %v", i, errAB, errBA)
		case !reflect.DeepEqual(gotAB, gotBA):
			t.Errorf("Test %v: wanted symmetric intersections, got %v and %v", i, gotAB, gotBA)
		case test.a.Intersects(test.b) != test.intersects, test.b.Intersects(test.a) != test.intersects:
			t.Errorf("Test %v: wanted intersects = %v both ways", i, test.intersects)
		}
	}
}

func TestWordsLetterAt(t *testing.T) {
	rows, err := NewWords(
		Word{Word: "word", X: 0, Y: 0, Direction: Right},
		Word{Word: "star", X: 0, Y: 1, Direction: Right},
		Word{Word: "ship", X: 0, Y: 2, Direction: Right},
	)
	if err != nil {
		t.Fatalf("unwanted error collecting words: %v", err)
	}
	cross, err := NewWords(
		Word{Word: "word", X: 0, Y: 0, Direction: Right},
		Word{Word: "wiki", X: 0, Y: 0, Direction: Down},
	)
	if err != nil {
		t.Fatalf("unwanted error collecting words: %v", err)
	}
	wordsLetterAtTests := []struct {
		words *Words
		x, y  int
		want  game.Letter
		ok    bool
	}{
		{words: rows, x: 0, y: 1, want: 's', ok: true},
		{words: rows, x: 1, y: 2, want: 'h', ok: true},
		{words: rows, x: 4, y: 1},
		{words: rows, x: 1, y: 4},
		{words: rows, x: 3, y: 0, want: 'd', ok: true},
		{words: cross, x: 0, y: 0, want: 'w', ok: true},
		{words: cross, x: 1, y: 1},
		{words: cross, x: 2, y: 0, want: 'r', ok: true},
		{words: cross, x: 0, y: 3, want: 'i', ok: true},
	}
	for i, test := range wordsLetterAtTests {
		got, ok := test.words.LetterAt(test.x, test.y)
		switch {
		case ok != test.ok:
			t.Errorf("Test %v: wanted ok = %v, got %v", i, test.ok, ok)
		case ok && got != test.want:
			t.Errorf("Test %v: wanted letter %q at (%v,%v), got %q", i, test.want, test.x, test.y, got)
		}
	}
}

func TestNewWordsInconsistent(t *testing.T) {
	newWordsInconsistentTests := [][]Word{
		{
			{Word: "word", X: 0, Y: 0, Direction: Right},
			{Word: "star", X: 0, Y: 0, Direction: Down},
			{Word: "ship", X: 0, Y: 2, Direction: Right},
		},
		{
			{Word: "word", X: 0, Y: 0, Direction: Right},
			{Word: "star", X: 0, Y: 0, Direction: Right},
		},
	}
	for i, words := range newWordsInconsistentTests {
		if _, err := NewWords(words...); err == nil {
			t.Errorf("Test %v: wanted error collecting inconsistent words", i)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	settingsValidateTests := []struct {
		Settings
		wantOk bool
	}{
		{ // too narrow
			Settings: Settings{Width: 2, Height: 20},
		},
		{ // too short
			Settings: Settings{Width: 30, Height: 9},
		},
		{ // bonus off the board
			Settings: Settings{Width: 30, Height: 30, Bonuses: []Bonus{{X: 20, Y: 35, Multiplier: 2}}},
		},
		{ // initial word leaves the board to the right
			Settings: Settings{Width: 30, Height: 40, InitWord: &Word{Word: "longlongword", X: 20, Y: 0, Direction: Right}},
		},
		{ // initial word leaves the board at the bottom
			Settings: Settings{Width: 30, Height: 40, InitWord: &Word{Word: "longlongword", X: 0, Y: 30, Direction: Down}},
		},
		{
			Settings: Settings{Width: 10, Height: 10},
			wantOk:   true,
		},
		{
			Settings: Settings{
				Width:    30,
				Height:   40,
				InitWord: &Word{Word: "word", X: 3, Y: 3, Direction: Down},
				Bonuses:  []Bonus{{X: 5, Y: 6, Multiplier: 2}},
			},
			wantOk: true,
		},
	}
	for i, test := range settingsValidateTests {
		err := test.Settings.Validate()
		switch {
		case !test.wantOk:
			if err == nil {
				t.Errorf("Test %v: wanted validation error", i)
			}
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		}
	}
}

func TestBoardInsertWord(t *testing.T) {
	b, err := New(Settings{Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("unwanted error creating board: %v", err)
	}
	if score, err := b.InsertWord(Word{Word: "abacaba", X: 10, Y: 10, Direction: Right}); err != nil || score != 7 {
		t.Fatalf("wanted score 7 for opening word, got %v (%v)", score, err)
	}
	if _, err := b.InsertWord(Word{Word: "qqqqq", X: 10, Y: 10, Direction: Down}); err == nil {
		t.Error("wanted error inserting conflicting word")
	}
	if _, err := b.InsertWord(Word{Word: "abracadabra", X: 10, Y: 10, Direction: Right}); err == nil {
		t.Error("wanted error re-covering the existing word")
	}
	if score, err := b.InsertWord(Word{Word: "abracadabra", X: 10, Y: 10, Direction: Down}); err != nil || score != 11 {
		t.Errorf("wanted score 11 for crossing word, got %v (%v)", score, err)
	}
	if score, err := b.InsertWord(Word{Word: "raise", X: 10, Y: 12, Direction: Right}); err != nil || score != 5 {
		t.Errorf("wanted score 5, got %v (%v)", score, err)
	}
	if score, err := b.InsertWord(Word{Word: "custom", X: 13, Y: 10, Direction: Down}); err != nil || score != 6 {
		t.Errorf("wanted score 6, got %v (%v)", score, err)
	}
}

func TestBoardInsertWordOutOfBounds(t *testing.T) {
	b, err := New(Settings{Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("unwanted error creating board: %v", err)
	}
	if _, err := b.InsertWord(Word{Word: "wordwordword", X: 90, Y: 90, Direction: Right}); err == nil {
		t.Error("wanted error inserting word leaving the board to the right")
	}
	var wie IntersectionError
	if _, err := b.InsertWord(Word{Word: "wordwordword", X: 90, Y: 90, Direction: Down}); err == nil {
		t.Error("wanted error inserting word leaving the board at the bottom")
	} else if errors.As(err, &wie) {
		t.Errorf("wanted plain bounds error, got intersection error: %v", err)
	}
}

func TestBoardInsertWords(t *testing.T) {
	insertWordsTests := []struct {
		initWord *Word
		words    []Word
		want     int
	}{
		{
			words: []Word{{Word: "abacaba", X: 10, Y: 10, Direction: Right}},
			want:  7,
		},
		{
			words: []Word{
				{Word: "abacaba", X: 10, Y: 10, Direction: Right},
				{Word: "abracadabra", X: 10, Y: 10, Direction: Down},
			},
			want: 7 + 11,
		},
		{
			words: []Word{
				{Word: "abacaba", X: 10, Y: 10, Direction: Right},
				{Word: "abracadabra", X: 10, Y: 10, Direction: Down},
				{Word: "ababahalamaha", X: 6, Y: 13, Direction: Right},
			},
			want: 7 + 11 + 13,
		},
		{
			initWord: &Word{Word: "abacaba", X: 10, Y: 10, Direction: Right},
			words: []Word{
				{Word: "abacaba", X: 12, Y: 8, Direction: Down},
				{Word: "abracadabra", X: 9, Y: 12, Direction: Right},
			},
			want: 7 + 11,
		},
		{
			initWord: &Word{Word: "abracadabra", X: 11, Y: 15, Direction: Right},
			words: []Word{
				{Word: "fall", X: 11, Y: 14, Direction: Down},
				{Word: "cat", X: 16, Y: 14, Direction: Down},
			},
			want: 4 + 3,
		},
		{
			initWord: &Word{Word: "useless", X: 10, Y: 10, Direction: Right},
			words: []Word{
				{Word: "scene", X: 16, Y: 10, Direction: Right},
				{Word: "eye", X: 20, Y: 10, Direction: Right},
			},
			want: 5 + 3,
		},
	}
	for i, test := range insertWordsTests {
		b, err := New(Settings{Width: 100, Height: 100, InitWord: test.initWord})
		if err != nil {
			t.Fatalf("Test %v: unwanted error creating board: %v", i, err)
		}
		got, err := b.InsertWords(Words{Words: test.words})
		switch {
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		case got != test.want:
			t.Errorf("Test %v: wanted score %v, got %v", i, test.want, got)
		}
	}
}

func TestBoardInsertWordsInvalid(t *testing.T) {
	insertWordsInvalidTests := []struct {
		initWord *Word
		words    []Word
	}{
		{ // second word re-covers the initial word
			initWord: &Word{Word: "abacaba", X: 10, Y: 10, Direction: Right},
			words: []Word{
				{Word: "abacaba", X: 10, Y: 10, Direction: Down},
				{Word: "abracadabra", X: 10, Y: 10, Direction: Right},
			},
		},
		{ // completely covered by existing letters
			initWord: &Word{Word: "abacaba", X: 10, Y: 10, Direction: Right},
			words:    []Word{{Word: "aba", X: 10, Y: 10, Direction: Right}},
		},
		{
			initWord: &Word{Word: "abacaba", X: 10, Y: 10, Direction: Right},
			words: []Word{
				{Word: "aba", X: 10, Y: 10, Direction: Right},
				{Word: "abracadabra", X: 10, Y: 10, Direction: Down},
			},
		},
		{ // same word placed twice in one move
			words: []Word{
				{Word: "cat", X: 10, Y: 10, Direction: Right},
				{Word: "cat", X: 10, Y: 10, Direction: Right},
			},
		},
		{ // duplicate crossing word, the repeat adds nothing
			initWord: &Word{Word: "abacaba", X: 10, Y: 10, Direction: Right},
			words: []Word{
				{Word: "abracadabra", X: 10, Y: 10, Direction: Down},
				{Word: "abracadabra", X: 10, Y: 10, Direction: Down},
			},
		},
		{ // fully covered by an earlier word of the same move
			initWord: &Word{Word: "abacaba", X: 10, Y: 10, Direction: Right},
			words: []Word{
				{Word: "abracadabra", X: 10, Y: 10, Direction: Down},
				{Word: "abr", X: 10, Y: 10, Direction: Down},
			},
		},
		{ // disconnected from the existing board
			initWord: &Word{Word: "abacaba", X: 10, Y: 10, Direction: Right},
			words:    []Word{{Word: "far", X: 50, Y: 50, Direction: Right}},
		},
		{ // two groups not connected to each other on an empty board
			words: []Word{
				{Word: "far", X: 10, Y: 10, Direction: Right},
				{Word: "away", X: 50, Y: 50, Direction: Right},
			},
		},
	}
	for i, test := range insertWordsInvalidTests {
		b, err := New(Settings{Width: 100, Height: 100, InitWord: test.initWord})
		if err != nil {
			t.Fatalf("Test %v: unwanted error creating board: %v", i, err)
		}
		before := len(b.Words())
		var wie IntersectionError
		_, err = b.InsertWords(Words{Words: test.words})
		switch {
		case err == nil:
			t.Errorf("Test %v: wanted error inserting invalid words", i)
		case !errors.As(err, &wie):
			t.Errorf("Test %v: wanted IntersectionError, got %v", i, err)
		case len(b.Words()) != before:
			t.Errorf("Test %v: board modified by failed insert", i)
		}
	}
}

func TestBoardInsertWordsBonuses(t *testing.T) {
	b, err := New(Settings{Width: 100, Height: 100, Bonuses: []Bonus{
		{X: 10, Y: 10, Multiplier: 2},
		{X: 12, Y: 10, Multiplier: 3},
	}})
	if err != nil {
		t.Fatalf("unwanted error creating board: %v", err)
	}
	if score, err := b.InsertWord(Word{Word: "abacaba", X: 10, Y: 10, Direction: Down}); err != nil || score != 7*2 {
		t.Errorf("wanted score %v covering one bonus, got %v (%v)", 7*2, score, err)
	}
	// bonuses are not consumed, both multipliers count again
	if score, err := b.InsertWord(Word{Word: "abracadabra", X: 10, Y: 10, Direction: Right}); err != nil || score != 11*(2+3) {
		t.Errorf("wanted score %v covering both bonuses, got %v (%v)", 11*(2+3), score, err)
	}
}

func TestBoardLettersToPlace(t *testing.T) {
	lettersToPlaceTests := []struct {
		initWord *Word
		words    []Word
		want     []game.Letter
	}{
		{
			words: []Word{{Word: "cat", X: 9, Y: 10, Direction: Right}},
			want:  game.Letters("cat"),
		},
		{ // the crossing letter is already on the board
			initWord: &Word{Word: "abacaba", X: 10, Y: 10, Direction: Right},
			words:    []Word{{Word: "abracadabra", X: 10, Y: 10, Direction: Down}},
			want:     game.Letters("bracadabra"),
		},
		{ // shared new positions are only spent once
			words: []Word{
				{Word: "word", X: 0, Y: 0, Direction: Right},
				{Word: "wiki", X: 0, Y: 0, Direction: Down},
			},
			want: game.Letters("wordiki"),
		},
	}
	for i, test := range lettersToPlaceTests {
		b, err := New(Settings{Width: 100, Height: 100, InitWord: test.initWord})
		if err != nil {
			t.Fatalf("Test %v: unwanted error creating board: %v", i, err)
		}
		got := b.LettersToPlace(Words{Words: test.words})
		if !reflect.DeepEqual(game.CountLetters(test.want), game.CountLetters(got)) {
			t.Errorf("Test %v: wanted letters %v, got %v", i, test.want, got)
		}
	}
}

func TestDirectionJSON(t *testing.T) {
	for d, want := range map[Direction]string{Right: `"RIGHT"`, Down: `"DOWN"`} {
		b, err := d.MarshalJSON()
		if err != nil || string(b) != want {
			t.Errorf("wanted %v marshalled as %v, got %s (%v)", d, want, b, err)
		}
		var d2 Direction
		if err := d2.UnmarshalJSON(b); err != nil || d2 != d {
			t.Errorf("wanted %s unmarshalled as %v, got %v (%v)", b, d, d2, err)
		}
	}
	var d Direction
	if err := d.UnmarshalJSON([]byte(`"UP"`)); err == nil {
		t.Error("wanted error unmarshalling unknown direction")
	}
}
